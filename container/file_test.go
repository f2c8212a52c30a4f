package container

import (
	"encoding/binary"
	"io"
	"testing"
)

func TestReadFileWalksTagsAndBands(t *testing.T) {
	h := &Header{Version: Version, ByteOrder: binary.LittleEndian, OffsetSize: 4}
	buf := NewBuffer(64)

	if err := h.WriteHeader(buf); err != nil {
		t.Fatal(err)
	}

	tagsOffset, _ := buf.Seek(0, io.SeekCurrent)
	tags := TagSection{Tags: map[string]string{"source": "test"}, NextTagsStart: 0}
	if err := tags.Write(buf, h); err != nil {
		t.Fatal(err)
	}

	firstBandOffset, _ := buf.Seek(0, io.SeekCurrent)
	if err := h.OverwriteOffsets(buf, firstBandOffset, tagsOffset); err != nil {
		t.Fatal(err)
	}

	dims := Dimensions{{Name: "x", Size: 2, TileSize: 2}, {Name: "y", Size: 2, TileSize: 2}}
	bandA := NewBand("a", false, CompressionNone, BandKind{Type: KindUint8}, 1, dims)
	bandAOffset, _ := buf.Seek(0, io.SeekCurrent)
	if err := bandA.WriteHeader(buf, h); err != nil {
		t.Fatal(err)
	}
	if err := bandA.WriteTile(buf, h, 0, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}

	bandB := NewBand("b", false, CompressionNone, BandKind{Type: KindUint8}, 1, dims)
	bandBOffset, _ := buf.Seek(0, io.SeekCurrent)
	if err := bandB.WriteHeader(buf, h); err != nil {
		t.Fatal(err)
	}
	if err := bandB.WriteTile(buf, h, 0, []byte{5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}

	bandA.NextBandStart = bandBOffset
	if err := bandA.OverwriteHeader(buf, h, bandAOffset); err != nil {
		t.Fatal(err)
	}

	buf.Seek(0, io.SeekStart)
	file, err := ReadFile(buf)
	if err != nil {
		t.Fatal(err)
	}

	if len(file.Tags) != 1 || file.AllTags()["source"] != "test" {
		t.Fatalf("unexpected tags: %+v", file.Tags)
	}
	if len(file.Bands) != 2 {
		t.Fatalf("expected 2 chained bands, got %d", len(file.Bands))
	}
	if file.Band("a") == nil || file.Band("b") == nil {
		t.Fatal("expected to find both bands by name")
	}
	if file.Band("missing") != nil {
		t.Fatal("expected nil for a band name that does not exist")
	}
}
