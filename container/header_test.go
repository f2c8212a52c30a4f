package container

import (
	"bytes"
	"math/rand/v2"
	"testing"
)

func TestWriteReadHeader(t *testing.T) {
	baseCases := allHeaderVariants(Version)

	for range 10 {
		for _, header := range baseCases {
			if header.OffsetSize == 4 {
				header.FirstBandOffset = int64(rand.Int32())
				header.FirstTagsOffset = int64(rand.Int32())
			} else {
				header.FirstBandOffset = rand.Int64()
				header.FirstTagsOffset = rand.Int64()
			}

			buf := NewBuffer(10)
			if err := header.WriteHeader(buf); err != nil {
				t.Fatal(err)
			}

			rdBuf := bytes.NewReader(buf.Bytes())
			rdHeader := &Header{}
			if err := rdHeader.ReadHeader(rdBuf); err != nil {
				t.Fatal(err)
			}

			if header != *rdHeader {
				t.Errorf("read header %v was different than written header %v", *rdHeader, header)
			}

			var newBand, newTags int64
			if header.OffsetSize == 4 {
				newBand, newTags = int64(rand.Int32()), int64(rand.Int32())
			} else {
				newBand, newTags = rand.Int64(), rand.Int64()
			}
			if err := header.OverwriteOffsets(buf, newBand, newTags); err != nil {
				t.Fatal(err)
			}

			rdBuf = bytes.NewReader(buf.Bytes())
			rdHeader = &Header{}
			if err := rdHeader.ReadHeader(rdBuf); err != nil {
				t.Fatal(err)
			}
			if rdHeader.FirstBandOffset != newBand || rdHeader.FirstTagsOffset != newTags {
				t.Errorf("overwritten offsets not reflected on read: got %v", rdHeader)
			}
		}
	}
}

func TestHeaderFriendlyRoundTrip(t *testing.T) {
	for _, h := range allHeaderVariants(Version) {
		buf := NewBuffer(10)
		if err := h.WriteFriendly(buf, "a mosaic band"); err != nil {
			t.Fatal(err)
		}
		rdBuf := bytes.NewReader(buf.Bytes())
		got, err := h.ReadFriendly(rdBuf)
		if err != nil {
			t.Fatal(err)
		}
		if got != "a mosaic band" {
			t.Errorf("got %q, want %q", got, "a mosaic band")
		}
	}
}

func TestReadHeaderRejectsBadMarker(t *testing.T) {
	buf := bytes.NewReader([]byte("XXXX01\x04\x00"))
	h := &Header{}
	if err := h.ReadHeader(buf); err == nil {
		t.Error("expected error for bad file marker, got nil")
	}
}
