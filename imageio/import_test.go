package imageio

import (
	"image"
	"image/color"
	"testing"

	"github.com/owlpinetech/mosaic"
	"github.com/owlpinetech/mosaic/container"
)

// memBuffer is a minimal in-memory io.WriteSeeker, mirroring the buffer
// container's own tests write against.
type memBuffer struct {
	buf []byte
	pos int
}

func (m *memBuffer) Write(p []byte) (int, error) {
	for m.pos+len(p) > len(m.buf) {
		m.buf = append(m.buf, 0)
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += n
	return n, nil
}

func (m *memBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		m.pos = int(offset)
	case 1:
		m.pos += int(offset)
	case 2:
		m.pos = len(m.buf) + int(offset)
	}
	return int64(m.pos), nil
}

func (m *memBuffer) Read(p []byte) (int, error) {
	n := copy(p, m.buf[m.pos:])
	m.pos += n
	return n, nil
}

func TestWriteImageGrayRoundTrip(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 10)
	}

	buf := &memBuffer{}
	if err := WriteImage(buf, img, Options{Compression: container.CompressionNone}); err != nil {
		t.Fatal(err)
	}

	buf.Seek(0, 0)
	header := &container.Header{}
	if err := header.ReadHeader(buf); err != nil {
		t.Fatal(err)
	}

	buf.Seek(header.FirstTagsOffset, 0)
	var tags container.TagSection
	if err := tags.Read(buf, header); err != nil {
		t.Fatal(err)
	}
	if tags.Tags[container.TagColorModel] != "gray" {
		t.Fatalf("color-model tag = %q, want gray", tags.Tags[container.TagColorModel])
	}

	buf.Seek(header.FirstBandOffset, 0)
	var band container.Band
	if err := band.ReadBand(buf, header); err != nil {
		t.Fatal(err)
	}
	if band.Name != "gray" {
		t.Fatalf("band name = %q, want gray", band.Name)
	}
	if band.Count != 1 {
		t.Fatalf("band count = %d, want 1", band.Count)
	}
	if band.NextBandStart != 0 {
		t.Fatalf("single-plane image should have no chained band, got %d", band.NextBandStart)
	}

	raster, err := container.NewRaster[uint8](buf, header, &band, image.Pt(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	acc := raster.GetExtended(image.Rect(0, 0, 4, 4), mosaic.ZeroExtender[uint8]{})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := img.GrayAt(x, y).Y
			if got := acc.At(x, y, 0); got != want {
				t.Errorf("At(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestWriteImageNRGBAChainsFourBands(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	img.Set(1, 0, color.NRGBA{R: 5, G: 6, B: 7, A: 8})
	img.Set(0, 1, color.NRGBA{R: 9, G: 10, B: 11, A: 12})
	img.Set(1, 1, color.NRGBA{R: 13, G: 14, B: 15, A: 16})

	buf := &memBuffer{}
	if err := WriteImage(buf, img, Options{Compression: container.CompressionFlate, TileWidth: 1, TileHeight: 2}); err != nil {
		t.Fatal(err)
	}

	buf.Seek(0, 0)
	header := &container.Header{}
	if err := header.ReadHeader(buf); err != nil {
		t.Fatal(err)
	}

	offset := header.FirstBandOffset
	names := []string{"r", "g", "b", "a"}
	for i, want := range names {
		buf.Seek(offset, 0)
		var band container.Band
		if err := band.ReadBand(buf, header); err != nil {
			t.Fatal(err)
		}
		if band.Name != want {
			t.Fatalf("band %d name = %q, want %q", i, band.Name, want)
		}
		if i == len(names)-1 {
			if band.NextBandStart != 0 {
				t.Fatalf("last band should not chain further, got NextBandStart=%d", band.NextBandStart)
			}
		} else if band.NextBandStart == 0 {
			t.Fatalf("band %d should chain to a following band", i)
		}
		offset = band.NextBandStart
	}
}
