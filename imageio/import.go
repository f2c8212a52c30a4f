// Package imageio decodes ordinary raster image files into container
// files, so BMP and TIFF sources can be used as mosaic inputs without a
// separate conversion pass. It performs no color space conversion: each
// plane of the decoded image (red, green, blue, alpha, gray, ...) becomes
// its own single-channel band, unchanged in sample format.
package imageio

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"path"
	"strings"

	"github.com/gracefulearth/image/bmp"
	"github.com/gracefulearth/image/tiff"

	"github.com/owlpinetech/mosaic/container"
)

// Options controls how a decoded image is laid out as a container file.
type Options struct {
	Compression container.Compression
	ByteOrder   binary.ByteOrder // defaults to binary.BigEndian if nil
	TileWidth   int
	TileHeight  int
	Tags        map[string]string
}

// Decode reads an image from r, choosing a codec by the file extension in
// name (case-insensitive ".bmp", ".tif" or ".tiff").
func Decode(r io.Reader, name string) (image.Image, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".bmp":
		return bmp.Decode(r)
	case ".tif", ".tiff":
		return tiff.Decode(r)
	default:
		return nil, container.UnsupportedError(fmt.Sprintf("image format %q not supported for import", path.Ext(name)))
	}
}

// plane is one demultiplexed channel of a decoded image, ready to become a
// single-channel band.
type plane struct {
	name string
	kind container.SampleKind
	u8   []uint8
	u16  []uint16
}

// planesOf demultiplexes img into its constituent channels, in the order
// a mosaic band group should store them, along with the color model tag
// recorded so the planes can be told apart later.
func planesOf(img image.Image) (planes []plane, colorModelTag string, err error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	n := width * height

	newU8Planes := func(names ...string) []plane {
		ps := make([]plane, len(names))
		for i, name := range names {
			ps[i] = plane{name: name, kind: container.KindUint8, u8: make([]uint8, n)}
		}
		return ps
	}
	newU16Planes := func(names ...string) []plane {
		ps := make([]plane, len(names))
		for i, name := range names {
			ps[i] = plane{name: name, kind: container.KindUint16, u16: make([]uint16, n)}
		}
		return ps
	}

	switch img.ColorModel() {
	case color.NRGBAModel:
		planes, colorModelTag = newU8Planes("r", "g", "b", "a"), "nrgba"
	case color.NRGBA64Model:
		planes, colorModelTag = newU16Planes("r", "g", "b", "a"), "nrgba64"
	case color.RGBAModel:
		planes, colorModelTag = newU8Planes("r", "g", "b", "a"), "rgba"
	case color.RGBA64Model:
		planes, colorModelTag = newU16Planes("r", "g", "b", "a"), "rgba64"
	case color.CMYKModel:
		planes, colorModelTag = newU8Planes("c", "m", "y", "k"), "cmyk"
	case color.GrayModel:
		planes, colorModelTag = newU8Planes("gray"), "gray"
	case color.Gray16Model:
		planes, colorModelTag = newU16Planes("gray"), "gray16"
	case color.YCbCrModel:
		planes, colorModelTag = newU8Planes("Y", "Cb", "Cr"), "YCbCr"
	default:
		return nil, "", container.UnsupportedError("color model of the image not yet supported for import")
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			switch colorModelTag {
			case "nrgba":
				c := img.At(x, y).(color.NRGBA)
				planes[0].u8[i], planes[1].u8[i], planes[2].u8[i], planes[3].u8[i] = c.R, c.G, c.B, c.A
			case "nrgba64":
				c := img.At(x, y).(color.NRGBA64)
				planes[0].u16[i], planes[1].u16[i], planes[2].u16[i], planes[3].u16[i] = c.R, c.G, c.B, c.A
			case "rgba":
				c := img.At(x, y).(color.RGBA)
				planes[0].u8[i], planes[1].u8[i], planes[2].u8[i], planes[3].u8[i] = c.R, c.G, c.B, c.A
			case "rgba64":
				c := img.At(x, y).(color.RGBA64)
				planes[0].u16[i], planes[1].u16[i], planes[2].u16[i], planes[3].u16[i] = c.R, c.G, c.B, c.A
			case "cmyk":
				c := img.At(x, y).(color.CMYK)
				planes[0].u8[i], planes[1].u8[i], planes[2].u8[i], planes[3].u8[i] = c.C, c.M, c.Y, c.K
			case "gray":
				c := img.At(x, y).(color.Gray)
				planes[0].u8[i] = c.Y
			case "gray16":
				c := img.At(x, y).(color.Gray16)
				planes[0].u16[i] = c.Y
			case "YCbCr":
				c := img.At(x, y).(color.YCbCr)
				planes[0].u8[i], planes[1].u8[i], planes[2].u8[i] = c.Y, c.Cb, c.Cr
			}
			i++
		}
	}
	return planes, colorModelTag, nil
}

// Import decodes an image from r and writes it to w as a container file:
// one interleaved band per plane, sharing a single tile grid.
func Import(w io.WriteSeeker, r io.Reader, name string, opts Options) error {
	img, err := Decode(r, name)
	if err != nil {
		return err
	}
	return WriteImage(w, img, opts)
}

// WriteImage lays img out as a container file: a header, one tag section
// recording the source color model, then one band per demultiplexed plane.
func WriteImage(w io.WriteSeeker, img image.Image, opts Options) error {
	planes, colorModelTag, err := planesOf(img)
	if err != nil {
		return err
	}

	byteOrder := opts.ByteOrder
	if byteOrder == nil {
		byteOrder = binary.BigEndian
	}
	header := &container.Header{Version: container.Version, OffsetSize: 4, ByteOrder: byteOrder}
	if err := header.WriteHeader(w); err != nil {
		return err
	}

	tagsOffset, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	tags := map[string]string{container.TagColorModel: colorModelTag}
	for k, v := range opts.Tags {
		tags[k] = v
	}
	tagSection := container.TagSection{Tags: tags, NextTagsStart: 0}
	if err := tagSection.Write(w, header); err != nil {
		return err
	}

	firstBandOffset, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := header.OverwriteOffsets(w, firstBandOffset, tagsOffset); err != nil {
		return err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	tileWidth, tileHeight := opts.TileWidth, opts.TileHeight
	if tileWidth <= 0 {
		tileWidth = width
	}
	if tileHeight <= 0 {
		tileHeight = height
	}
	tileWidth = min(width, tileWidth)
	tileHeight = min(height, tileHeight)

	dims := container.NewDimensions(width, height, tileWidth, tileHeight)

	bands := make([]*container.Band, len(planes))
	bandHeaderOffsets := make([]int64, len(planes))
	for i, p := range planes {
		bands[i] = container.NewBand(p.name, false, opts.Compression, container.BandKind{Type: p.kind}, 1, dims)

		bandHeaderOffsets[i], err = w.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if err := bands[i].WriteHeader(w, header); err != nil {
			return err
		}

		if err := writePlaneTiles(w, header, bands[i], dims, width, p); err != nil {
			return err
		}
	}

	for i, band := range bands {
		if i+1 < len(bands) {
			band.NextBandStart = bandHeaderOffsets[i+1]
		} else {
			band.NextBandStart = 0
		}
		if err := band.OverwriteHeader(w, header, bandHeaderOffsets[i]); err != nil {
			return err
		}
	}
	return nil
}

// writePlaneTiles splits p's samples into dims' tile grid and writes each
// tile through band, in row-major tile order.
func writePlaneTiles(w io.WriteSeeker, h *container.Header, band *container.Band, dims container.Dimensions, width int, p plane) error {
	tilesX, tilesY := dims.TilesX(), dims.TilesY()
	tileW, tileH := dims.TileWidth(), dims.TileHeight()
	sampleSize := p.kind.Size()

	tile := make([]byte, tileW*tileH*sampleSize)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			tileIndex := ty*tilesX + tx
			clear(tile)
			for y := 0; y < tileH; y++ {
				srcY := ty*tileH + y
				for x := 0; x < tileW; x++ {
					srcX := tx*tileW + x
					dst := (y*tileW + x) * sampleSize
					if srcX >= width || srcY >= dims.Height() {
						continue
					}
					srcIdx := srcY*width + srcX
					switch sampleSize {
					case 1:
						tile[dst] = p.u8[srcIdx]
					case 2:
						h.ByteOrder.PutUint16(tile[dst:dst+2], p.u16[srcIdx])
					}
				}
			}
			if err := band.WriteTile(w, h, tileIndex, tile); err != nil {
				return err
			}
		}
	}
	return nil
}
