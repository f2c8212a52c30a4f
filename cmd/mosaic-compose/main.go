// Command mosaic-compose reads one or more container files as mosaic
// sources (with optional alpha/ROI bands from the same files) and
// composites them into a single destination container file, either
// OVERLAY or BLEND.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/owlpinetech/mosaic"
	"github.com/owlpinetech/mosaic/container"
)

type options struct {
	mode        mosaic.Mode
	bandName    string
	alphaBand   string
	roiBand     string
	compression container.Compression
	tileSize    int
	destNoData  float64
}

func main() {
	dstFileName := flag.String("dst", "", "name of the destination container file")
	modeArg := flag.String("mode", "overlay", "compositing mode: overlay or blend")
	bandName := flag.String("band", "value", "name of the band to read from each source file")
	alphaBand := flag.String("alpha-band", "", "name of an alpha band present alongside -band in each source, if any")
	roiBand := flag.String("roi-band", "", "name of a region-of-interest band present alongside -band in each source, if any")
	compressionArg := flag.String("comp", "none", "compression for the destination band (none, flate, rle8)")
	tileSize := flag.Int("tile", 512, "size of the square destination compositing tile")
	destNoData := flag.Float64("dest-nodata", 0, "destination fill value where no source contributes")
	flag.Parse()

	if *dstFileName == "" {
		fmt.Println("must specify -dst")
		os.Exit(1)
	}
	if len(flag.Args()) == 0 {
		fmt.Println("must specify one or more source container files")
		os.Exit(1)
	}

	mode, err := parseMode(*modeArg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	compression, err := parseCompression(*compressionArg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	srcFileNames := flag.Args()
	files := make([]*os.File, len(srcFileNames))
	for i, name := range srcFileNames {
		f, err := os.Open(name)
		if err != nil {
			fmt.Printf("failed to open source file %q: %v\n", name, err)
			os.Exit(1)
		}
		defer f.Close()
		files[i] = f
	}

	summaries := make([]*container.File, len(files))
	for i, f := range files {
		summary, err := container.ReadFile(f)
		if err != nil {
			fmt.Printf("failed to read source file %q: %v\n", srcFileNames[i], err)
			os.Exit(1)
		}
		summaries[i] = summary
	}

	opts := options{
		mode:        mode,
		bandName:    *bandName,
		alphaBand:   *alphaBand,
		roiBand:     *roiBand,
		compression: compression,
		tileSize:    *tileSize,
		destNoData:  *destNoData,
	}

	firstBand := summaries[0].Band(opts.bandName)
	if firstBand == nil {
		fmt.Printf("source %q has no band named %q\n", srcFileNames[0], opts.bandName)
		os.Exit(1)
	}

	dstFile, err := os.Create(*dstFileName)
	if err != nil {
		fmt.Printf("failed to create destination file: %v\n", err)
		os.Exit(1)
	}
	defer dstFile.Close()

	switch firstBand.Kind.Type.Base() {
	case container.KindUint8:
		err = runCompose[uint8](files, srcFileNames, summaries, dstFile, opts)
	case container.KindUint16:
		err = runCompose[uint16](files, srcFileNames, summaries, dstFile, opts)
	case container.KindInt16:
		err = runCompose[int16](files, srcFileNames, summaries, dstFile, opts)
	case container.KindInt32:
		err = runCompose[int32](files, srcFileNames, summaries, dstFile, opts)
	case container.KindFloat32:
		err = runCompose[float32](files, srcFileNames, summaries, dstFile, opts)
	case container.KindFloat64:
		err = runCompose[float64](files, srcFileNames, summaries, dstFile, opts)
	default:
		fmt.Printf("unsupported sample kind for compositing: %s\n", firstBand.Kind.Type)
		os.Exit(1)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func parseMode(arg string) (mosaic.Mode, error) {
	switch strings.ToLower(arg) {
	case "overlay":
		return mosaic.Overlay, nil
	case "blend":
		return mosaic.Blend, nil
	default:
		return 0, fmt.Errorf("unsupported mode: %s", arg)
	}
}

func parseCompression(arg string) (container.Compression, error) {
	switch arg {
	case "none":
		return container.CompressionNone, nil
	case "flate":
		return container.CompressionFlate, nil
	case "rle8":
		return container.CompressionRle8, nil
	default:
		return 0, fmt.Errorf("unsupported compression: %s", arg)
	}
}

// runCompose builds a mosaic.Plan[T] from every source's -band (and
// optional alpha/ROI bands), then walks the destination in tileSize
// squares, writing each composed tile straight into a single destination
// band.
func runCompose[T mosaic.Numeric](files []*os.File, names []string, summaries []*container.File, dst *os.File, opts options) error {
	sources := make([]mosaic.SourceImage[T], len(files))
	alphas := make([]mosaic.AlphaImage[T], len(files))
	rois := make([]mosaic.RoiMask, len(files))
	noData := make([][]mosaic.Range[T], len(files))
	anyAlpha, anyRoi := false, false

	for i, summary := range summaries {
		band := summary.Band(opts.bandName)
		if band == nil {
			return fmt.Errorf("source %q has no band named %q", names[i], opts.bandName)
		}
		raster, err := container.NewRaster[T](files[i], summary.Header, band, image.Pt(0, 0))
		if err != nil {
			return fmt.Errorf("source %q: %w", names[i], err)
		}
		sources[i] = raster

		if bandNoData, ok := raster.NoDataRange(); ok {
			perBand := make([]mosaic.Range[T], raster.Bands())
			for b := range perBand {
				perBand[b] = bandNoData
			}
			noData[i] = perBand
		}

		if opts.alphaBand != "" {
			if alphaBand := summary.Band(opts.alphaBand); alphaBand != nil {
				alphaRaster, err := container.NewRaster[T](files[i], summary.Header, alphaBand, image.Pt(0, 0))
				if err != nil {
					return fmt.Errorf("source %q alpha band: %w", names[i], err)
				}
				alphas[i] = alphaRaster
				anyAlpha = true
			}
		}
		if opts.roiBand != "" {
			if roiBand := summary.Band(opts.roiBand); roiBand != nil {
				roiRaster, err := container.NewRoiRaster(files[i], summary.Header, roiBand, image.Pt(0, 0))
				if err != nil {
					return fmt.Errorf("source %q roi band: %w", names[i], err)
				}
				rois[i] = roiRaster
				anyRoi = true
			}
		}
	}

	if !anyAlpha {
		alphas = nil
	}
	if !anyRoi {
		rois = nil
	}
	descriptors, err := mosaic.NewSourceDescriptors(sources, alphas, rois, noData)
	if err != nil {
		return fmt.Errorf("failed to pair up sources: %w", err)
	}

	plan, err := mosaic.NewPlan(mosaic.PlanOptions[T]{
		Mode:              opts.mode,
		Sources:           descriptors,
		DestinationNoData: []float64{opts.destNoData},
	})
	if err != nil {
		return fmt.Errorf("failed to build compositing plan: %w", err)
	}

	return writeComposed(dst, plan, opts, len(names))
}

// writeComposed drives plan over its destination bounds in opts.tileSize
// squares and writes the result as a single interleaved band.
func writeComposed[T mosaic.Numeric](dst *os.File, plan *mosaic.Plan[T], opts options, sourceCount int) error {
	bounds := plan.Bounds()
	bands := plan.Bands()
	kind := kindFor[T]()

	header := &container.Header{Version: container.Version, OffsetSize: 4, ByteOrder: binary.BigEndian}
	if err := header.WriteHeader(dst); err != nil {
		return err
	}

	tagsOffset, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	tags := container.TagSection{Tags: map[string]string{
		container.TagMosaicMode:  modeString(opts.mode),
		container.TagSourceCount: strconv.Itoa(sourceCount),
	}}
	if err := tags.Write(dst, header); err != nil {
		return err
	}

	firstBandOffset, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := header.OverwriteOffsets(dst, firstBandOffset, tagsOffset); err != nil {
		return err
	}

	tileSize := opts.tileSize
	if tileSize <= 0 {
		tileSize = bounds.Dx()
	}
	dims := container.NewDimensions(bounds.Dx(), bounds.Dy(), min(tileSize, bounds.Dx()), min(tileSize, bounds.Dy()))
	destNoData := mosaic.NewPointRange(mosaic.SampleFormatOf[T](), mosaic.FromFloat64[T](opts.destNoData))
	band := container.NewBand(opts.bandName, false, opts.compression, container.WithNoDataRange(container.BandKind{Type: kind}, destNoData), bands, dims)

	bandHeaderOffset, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := band.WriteHeader(dst, header); err != nil {
		return err
	}

	tilesX, tilesY := dims.TilesX(), dims.TilesY()
	sampleSize := kind.Size()
	tileW, tileH := dims.TileWidth(), dims.TileHeight()
	raw := make([]byte, tileW*tileH*bands*sampleSize)

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			tileIndex := ty*tilesX + tx
			rect := image.Rect(
				bounds.Min.X+tx*tileW, bounds.Min.Y+ty*tileH,
				bounds.Min.X+min((tx+1)*tileW, dims.Width()), bounds.Min.Y+min((ty+1)*tileH, dims.Height()),
			)
			composed := plan.ComposeTile(rect)

			clear(raw)
			i := 0
			for y := 0; y < tileH; y++ {
				srcY := rect.Min.Y + y
				if srcY >= rect.Max.Y {
					i += tileW * bands * sampleSize
					continue
				}
				for x := 0; x < tileW; x++ {
					srcX := rect.Min.X + x
					if srcX >= rect.Max.X {
						i += bands * sampleSize
						continue
					}
					for b := 0; b < bands; b++ {
						encodeSample(composed.At(srcX, srcY, b), header.ByteOrder, raw[i:i+sampleSize])
						i += sampleSize
					}
				}
			}
			if err := band.WriteTile(dst, header, tileIndex, raw); err != nil {
				return err
			}
		}
	}

	band.NextBandStart = 0
	return band.OverwriteHeader(dst, header, bandHeaderOffset)
}

func modeString(m mosaic.Mode) string {
	if m == mosaic.Blend {
		return "blend"
	}
	return "overlay"
}

// kindFor maps a mosaic.Numeric type parameter to the container SampleKind
// used to store its samples on disk.
func kindFor[T mosaic.Numeric]() container.SampleKind {
	switch mosaic.SampleFormatOf[T]() {
	case mosaic.FormatU8:
		return container.KindUint8
	case mosaic.FormatU16:
		return container.KindUint16
	case mosaic.FormatI16:
		return container.KindInt16
	case mosaic.FormatI32:
		return container.KindInt32
	case mosaic.FormatF32:
		return container.KindFloat32
	default:
		return container.KindFloat64
	}
}

// encodeSample writes v's on-disk representation to raw, mirroring
// container.Raster's decodeCoreSample in reverse.
func encodeSample[T mosaic.Numeric](v T, order binary.ByteOrder, raw []byte) {
	switch mosaic.SampleFormatOf[T]() {
	case mosaic.FormatU8:
		raw[0] = uint8(any(v).(uint8))
	case mosaic.FormatU16:
		order.PutUint16(raw, uint16(any(v).(uint16)))
	case mosaic.FormatI16:
		order.PutUint16(raw, uint16(any(v).(int16)))
	case mosaic.FormatI32:
		order.PutUint32(raw, uint32(any(v).(int32)))
	case mosaic.FormatF32:
		order.PutUint32(raw, math.Float32bits(any(v).(float32)))
	default:
		order.PutUint64(raw, math.Float64bits(any(v).(float64)))
	}
}
