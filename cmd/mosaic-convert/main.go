// Command mosaic-convert decodes a BMP or TIFF image and writes it out as
// a container file, one band per demultiplexed image plane.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/owlpinetech/mosaic/container"
	"github.com/owlpinetech/mosaic/imageio"
)

func main() {
	srcFileName := flag.String("src", "", "image file to convert (.bmp, .tif, .tiff)")
	dstFileName := flag.String("dst", "", "name of the resulting container file")
	tileSize := flag.Int("tileSize", 0, "tile size to use in the resulting file, defaults to the image size")
	compressionArg := flag.String("compression", "none", "compression to apply to each band (none, flate, rle8)")
	flag.Parse()

	if *srcFileName == "" || *dstFileName == "" {
		fmt.Println("must specify both -src and -dst")
		os.Exit(1)
	}

	var compression container.Compression
	switch *compressionArg {
	case "none":
		compression = container.CompressionNone
	case "flate":
		compression = container.CompressionFlate
	case "rle8":
		compression = container.CompressionRle8
	default:
		fmt.Printf("unsupported compression: %s\n", *compressionArg)
		os.Exit(1)
	}

	srcFile, err := os.Open(*srcFileName)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(*dstFileName)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer dstFile.Close()

	opts := imageio.Options{
		Compression: compression,
		TileWidth:   *tileSize,
		TileHeight:  *tileSize,
		Tags:        map[string]string{},
	}

	if err := imageio.Import(dstFile, srcFile, *srcFileName, opts); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
