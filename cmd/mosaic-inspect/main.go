// Command mosaic-inspect prints the structure of a container file: its
// header, tag sections and chained bands.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/owlpinetech/mosaic/container"
)

func main() {
	fileName := flag.String("file", "", "name of the container file to inspect")
	flag.Parse()

	if *fileName == "" {
		fmt.Println("must specify a container file to inspect")
		os.Exit(1)
	}

	f, err := os.Open(*fileName)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer f.Close()

	summary, err := container.ReadFile(f)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("Inspecting %s\n", *fileName)
	fmt.Printf("\tVersion: %d\n", summary.Header.Version)
	fmt.Printf("\tOffset size: %d\n", summary.Header.OffsetSize)
	fmt.Printf("\tByte order: %v\n", summary.Header.ByteOrder)
	fmt.Printf("Tag sections: %d\n", len(summary.Tags))
	for i, section := range summary.Tags {
		fmt.Printf("\tSection %d\n", i)
		for k, v := range section.Tags {
			fmt.Printf("\t\t%s: %s\n", k, v)
		}
	}
	fmt.Printf("Bands: %d\n", len(summary.Bands))
	for i, band := range summary.Bands {
		fmt.Printf("\tBand %d: %s\n", i, band.Name)
		fmt.Printf("\t\tSeparated: %v\n", band.Separated)
		fmt.Printf("\t\tCompression: %s\n", band.Compression)
		fmt.Printf("\t\tKind: %s\n", band.Kind.Type)
		if band.Kind.NoDataMin != nil || band.Kind.NoDataMax != nil {
			fmt.Printf("\t\tNo-data range: [%v, %v] (min inclusive: %v, max inclusive: %v)\n",
				band.Kind.NoDataMin, band.Kind.NoDataMax, band.Kind.NoDataMinInclusive, band.Kind.NoDataMaxInclusive)
		}
		fmt.Printf("\t\tChannels: %d\n", band.Count)
		for j, dim := range band.Dimensions {
			fmt.Printf("\t\tDim %d (%s): %d / %d (%d tiles)\n", j, dim.Name, dim.Size, dim.TileSize, dim.Tiles())
		}
		fmt.Printf("\t\tOn-disk tiles: %d\n", band.DiskTiles())
		fmt.Printf("\t\tData size: %d bytes\n", band.DataSize())
	}
}
