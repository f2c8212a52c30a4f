package container

import (
	"io"
	"strconv"
)

// dimension describes one axis of a band's tiled grid. Unexported: a band's
// grid is always exactly the two axes {x, y} a Dimensions value holds, so
// nothing outside this file ever needs to construct or hold a lone axis.
type dimension struct {
	Name     string // on-disk axis name, always "x" or "y"
	Size     int    // total number of samples along this axis
	TileSize int    // size of a tile along this axis; need not evenly divide Size
}

// HeaderSize returns the size in bytes of this axis's on-disk encoding.
func (d dimension) HeaderSize(h Header) int {
	return 2 + len([]byte(d.Name)) + 2*int(h.OffsetSize)
}

// Tiles returns the number of tiles along this axis, rounding up when
// TileSize does not evenly divide Size.
func (d dimension) Tiles() int {
	tiles := d.Size / d.TileSize
	if d.Size%d.TileSize != 0 {
		tiles += 1
	}
	return tiles
}

func (d dimension) Write(w io.Writer, h Header) error {
	if d.Size <= 0 || d.TileSize <= 0 {
		return FormatError("dimension size and tile size must be greater than 0")
	}
	if d.Size < d.TileSize {
		return FormatError("dimension tile size cannot be larger than dimension total size")
	}
	if err := h.WriteFriendly(w, d.Name); err != nil {
		return err
	}
	if err := h.WriteOffset(w, int64(d.Size)); err != nil {
		return err
	}
	return h.WriteOffset(w, int64(d.TileSize))
}

func (d *dimension) Read(r io.Reader, h Header) error {
	name, err := h.ReadFriendly(r)
	if err != nil {
		return err
	}
	d.Name = name
	size, err := h.ReadOffset(r)
	if err != nil {
		return err
	}
	tileSize, err := h.ReadOffset(r)
	if err != nil {
		return err
	}
	d.Size = int(size)
	d.TileSize = int(tileSize)
	return nil
}

func (d dimension) String() string {
	return d.Name + "(" + strconv.Itoa(d.Size) + " / " + strconv.Itoa(d.TileSize) + ")"
}

// Dimensions is the x/y tile grid a band's samples are laid out across: a
// raster always has exactly these two axes, in this order, so this type
// owns that invariant instead of leaving raster.go, band.go and the
// mosaic-compose/imageio writers to each index a positional slice and spell
// out "x"/"y" themselves.
type Dimensions []dimension

// NewDimensions builds the fixed two-axis {x, y} grid a band's samples are
// tiled across.
func NewDimensions(width, height, tileWidth, tileHeight int) Dimensions {
	return Dimensions{
		{Name: "x", Size: width, TileSize: tileWidth},
		{Name: "y", Size: height, TileSize: tileHeight},
	}
}

func (ds Dimensions) Width() int      { return ds[0].Size }
func (ds Dimensions) Height() int     { return ds[1].Size }
func (ds Dimensions) TileWidth() int  { return ds[0].TileSize }
func (ds Dimensions) TileHeight() int { return ds[1].TileSize }
func (ds Dimensions) TilesX() int     { return ds[0].Tiles() }
func (ds Dimensions) TilesY() int     { return ds[1].Tiles() }

// Tiles returns the total number of tiles across both axes.
func (ds Dimensions) Tiles() int {
	total := 1
	for _, d := range ds {
		total *= d.Tiles()
	}
	return total
}

// TileSamples returns the number of samples contained in a single tile.
func (ds Dimensions) TileSamples() int {
	total := 1
	for _, d := range ds {
		total *= d.TileSize
	}
	return total
}

// HeaderSize returns the size in bytes of the on-disk encoding of both axes.
func (ds Dimensions) HeaderSize(h Header) int {
	total := 0
	for _, d := range ds {
		total += d.HeaderSize(h)
	}
	return total
}

func (ds Dimensions) Write(w io.Writer, h Header) error {
	for _, d := range ds {
		if err := d.Write(w, h); err != nil {
			return err
		}
	}
	return nil
}

func (ds Dimensions) Read(r io.Reader, h Header) error {
	for i := range ds {
		if err := ds[i].Read(r, h); err != nil {
			return err
		}
	}
	return nil
}
