package mosaic

import "image"

// DestinationTile is the output of one ComposeTile call: a rectangle of a
// mosaic's destination raster with every band written for the intersection
// with the requested destination rectangle, per spec.md §6.
type DestinationTile[T Numeric] struct {
	Rect   image.Rectangle
	Format SampleFormat
	Bands  int
	Data   []T // row-major, band-interleaved: len == Rect.Dx()*Rect.Dy()*Bands
}

// NewDestinationTile allocates a zero-valued tile buffer for rect.
func NewDestinationTile[T Numeric](rect image.Rectangle, format SampleFormat, bands int) *DestinationTile[T] {
	return &DestinationTile[T]{
		Rect:   rect,
		Format: format,
		Bands:  bands,
		Data:   make([]T, rect.Dx()*rect.Dy()*bands),
	}
}

func (t *DestinationTile[T]) index(x, y, band int) int {
	return ((y-t.Rect.Min.Y)*t.Rect.Dx()+(x-t.Rect.Min.X))*t.Bands + band
}

// At returns the sample at (x, y) for band.
func (t *DestinationTile[T]) At(x, y, band int) T {
	return t.Data[t.index(x, y, band)]
}

// Set writes the sample at (x, y) for band.
func (t *DestinationTile[T]) Set(x, y, band int, v T) {
	t.Data[t.index(x, y, band)] = v
}
