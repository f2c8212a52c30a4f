package mosaic

import "image"

// SourceImage is a random-access typed raster over integer coordinates with
// a rectangular bounds, per spec.md §6. Implementations supply extended
// data through GetExtended rather than exposing raw sample access, so the
// compositor never has to special-case out-of-bounds reads itself.
type SourceImage[T Numeric] interface {
	Bounds() image.Rectangle
	Bands() int
	SampleFormat() SampleFormat
	GetExtended(rect image.Rectangle, extender BorderExtender[T]) ExtendedTileAccessor[T]
}

// AlphaImage is a source image constrained to a single band sharing its
// parent source's sample format.
type AlphaImage[T Numeric] interface {
	SourceImage[T]
}

// RoiMask supplies a single-band i32 sample per coordinate; a location is
// "inside" the region of interest iff the sample is strictly positive.
type RoiMask interface {
	Bounds() image.Rectangle
	Sample(x, y int) int32
}

// ExtendedTileAccessor is a read-only, per-tile typed view of a source
// image over a destination rectangle. Locations outside the source's real
// bounds resolve through the BorderExtender the accessor was built with.
// Implementations must be safe for a single reader producing a distinct
// tile extraction; the mosaic core never shares one across goroutines.
type ExtendedTileAccessor[T Numeric] interface {
	Rect() image.Rectangle
	Bands() int
	At(x, y, band int) T
}

// MemoryRaster is an in-memory SourceImage/AlphaImage test double: a dense
// row-major grid of samples, one contiguous []T per band.
type MemoryRaster[T Numeric] struct {
	rect   image.Rectangle
	format SampleFormat
	bands  [][]T
}

// NewMemoryRaster builds a MemoryRaster over rect with the given per-band
// row-major sample data; each band slice must have rect.Dx()*rect.Dy()
// elements.
func NewMemoryRaster[T Numeric](rect image.Rectangle, format SampleFormat, bands [][]T) *MemoryRaster[T] {
	return &MemoryRaster[T]{rect: rect, format: format, bands: bands}
}

func (m *MemoryRaster[T]) Bounds() image.Rectangle    { return m.rect }
func (m *MemoryRaster[T]) Bands() int                 { return len(m.bands) }
func (m *MemoryRaster[T]) SampleFormat() SampleFormat { return m.format }

func (m *MemoryRaster[T]) at(x, y, band int) T {
	i := (y-m.rect.Min.Y)*m.rect.Dx() + (x - m.rect.Min.X)
	return m.bands[band][i]
}

func (m *MemoryRaster[T]) GetExtended(rect image.Rectangle, extender BorderExtender[T]) ExtendedTileAccessor[T] {
	acc := &memoryTileAccessor[T]{rect: rect, bands: len(m.bands), data: make([][]T, len(m.bands))}
	for b := range m.bands {
		row := make([]T, rect.Dx()*rect.Dy())
		i := 0
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				if image.Pt(x, y).In(m.rect) {
					row[i] = m.at(x, y, b)
				} else {
					row[i] = extender.Fill(b)
				}
				i++
			}
		}
		acc.data[b] = row
	}
	return acc
}

type memoryTileAccessor[T Numeric] struct {
	rect  image.Rectangle
	bands int
	data  [][]T
}

func (a *memoryTileAccessor[T]) Rect() image.Rectangle { return a.rect }
func (a *memoryTileAccessor[T]) Bands() int            { return a.bands }

func (a *memoryTileAccessor[T]) At(x, y, band int) T {
	i := (y-a.rect.Min.Y)*a.rect.Dx() + (x - a.rect.Min.X)
	return a.data[band][i]
}
