package container

import (
	"encoding/binary"
	"image"
	"math"
	"sync"

	"github.com/owlpinetech/mosaic"
)

// coreKindOf maps a mosaic.Numeric type parameter to the SampleKind a Raster
// expects its backing Band to store pixel data as. Raster only decodes the
// six core kinds directly; extended kinds (float8, float16, bfloat16,
// float128, int128, uint128) can still be carried as auxiliary band data but
// are never the pixel encoding of a mosaic source or destination.
func coreKindOf[T mosaic.Numeric]() SampleKind {
	switch mosaic.SampleFormatOf[T]() {
	case mosaic.FormatU8:
		return KindUint8
	case mosaic.FormatU16:
		return KindUint16
	case mosaic.FormatI16:
		return KindInt16
	case mosaic.FormatI32:
		return KindInt32
	case mosaic.FormatF32:
		return KindFloat32
	default:
		return KindFloat64
	}
}

// Raster is a container-file-backed mosaic source and alpha image: only
// the tiles a request touches are read, each decoded on first access and
// then kept in a cache that is never evicted for the Raster's lifetime.
// Its origin translates the band's own
// (0,0)-based tile grid into the destination coordinate space a Plan
// composes tiles in.
type Raster[T mosaic.Numeric] struct {
	r      ReadSeekerAt
	header *Header
	band   *Band
	origin image.Point

	mu    sync.Mutex
	tiles map[int][]T
}

// ReadSeekerAt is the minimal file handle a Raster needs: seek to a tile's
// offset and read its (possibly compressed) bytes.
type ReadSeekerAt interface {
	Seek(offset int64, whence int) (int64, error)
	Read(p []byte) (int, error)
}

// NewRaster wraps a band already described by header as a mosaic source
// image, placing its (0,0) tile-grid corner at origin in destination space.
func NewRaster[T mosaic.Numeric](r ReadSeekerAt, header *Header, band *Band, origin image.Point) (*Raster[T], error) {
	want := coreKindOf[T]()
	if band.Kind.Type.Base() != want {
		return nil, UnsupportedError("band sample kind does not match requested raster type")
	}
	if len(band.Dimensions) != 2 {
		return nil, FormatError("raster bands must have exactly two dimensions")
	}
	if band.Separated {
		return nil, UnsupportedError("raster only reads channel-interleaved bands")
	}
	return &Raster[T]{r: r, header: header, band: band, origin: origin, tiles: make(map[int][]T)}, nil
}

func (raster *Raster[T]) Bounds() image.Rectangle {
	w, h := raster.band.Dimensions.Width(), raster.band.Dimensions.Height()
	return image.Rectangle{Min: raster.origin, Max: raster.origin.Add(image.Pt(w, h))}
}

func (raster *Raster[T]) Bands() int { return raster.band.Count }

func (raster *Raster[T]) SampleFormat() mosaic.SampleFormat { return mosaic.SampleFormatOf[T]() }

// NoDataRange returns the no-data predicate persisted on the backing band's
// BandKind, if any. ok is false when the band carries no no-data range.
func (raster *Raster[T]) NoDataRange() (r mosaic.Range[T], ok bool) {
	return NoDataRange[T](raster.band.Kind)
}

func (raster *Raster[T]) tilesX() int { return raster.band.Dimensions.TilesX() }

// tileAt returns the decoded samples of tile tileIndex (row-major,
// channel-interleaved), reading and caching it on first access.
func (raster *Raster[T]) tileAt(tileIndex int) ([]T, error) {
	raster.mu.Lock()
	defer raster.mu.Unlock()

	if cached, ok := raster.tiles[tileIndex]; ok {
		return cached, nil
	}

	raw := make([]byte, raster.band.DiskTileSize(tileIndex))
	if err := raster.band.ReadTile(raster.r, raster.header, tileIndex, raw); err != nil {
		return nil, err
	}

	samples := raster.band.Dimensions.TileSamples() * raster.band.tileChannels()
	decoded := make([]T, samples)
	stride := raster.band.Kind.Size()
	for i := range decoded {
		decoded[i] = decodeCoreSample[T](raw[i*stride:(i+1)*stride], raster.header.ByteOrder)
	}

	raster.tiles[tileIndex] = decoded
	return decoded, nil
}

func decodeCoreSample[T mosaic.Numeric](raw []byte, order binary.ByteOrder) T {
	switch mosaic.SampleFormatOf[T]() {
	case mosaic.FormatU8:
		return T(raw[0])
	case mosaic.FormatU16:
		return T(order.Uint16(raw))
	case mosaic.FormatI16:
		return T(int16(order.Uint16(raw)))
	case mosaic.FormatI32:
		return T(int32(order.Uint32(raw)))
	case mosaic.FormatF32:
		return T(math.Float32frombits(order.Uint32(raw)))
	default:
		return T(math.Float64frombits(order.Uint64(raw)))
	}
}

// GetExtended satisfies mosaic.SourceImage by materializing samples over
// rect, one tile lookup per underlying tile touched, falling back to
// extender.Fill outside the raster's real bounds.
func (raster *Raster[T]) GetExtended(rect image.Rectangle, extender mosaic.BorderExtender[T]) mosaic.ExtendedTileAccessor[T] {
	bounds := raster.Bounds()
	bands := raster.Bands()
	acc := &rasterTileAccessor[T]{rect: rect, bands: bands, data: make([]T, rect.Dx()*rect.Dy()*bands)}

	tileW, tileH := raster.band.Dimensions.TileWidth(), raster.band.Dimensions.TileHeight()
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			pt := image.Pt(x, y)
			if !pt.In(bounds) {
				for b := 0; b < bands; b++ {
					acc.data[i] = extender.Fill(b)
					i++
				}
				continue
			}
			localX := x - raster.origin.X
			localY := y - raster.origin.Y
			tx, ty := localX/tileW, localY/tileH
			tileIndex := ty*raster.tilesX() + tx
			tile, err := raster.tileAt(tileIndex)
			if err != nil {
				for b := 0; b < bands; b++ {
					acc.data[i] = extender.Fill(b)
					i++
				}
				continue
			}
			offX, offY := localX-tx*tileW, localY-ty*tileH
			base := (offY*tileW + offX) * bands
			for b := 0; b < bands; b++ {
				acc.data[i] = tile[base+b]
				i++
			}
		}
	}
	return acc
}

type rasterTileAccessor[T mosaic.Numeric] struct {
	rect  image.Rectangle
	bands int
	data  []T
}

func (a *rasterTileAccessor[T]) Rect() image.Rectangle { return a.rect }
func (a *rasterTileAccessor[T]) Bands() int            { return a.bands }
func (a *rasterTileAccessor[T]) At(x, y, band int) T {
	i := ((y-a.rect.Min.Y)*a.rect.Dx()+(x-a.rect.Min.X))*a.bands + band
	return a.data[i]
}

// RoiRaster is a container-file-backed mosaic.RoiMask: a single-channel i32
// band whose positive samples mark the region of interest.
type RoiRaster struct {
	raster *Raster[int32]
}

// NewRoiRaster wraps an int32 band already described by header as a
// mosaic.RoiMask.
func NewRoiRaster(r ReadSeekerAt, header *Header, band *Band, origin image.Point) (*RoiRaster, error) {
	raster, err := NewRaster[int32](r, header, band, origin)
	if err != nil {
		return nil, err
	}
	return &RoiRaster{raster: raster}, nil
}

func (roi *RoiRaster) Bounds() image.Rectangle { return roi.raster.Bounds() }

// Sample reads a single ROI sample directly out of its backing tile cache,
// rather than materializing a 1x1 ExtendedTileAccessor per call the way
// GetExtended would: a compositor calls Sample once per destination pixel a
// source's ROI covers, so this stays on the hot path.
func (roi *RoiRaster) Sample(x, y int) int32 {
	if !image.Pt(x, y).In(roi.raster.Bounds()) {
		return 0
	}
	tileW, tileH := roi.raster.band.Dimensions.TileWidth(), roi.raster.band.Dimensions.TileHeight()
	localX, localY := x-roi.raster.origin.X, y-roi.raster.origin.Y
	tx, ty := localX/tileW, localY/tileH
	tile, err := roi.raster.tileAt(ty*roi.raster.tilesX() + tx)
	if err != nil {
		return 0
	}
	offX, offY := localX-tx*tileW, localY-ty*tileH
	return tile[offY*tileW+offX]
}
