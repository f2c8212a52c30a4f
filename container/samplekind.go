package container

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/chenxingqiang/go-floatx"
	"github.com/kshard/float8"
	"github.com/shogo82148/float128"
	"github.com/shogo82148/int128"
	"github.com/x448/float16"

	"github.com/owlpinetech/mosaic"
)

// BandKind describes the sample type shared by every channel of a Band,
// plus an optional no-data range persisted alongside it: values a source
// raster reports as "not real data" rather than a genuine sample, per
// mosaic.Range. Unlike a Band's own Name, a BandKind carries no name of its
// own; the band it belongs to already identifies it.
type BandKind struct {
	Type SampleKind

	// NoDataMin and NoDataMax bound the persisted no-data range, if any.
	// Both nil means the band has no recorded no-data range. A single
	// no-data value (the common case) is stored with NoDataMin == NoDataMax.
	// Both must hold a value of the Go type Type.Base() decodes to.
	NoDataMin, NoDataMax                   any
	NoDataMinInclusive, NoDataMaxInclusive bool
}

// Size returns the size in bytes of one sample of this kind.
func (k BandKind) Size() int {
	return k.Type.Size()
}

// HeaderSize returns the number of bytes this BandKind occupies on disk.
func (k BandKind) HeaderSize(h Header) int {
	size := 4 // encoded sample kind plus no-data flags
	if k.NoDataMin != nil {
		size += k.Type.Base().Size()
	}
	if k.NoDataMax != nil {
		size += k.Type.Base().Size()
	}
	return size
}

// Write encodes the sample kind and its optional no-data bounds to w.
func (k BandKind) Write(w io.Writer, h Header) error {
	encoded := k.Type.
		withNoDataMin(k.NoDataMin != nil).
		withNoDataMax(k.NoDataMax != nil).
		withNoDataMinInclusive(k.NoDataMinInclusive).
		withNoDataMaxInclusive(k.NoDataMaxInclusive)

	if err := h.Write(w, encoded); err != nil {
		return err
	}

	if k.NoDataMin != nil {
		raw := make([]byte, k.Type.Base().Size())
		k.Type.Base().PutValue(k.NoDataMin, h.ByteOrder, raw)
		if _, err := w.Write(raw); err != nil {
			return err
		}
	}
	if k.NoDataMax != nil {
		raw := make([]byte, k.Type.Base().Size())
		k.Type.Base().PutValue(k.NoDataMax, h.ByteOrder, raw)
		if _, err := w.Write(raw); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a sample kind and its optional no-data bounds from r.
func (k *BandKind) Read(r io.Reader, h Header) error {
	var encoded SampleKind
	if err := h.Read(r, &encoded); err != nil {
		return err
	}
	k.Type = encoded.Base()
	k.NoDataMinInclusive = encoded.hasNoDataMinInclusive()
	k.NoDataMaxInclusive = encoded.hasNoDataMaxInclusive()

	if encoded.hasNoDataMin() {
		raw := make([]byte, k.Type.Size())
		if _, err := io.ReadFull(r, raw); err != nil {
			return err
		}
		k.NoDataMin = k.Type.Value(raw, h.ByteOrder)
	} else {
		k.NoDataMin = nil
	}

	if encoded.hasNoDataMax() {
		raw := make([]byte, k.Type.Size())
		if _, err := io.ReadFull(r, raw); err != nil {
			return err
		}
		k.NoDataMax = k.Type.Value(raw, h.ByteOrder)
	} else {
		k.NoDataMax = nil
	}

	return nil
}

// NoDataRange converts a BandKind's persisted no-data bounds into the
// mosaic.Range predicate a Plan checks per source pixel. ok is false when
// the band carries no no-data bounds at all.
func NoDataRange[T mosaic.Numeric](k BandKind) (r mosaic.Range[T], ok bool) {
	if k.NoDataMin == nil && k.NoDataMax == nil {
		return mosaic.Range[T]{}, false
	}

	min, hasMin := k.NoDataMin.(T)
	max, hasMax := k.NoDataMax.(T)
	if !hasMin {
		min = max
	}
	if !hasMax {
		max = min
	}

	r = mosaic.NewRange(mosaic.SampleFormatOf[T](), min, max)
	if !k.NoDataMinInclusive {
		r = r.WithExclusiveMin()
	}
	if !k.NoDataMaxInclusive {
		r = r.WithExclusiveMax()
	}
	return r, true
}

// WithNoDataRange returns a copy of k with its no-data bounds set from r.
func WithNoDataRange[T mosaic.Numeric](k BandKind, r mosaic.Range[T]) BandKind {
	k.NoDataMin = any(r.Min)
	k.NoDataMax = any(r.Max)
	k.NoDataMinInclusive = r.MinInclusive
	k.NoDataMaxInclusive = r.MaxInclusive
	return k
}

// SampleKind describes the size and interpretation of one sample. The six
// core kinds (Uint8, Uint16, Int16, Int32, Float32, Float64) are the only
// ones a Raster can decode into a mosaic.SourceImage; the rest exist for
// auxiliary bands carried alongside a mosaic without being composited
// directly.
type SampleKind uint32

const (
	kindBaseMask               SampleKind = 0x0FFFFFFF // lower 28 bits: base sample kind
	kindNoDataMinFlag          SampleKind = 1 << 28
	kindNoDataMaxFlag          SampleKind = 1 << 29
	kindNoDataMinInclusiveFlag SampleKind = 1 << 30
	kindNoDataMaxInclusiveFlag SampleKind = 1 << 31
)

const (
	KindUnknown  SampleKind = 0  // Generally indicates an error.
	KindInt8     SampleKind = 1  // An 8-bit signed integer.
	KindUint8    SampleKind = 2  // An 8-bit unsigned integer; one of the six core kinds.
	KindInt16    SampleKind = 3  // A 16-bit signed integer; one of the six core kinds.
	KindUint16   SampleKind = 4  // A 16-bit unsigned integer; one of the six core kinds.
	KindInt32    SampleKind = 5  // A 32-bit signed integer; one of the six core kinds.
	KindUint32   SampleKind = 6  // A 32-bit unsigned integer.
	KindInt64    SampleKind = 7  // A 64-bit signed integer.
	KindUint64   SampleKind = 8  // A 64-bit unsigned integer.
	KindFloat8   SampleKind = 9  // An 8-bit floating point number.
	KindFloat16  SampleKind = 10 // A 16-bit floating point number.
	KindFloat32  SampleKind = 11 // A 32-bit floating point number; one of the six core kinds.
	KindFloat64  SampleKind = 12 // A 64-bit floating point number; one of the six core kinds.
	KindBool     SampleKind = 13 // A boolean value.
	KindInt128   SampleKind = 14 // A 128-bit signed integer using github.com/shogo82148/int128.
	KindUint128  SampleKind = 15 // A 128-bit unsigned integer using github.com/shogo82148/int128.
	KindFloat128 SampleKind = 16 // A 128-bit floating point number using github.com/shogo82148/float128.
	KindBFloat16 SampleKind = 17 // A 16-bit brain floating point number.
)

// Base returns the sample kind without the no-data encoding flags.
func (c SampleKind) Base() SampleKind {
	return c & kindBaseMask
}

func (c SampleKind) hasNoDataMin() bool { return c&kindNoDataMinFlag != 0 }
func (c SampleKind) hasNoDataMax() bool { return c&kindNoDataMaxFlag != 0 }
func (c SampleKind) hasNoDataMinInclusive() bool {
	return c&kindNoDataMinInclusiveFlag != 0
}
func (c SampleKind) hasNoDataMaxInclusive() bool {
	return c&kindNoDataMaxInclusiveFlag != 0
}

func (c SampleKind) withNoDataMin(v bool) SampleKind { return withFlag(c, kindNoDataMinFlag, v) }
func (c SampleKind) withNoDataMax(v bool) SampleKind { return withFlag(c, kindNoDataMaxFlag, v) }
func (c SampleKind) withNoDataMinInclusive(v bool) SampleKind {
	return withFlag(c, kindNoDataMinInclusiveFlag, v)
}
func (c SampleKind) withNoDataMaxInclusive(v bool) SampleKind {
	return withFlag(c, kindNoDataMaxInclusiveFlag, v)
}

func withFlag(c, flag SampleKind, set bool) SampleKind {
	if set {
		return c | flag
	}
	return c &^ flag
}

// Size returns the size of each element of this sample kind, in bytes.
func (c SampleKind) Size() int {
	switch c.Base() {
	case KindUnknown:
		return 0
	case KindInt8, KindUint8, KindFloat8, KindBool:
		return 1
	case KindInt16, KindUint16, KindFloat16, KindBFloat16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	case KindInt128, KindUint128, KindFloat128:
		return 16
	default:
		panic("container: unsupported sample kind")
	}
}

func (c SampleKind) String() string {
	switch c.Base() {
	case KindUnknown:
		return "unknown"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat8:
		return "float8"
	case KindFloat16:
		return "float16"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindInt128:
		return "int128"
	case KindUint128:
		return "uint128"
	case KindFloat128:
		return "float128"
	case KindBFloat16:
		return "bfloat16"
	default:
		panic("container: unsupported sample kind")
	}
}

// Value reads the value of a given SampleKind from the provided raw byte
// slice, using order to interpret multi-byte encodings.
func (c SampleKind) Value(raw []byte, o binary.ByteOrder) any {
	switch c.Base() {
	case KindUnknown:
		panic("container: tried to read sample kind with unknown size")
	case KindInt8:
		return int8(raw[0])
	case KindUint8:
		return raw[0]
	case KindInt16:
		return int16(o.Uint16(raw))
	case KindUint16:
		return o.Uint16(raw)
	case KindInt32:
		return int32(o.Uint32(raw))
	case KindUint32:
		return o.Uint32(raw)
	case KindInt64:
		return int64(o.Uint64(raw))
	case KindUint64:
		return o.Uint64(raw)
	case KindFloat8:
		return float8.Float8(raw[0])
	case KindFloat16:
		return float16.Frombits(o.Uint16(raw))
	case KindFloat32:
		return math.Float32frombits(o.Uint32(raw))
	case KindFloat64:
		return math.Float64frombits(o.Uint64(raw))
	case KindBool:
		return raw[0] != 0
	case KindInt128:
		h, l := readWide(raw, o)
		return int128.Int128{H: int64(h), L: l}
	case KindUint128:
		h, l := readWide(raw, o)
		return int128.Uint128{H: h, L: l}
	case KindFloat128:
		h, l := readWide(raw, o)
		return float128.FromBits(h, l)
	case KindBFloat16:
		return floatx.BF16Frombits(o.Uint16(raw))
	default:
		panic("container: tried to read unsupported sample kind")
	}
}

// PutValue writes val, assumed to correspond to this SampleKind, into raw
// according to the byte order specified.
func (c SampleKind) PutValue(val any, o binary.ByteOrder, raw []byte) {
	switch c.Base() {
	case KindUnknown:
		panic("container: tried to write sample kind with unknown size")
	case KindInt8:
		raw[0] = byte(val.(int8))
	case KindUint8:
		raw[0] = val.(uint8)
	case KindInt16:
		o.PutUint16(raw, uint16(val.(int16)))
	case KindUint16:
		o.PutUint16(raw, val.(uint16))
	case KindInt32:
		o.PutUint32(raw, uint32(val.(int32)))
	case KindUint32:
		o.PutUint32(raw, val.(uint32))
	case KindInt64:
		o.PutUint64(raw, uint64(val.(int64)))
	case KindUint64:
		o.PutUint64(raw, val.(uint64))
	case KindFloat8:
		raw[0] = byte(val.(float8.Float8))
	case KindFloat16:
		o.PutUint16(raw, val.(float16.Float16).Bits())
	case KindFloat32:
		o.PutUint32(raw, math.Float32bits(val.(float32)))
	case KindFloat64:
		o.PutUint64(raw, math.Float64bits(val.(float64)))
	case KindBool:
		if val.(bool) {
			raw[0] = 1
		} else {
			raw[0] = 0
		}
	case KindInt128:
		v := val.(int128.Int128)
		writeWide(raw, o, uint64(v.H), v.L)
	case KindUint128:
		v := val.(int128.Uint128)
		writeWide(raw, o, v.H, v.L)
	case KindFloat128:
		h, l := val.(float128.Float128).Bits()
		writeWide(raw, o, h, l)
	case KindBFloat16:
		o.PutUint16(raw, uint16(val.(floatx.BFloat16)))
	default:
		panic("container: tried to write unsupported sample kind")
	}
}

// readWide reads a 128-bit quantity split across two uint64 halves,
// honoring byte order for which half comes first on disk.
func readWide(raw []byte, o binary.ByteOrder) (hi, lo uint64) {
	if o == binary.BigEndian {
		return o.Uint64(raw[0:8]), o.Uint64(raw[8:16])
	}
	return o.Uint64(raw[8:16]), o.Uint64(raw[0:8])
}

func writeWide(raw []byte, o binary.ByteOrder, hi, lo uint64) {
	if o == binary.BigEndian {
		o.PutUint64(raw[0:8], hi)
		o.PutUint64(raw[8:16], lo)
	} else {
		o.PutUint64(raw[0:8], lo)
		o.PutUint64(raw[8:16], hi)
	}
}
