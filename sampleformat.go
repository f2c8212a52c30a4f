package mosaic

import "math"

// SampleFormat identifies one of the six numeric sample encodings a mosaic
// plan can operate on. Every source, alpha mask and destination raster in a
// single plan shares the same SampleFormat.
type SampleFormat int

const (
	FormatUnknown SampleFormat = iota
	FormatU8
	FormatU16
	FormatI16
	FormatI32
	FormatF32
	FormatF64
)

// Numeric is the set of Go types a mosaic plan can be instantiated over.
// Each constant maps to exactly one of these underlying types.
type Numeric interface {
	~uint8 | ~uint16 | ~int16 | ~int32 | ~float32 | ~float64
}

// Size returns the width in bytes of one sample of this format.
func (f SampleFormat) Size() int {
	switch f {
	case FormatU8:
		return 1
	case FormatU16, FormatI16:
		return 2
	case FormatI32, FormatF32:
		return 4
	case FormatF64:
		return 8
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatU16:
		return "u16"
	case FormatI16:
		return "i16"
	case FormatI32:
		return "i32"
	case FormatF32:
		return "f32"
	case FormatF64:
		return "f64"
	default:
		return "unknown"
	}
}

func (f SampleFormat) valid() bool {
	switch f {
	case FormatU8, FormatU16, FormatI16, FormatI32, FormatF32, FormatF64:
		return true
	default:
		return false
	}
}

// roundHalfAwayFromZero implements the rounding rule required for the
// integer BLEND clamp paths: ties round away from zero rather than to even.
func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return math.Floor(v + 0.5)
	}
	return math.Ceil(v - 0.5)
}

func clampU8(acc float64) uint8 {
	r := roundHalfAwayFromZero(acc)
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return uint8(r)
}

func clampU16(acc float64) uint16 {
	r := roundHalfAwayFromZero(acc)
	if r <= 0 {
		return 0
	}
	if r >= 65535 {
		return 65535
	}
	return uint16(r)
}

func clampI16(acc float64) int16 {
	r := roundHalfAwayFromZero(acc)
	if r <= math.MinInt16 {
		return math.MinInt16
	}
	if r >= math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(r)
}

func clampI32(acc float64) int32 {
	r := roundHalfAwayFromZero(acc)
	if r <= math.MinInt32 {
		return math.MinInt32
	}
	if r >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(r)
}

func clampF32(acc float64) float32 {
	if acc >= math.MaxFloat32 {
		return math.MaxFloat32
	}
	if acc <= -math.MaxFloat32 {
		return -math.MaxFloat32
	}
	return float32(acc)
}

// clampF64 is the identity: spec.md §9 requires the F64 BLEND path to write
// the quotient verbatim, unlike every other format.
func clampF64(acc float64) float64 {
	return acc
}

// sampleFormatOf returns the SampleFormat corresponding to a Numeric type
// parameter, letting generic code recover which of the six variants it was
// instantiated with without runtime type dispatch in the hot path.
func sampleFormatOf[T Numeric]() SampleFormat {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return FormatU8
	case uint16:
		return FormatU16
	case int16:
		return FormatI16
	case int32:
		return FormatI32
	case float32:
		return FormatF32
	case float64:
		return FormatF64
	default:
		return FormatUnknown
	}
}

// fromF64 converts a destination no-data value supplied as float64 into the
// plan's sample type, saturating for integer formats.
func fromF64[T Numeric](v float64) T {
	switch sampleFormatOf[T]() {
	case FormatU8:
		return T(clampU8(v))
	case FormatU16:
		return T(clampU16(v))
	case FormatI16:
		return T(clampI16(v))
	case FormatI32:
		return T(clampI32(v))
	case FormatF32:
		return T(clampF32(v))
	default:
		return T(v)
	}
}

// SampleFormatOf exposes sampleFormatOf to other packages (namely
// container's disk-backed source images), which need to recover a
// SampleFormat from a Numeric type parameter without reflection.
func SampleFormatOf[T Numeric]() SampleFormat {
	return sampleFormatOf[T]()
}

// FromFloat64 exposes fromF64 to other packages that hold a value as
// float64 (e.g. cmd/mosaic-compose's -dest-nodata flag) and need to
// saturate it into a plan's sample type.
func FromFloat64[T Numeric](v float64) T {
	return fromF64[T](v)
}

// padSentinel returns the border-extension pad value for a data accessor of
// this format: the format's "saturated-low" value, per spec.md §4.4.
func padSentinel[T Numeric](format SampleFormat) T {
	switch format {
	case FormatU8, FormatU16:
		return T(0)
	case FormatI16:
		v := int32(math.MinInt16)
		return T(v)
	case FormatI32:
		v := int64(math.MinInt32)
		return T(v)
	case FormatF32:
		v := float64(-math.MaxFloat32)
		return T(v)
	case FormatF64:
		v := -math.MaxFloat64
		return T(v)
	default:
		return T(0)
	}
}
