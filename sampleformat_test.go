package mosaic

import "testing"

func TestClampSaturates(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"u8 over", clampU8(300), uint8(255)},
		{"u8 under", clampU8(-5), uint8(0)},
		{"u16 over", clampU16(70000), uint16(65535)},
		{"i16 over", clampI16(40000), int16(32767)},
		{"i16 under", clampI16(-40000), int16(-32768)},
		{"i32 over", clampI32(1e12), int32(2147483647)},
		{"f32 over", clampF32(1e40), float32(3.4028235e38)},
		{"f64 identity", clampF64(1e300), float64(1e300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.5, 3},
		{-2.5, -3},
		{2.4, 2},
		{-2.4, -2},
	}
	for _, tt := range tests {
		if got := roundHalfAwayFromZero(tt.in); got != tt.want {
			t.Errorf("roundHalfAwayFromZero(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPadSentinel(t *testing.T) {
	if got := padSentinel[uint8](FormatU8); got != 0 {
		t.Errorf("u8 pad = %v, want 0", got)
	}
	if got := padSentinel[int16](FormatI16); got != -32768 {
		t.Errorf("i16 pad = %v, want -32768", got)
	}
}
