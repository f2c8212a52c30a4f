package mosaic

import (
	"image"
	"testing"
)

func rasterU8(rect image.Rectangle, rows [][]byte) *MemoryRaster[uint8] {
	data := make([]uint8, 0, rect.Dx()*rect.Dy())
	for _, row := range rows {
		for _, v := range row {
			data = append(data, v)
		}
	}
	return NewMemoryRaster[uint8](rect, FormatU8, [][]uint8{data})
}

type memoryRoi struct {
	rect image.Rectangle
	data []int32
}

func roiU8(rect image.Rectangle, rows [][]int32) *memoryRoi {
	data := make([]int32, 0, rect.Dx()*rect.Dy())
	for _, row := range rows {
		data = append(data, row...)
	}
	return &memoryRoi{rect: rect, data: data}
}

func (m *memoryRoi) Bounds() image.Rectangle { return m.rect }

func (m *memoryRoi) Sample(x, y int) int32 {
	return m.data[(y-m.rect.Min.Y)*m.rect.Dx()+(x-m.rect.Min.X)]
}

func readBand(dst *DestinationTile[uint8], band int) [][]byte {
	rows := make([][]byte, dst.Rect.Dy())
	for i, y := 0, dst.Rect.Min.Y; y < dst.Rect.Max.Y; i, y = i+1, y+1 {
		row := make([]byte, dst.Rect.Dx())
		for j, x := 0, dst.Rect.Min.X; x < dst.Rect.Max.X; j, x = j+1, x+1 {
			row[j] = dst.At(x, y, band)
		}
		rows[i] = row
	}
	return rows
}

func rowsEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func mustPlan[T Numeric](t *testing.T, opts PlanOptions[T]) *Plan[T] {
	t.Helper()
	p, err := NewPlan(opts)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	return p
}

func TestScenarioS1OverlayFullCoverage(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	a := rasterU8(rect, [][]byte{{10, 20}, {30, 40}})
	b := rasterU8(rect, [][]byte{{50, 60}, {70, 80}})
	p := mustPlan(t, PlanOptions[uint8]{
		Mode:    Overlay,
		Sources: []SourceDescriptor[uint8]{{Source: a}, {Source: b}},
	})
	got := readBand(p.ComposeTile(rect), 0)
	want := [][]byte{{10, 20}, {30, 40}}
	if !rowsEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScenarioS2OverlayNoData(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	a := rasterU8(rect, [][]byte{{10, 255}, {30, 40}})
	b := rasterU8(rect, [][]byte{{50, 60}, {70, 80}})
	noData := NewPointRange[uint8](FormatU8, 255)
	p := mustPlan(t, PlanOptions[uint8]{
		Mode: Overlay,
		Sources: []SourceDescriptor[uint8]{
			{Source: a, NoData: []Range[uint8]{noData}},
			{Source: b},
		},
		DestinationNoData: []float64{0},
	})
	got := readBand(p.ComposeTile(rect), 0)
	want := [][]byte{{10, 60}, {30, 40}}
	if !rowsEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScenarioS3OverlayNonOverlapping(t *testing.T) {
	destRect := image.Rect(0, 0, 2, 2)
	a := rasterU8(image.Rect(0, 0, 1, 2), [][]byte{{10}, {30}})
	b := rasterU8(image.Rect(1, 0, 2, 2), [][]byte{{60}, {80}})
	p := mustPlan(t, PlanOptions[uint8]{
		Mode:              Overlay,
		Sources:           []SourceDescriptor[uint8]{{Source: a}, {Source: b}},
		DestinationNoData: []float64{0},
	})
	got := readBand(p.ComposeTile(destRect), 0)
	want := [][]byte{{10, 60}, {30, 80}}
	if !rowsEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScenarioS4BlendAlphaWeights(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	a := rasterU8(rect, [][]byte{{100, 100}, {100, 100}})
	aAlpha := rasterU8(rect, [][]byte{{255, 0}, {128, 255}})
	b := rasterU8(rect, [][]byte{{200, 200}, {200, 200}})
	bAlpha := rasterU8(rect, [][]byte{{0, 255}, {128, 0}})
	p := mustPlan(t, PlanOptions[uint8]{
		Mode: Blend,
		Sources: []SourceDescriptor[uint8]{
			{Source: a, Alpha: aAlpha},
			{Source: b, Alpha: bAlpha},
		},
	})
	if p.isAlphaBitmaskUsed {
		t.Fatalf("expected isAlphaBitmaskUsed=false when every source carries alpha")
	}
	got := readBand(p.ComposeTile(rect), 0)
	want := [][]byte{{100, 200}, {150, 100}}
	if !rowsEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScenarioS4BlendAlphaBitmask(t *testing.T) {
	rect := image.Rect(0, 0, 2, 1)
	a := rasterU8(rect, [][]byte{{100, 100}})
	aAlpha := rasterU8(rect, [][]byte{{128, 0}})
	b := rasterU8(rect, [][]byte{{200, 200}})
	p := mustPlan(t, PlanOptions[uint8]{
		Mode: Blend,
		Sources: []SourceDescriptor[uint8]{
			{Source: a, Alpha: aAlpha},
			{Source: b},
		},
	})
	if !p.isAlphaBitmaskUsed {
		t.Fatalf("expected isAlphaBitmaskUsed=true when one source lacks alpha")
	}
	got := readBand(p.ComposeTile(rect), 0)
	// pixel 0: a's alpha=128 (non-zero) counts as full weight under the
	// bitmask rule, b always weighs 1 -> mean(100, 200) = 150.
	// pixel 1: a's alpha=0 drops it entirely -> only b contributes -> 200.
	want := [][]byte{{150, 200}}
	if !rowsEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScenarioS5BlendRoi(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	a := rasterU8(rect, [][]byte{{10, 20}, {30, 40}})
	aRoi := roiU8(rect, [][]int32{{1, 0}, {1, 1}})
	b := rasterU8(rect, [][]byte{{50, 60}, {70, 80}})
	bRoi := roiU8(rect, [][]int32{{0, 1}, {1, 0}})
	p := mustPlan(t, PlanOptions[uint8]{
		Mode: Blend,
		Sources: []SourceDescriptor[uint8]{
			{Source: a, Roi: aRoi},
			{Source: b, Roi: bRoi},
		},
		DestinationNoData: []float64{0},
	})
	got := readBand(p.ComposeTile(rect), 0)
	want := [][]byte{{10, 60}, {50, 40}}
	if !rowsEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScenarioS6BlendAllNoData(t *testing.T) {
	rect := image.Rect(0, 0, 1, 1)
	a := rasterU8(rect, [][]byte{{255}})
	b := rasterU8(rect, [][]byte{{255}})
	noData := NewPointRange[uint8](FormatU8, 255)
	p := mustPlan(t, PlanOptions[uint8]{
		Mode: Blend,
		Sources: []SourceDescriptor[uint8]{
			{Source: a, NoData: []Range[uint8]{noData}},
			{Source: b, NoData: []Range[uint8]{noData}},
		},
		DestinationNoData: []float64{7},
	})
	got := p.ComposeTile(rect).At(0, 0, 0)
	if got != 7 {
		t.Errorf("got %d, want destNoData 7", got)
	}
}

func TestInvariantOutsideUnionIsDestNoData(t *testing.T) {
	a := rasterU8(image.Rect(0, 0, 2, 2), [][]byte{{1, 2}, {3, 4}})
	p := mustPlan(t, PlanOptions[uint8]{
		Mode:              Overlay,
		Sources:           []SourceDescriptor[uint8]{{Source: a}},
		DestinationNoData: []float64{9},
	})
	dst := p.ComposeTile(image.Rect(10, 10, 12, 12))
	for _, row := range readBand(dst, 0) {
		for _, v := range row {
			if v != 9 {
				t.Fatalf("got %d, want destNoData 9", v)
			}
		}
	}
}

func TestInvariantSingleSourceIdentity(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	a := rasterU8(rect, [][]byte{{5, 6}, {7, 8}})
	for _, mode := range []Mode{Overlay, Blend} {
		p := mustPlan(t, PlanOptions[uint8]{Mode: mode, Sources: []SourceDescriptor[uint8]{{Source: a}}})
		got := readBand(p.ComposeTile(rect), 0)
		want := [][]byte{{5, 6}, {7, 8}}
		if !rowsEqual(got, want) {
			t.Errorf("mode %d: got %v, want %v", mode, got, want)
		}
	}
}

func TestInvariantOverlayPriority(t *testing.T) {
	rect := image.Rect(0, 0, 1, 1)
	a := rasterU8(rect, [][]byte{{10}})
	b := rasterU8(rect, [][]byte{{20}})
	p := mustPlan(t, PlanOptions[uint8]{Mode: Overlay, Sources: []SourceDescriptor[uint8]{{Source: a}, {Source: b}}})
	got := p.ComposeTile(rect).At(0, 0, 0)
	if got != 10 {
		t.Errorf("got %d, want first source's value 10", got)
	}
}

func TestInvariantU8LUTEquivalence(t *testing.T) {
	r := NewRange[uint8](FormatU8, 250, 255)
	lut := newU8NoDataLUT(r)
	for v := 0; v < 256; v++ {
		if lut.contains(uint8(v)) != r.Contains(uint8(v)) {
			t.Fatalf("LUT disagrees with Range.Contains at %d", v)
		}
	}
}

func TestInvariantNaNRejectedInOverlayAndBlend(t *testing.T) {
	rect := image.Rect(0, 0, 1, 1)
	nan := float32(0)
	nan = nan / nan
	a := NewMemoryRaster[float32](rect, FormatF32, [][]float32{{nan}})
	b := NewMemoryRaster[float32](rect, FormatF32, [][]float32{{5}})

	overlay := mustPlan(t, PlanOptions[float32]{
		Mode:    Overlay,
		Sources: []SourceDescriptor[float32]{{Source: a}, {Source: b}},
	})
	if got := overlay.ComposeTile(rect).At(0, 0, 0); got != 5 {
		t.Errorf("overlay: got %v, want 5 (NaN source skipped)", got)
	}

	blend := mustPlan(t, PlanOptions[float32]{
		Mode:    Blend,
		Sources: []SourceDescriptor[float32]{{Source: a}, {Source: b}},
	})
	if got := blend.ComposeTile(rect).At(0, 0, 0); got != 5 {
		t.Errorf("blend: got %v, want 5 (NaN source contributes zero weight)", got)
	}
}

func TestInvariantIntegerClamping(t *testing.T) {
	rect := image.Rect(0, 0, 1, 1)
	a := NewMemoryRaster[int16](rect, FormatI16, [][]int16{{32000}})
	b := NewMemoryRaster[int16](rect, FormatI16, [][]int16{{32000}})
	aAlpha := NewMemoryRaster[int16](rect, FormatI16, [][]int16{{255}})
	bAlpha := NewMemoryRaster[int16](rect, FormatI16, [][]int16{{255}})
	p, err := NewPlan(PlanOptions[int16]{
		Mode: Blend,
		Sources: []SourceDescriptor[int16]{
			{Source: a, Alpha: aAlpha},
			{Source: b, Alpha: bAlpha},
		},
	})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	got := p.ComposeTile(rect).At(0, 0, 0)
	if got > 32767 || got < -32768 {
		t.Fatalf("result %d escaped int16 range", got)
	}
}
