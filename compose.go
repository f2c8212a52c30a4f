package mosaic

import "image"

// activeSource is the per-tile materialization of one SourceDescriptor:
// its extended data and (if present) alpha accessors over destRect, per
// spec.md §4.4/§4.5. Sources that don't intersect destRect are elided
// entirely rather than represented with a nil accessor.
type activeSource[T Numeric] struct {
	desc  *SourceDescriptor[T]
	data  ExtendedTileAccessor[T]
	alpha ExtendedTileAccessor[T]
}

// ComposeTile computes the destination tile covering destRect, per
// spec.md §4.3. If no source intersects destRect the result is filled
// entirely with the plan's destination no-data vector.
func (p *Plan[T]) ComposeTile(destRect image.Rectangle) *DestinationTile[T] {
	dst := NewDestinationTile[T](destRect, p.format, p.bands)

	active := make([]activeSource[T], 0, len(p.sources))
	for i := range p.sources {
		sd := &p.sources[i]
		if destRect.Intersect(sd.Source.Bounds()).Empty() {
			continue
		}
		as := activeSource[T]{desc: sd, data: sd.Source.GetExtended(destRect, sd.extends)}
		if sd.Alpha != nil {
			as.alpha = sd.Alpha.GetExtended(destRect, ZeroExtender[T]{})
		}
		active = append(active, as)
	}

	if len(active) == 0 {
		for b := 0; b < p.bands; b++ {
			fillDestNoData(dst, b, p.destNoData[b])
		}
		return dst
	}

	for b := 0; b < p.bands; b++ {
		for y := destRect.Min.Y; y < destRect.Max.Y; y++ {
			for x := destRect.Min.X; x < destRect.Max.X; x++ {
				var v T
				if p.mode == Overlay {
					v = p.overlayPixel(active, x, y, b)
				} else {
					v = p.blendPixel(active, x, y, b)
				}
				dst.Set(x, y, b, v)
			}
		}
	}

	return dst
}

func fillDestNoData[T Numeric](dst *DestinationTile[T], band int, noData T) {
	for y := dst.Rect.Min.Y; y < dst.Rect.Max.Y; y++ {
		for x := dst.Rect.Min.X; x < dst.Rect.Max.X; x++ {
			dst.Set(x, y, band, noData)
		}
	}
}

// isValidSample implements the per-format no-data predicate of spec.md
// §4.2: U8 sources with no-data ranges look the sample up in their
// per-band boolean LUT, every other format checks the range directly, and
// F32/F64 also reject NaN regardless of the configured range.
func isValidSample[T Numeric](sd *SourceDescriptor[T], format SampleFormat, band int, v T) bool {
	if format == FormatU8 && sd.lut != nil {
		return !sd.lut[band].contains(any(v).(uint8))
	}
	if sd.NoData != nil && band < len(sd.NoData) {
		r := sd.NoData[band]
		if r.IsSet() && r.Contains(v) {
			return false
		}
	}
	switch format {
	case FormatF32:
		if f := any(v).(float32); f != f {
			return false
		}
	case FormatF64:
		if f := any(v).(float64); f != f {
			return false
		}
	}
	return true
}

// covers reports whether (x, y) falls within a source's real bounds,
// rather than the border-extension pad materialized around it, per
// spec.md §4.3.1 step 1 ("skip if the source has no data covering p").
func (as *activeSource[T]) covers(x, y int) bool {
	return image.Pt(x, y).In(as.desc.Source.Bounds())
}

// overlayPixel implements spec.md §4.3.1: the first accepting source in
// input order wins.
func (p *Plan[T]) overlayPixel(active []activeSource[T], x, y, band int) T {
	for i := range active {
		as := &active[i]
		if !as.covers(x, y) {
			continue
		}
		v := as.data.At(x, y, band)
		if !isValidSample(as.desc, p.format, band, v) {
			continue
		}
		if p.accepts(as, x, y) {
			return v
		}
	}
	return p.destNoData[band]
}

// accepts computes the OVERLAY acceptance test for a source at (x,
// y), independent of the per-band validity test, per spec.md §4.3.1 step 4.
func (p *Plan[T]) accepts(as *activeSource[T], x, y int) bool {
	switch as.desc.weight {
	case WeightAlpha:
		return as.alpha.At(x, y, 0) != 0
	case WeightRoi:
		return as.desc.Roi.Sample(x, y) > 0
	default:
		return true
	}
}

// blendWeight computes a source's contribution weight at (x, y), per
// spec.md §4.3.2 step 3. isAlphaBitmaskUsed forces any non-zero alpha to
// weight 1 instead of a proportional a/255 weight.
func (p *Plan[T]) blendWeight(as *activeSource[T], x, y int) float64 {
	switch as.desc.weight {
	case WeightAlpha:
		a := toF64(as.alpha.At(x, y, 0))
		if p.isAlphaBitmaskUsed {
			if a > 0 {
				return 1
			}
			return 0
		}
		return a / 255
	case WeightRoi:
		if as.desc.Roi.Sample(x, y) > 0 {
			return 1
		}
		return 0
	default:
		return 1
	}
}

// blendPixel implements spec.md §4.3.2: accumulate weight and weighted
// value in F64 across every source in input order, then write the
// format-clamped weighted mean, or destNoData if no source contributed
// any weight.
func (p *Plan[T]) blendPixel(active []activeSource[T], x, y, band int) T {
	var num, den float64
	for i := range active {
		as := &active[i]
		if !as.covers(x, y) {
			continue
		}
		v := as.data.At(x, y, band)
		valid := isValidSample(as.desc, p.format, band, v)

		var w float64
		if valid {
			w = p.blendWeight(as, x, y)
		}
		den += w

		switch p.format {
		case FormatF32, FormatF64:
			if valid {
				num += w * toF64(v)
			}
		default:
			num += w * toF64(v)
		}
	}

	if den == 0 {
		return p.destNoData[band]
	}
	return clampToFormat[T](p.format, num/den)
}

func toF64[T Numeric](v T) float64 {
	switch x := any(v).(type) {
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}

func clampToFormat[T Numeric](format SampleFormat, acc float64) T {
	switch format {
	case FormatU8:
		return T(clampU8(acc))
	case FormatU16:
		return T(clampU16(acc))
	case FormatI16:
		return T(clampI16(acc))
	case FormatI32:
		return T(clampI32(acc))
	case FormatF32:
		return T(clampF32(acc))
	default:
		return T(clampF64(acc))
	}
}
