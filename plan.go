package mosaic

import "image"

// Mode selects a MosaicPlan's compositing behavior.
type Mode int

const (
	// Overlay picks the first accepting source per pixel, per spec.md §4.3.1.
	Overlay Mode = iota
	// Blend computes a weighted mean of accepting sources, per spec.md §4.3.2.
	Blend
)

// WeightKind is the per-source, per-tile validity/weighting strategy
// derived from which of alpha or ROI a source carries, per spec.md §3.
type WeightKind int

const (
	WeightNone WeightKind = iota
	WeightAlpha
	WeightRoi
)

// LayoutHint optionally supplies the destination rectangle and sample
// model when sources are absent or when the caller wants to override the
// bounds union, per spec.md §4.1.
type LayoutHint struct {
	Set    bool
	Rect   image.Rectangle
	Format SampleFormat
	Bands  int
}

// SourceDescriptor bundles one source image with its optional alpha mask,
// ROI mask and no-data range, per spec.md §3.
type SourceDescriptor[T Numeric] struct {
	Source SourceImage[T]
	Alpha  AlphaImage[T] // nil if absent
	Roi    RoiMask       // nil if absent
	NoData []Range[T]    // nil, or one entry per band

	extends BorderExtender[T] // computed at plan construction
	weight  WeightKind
	lut     []u8NoDataLUT // one per band, only populated when T is uint8 and NoData is set
}

// NewSourceDescriptors pairs sources with the alpha, ROI and no-data slice
// entries at the same index, so callers that already keep their sources'
// alpha/ROI/no-data information in parallel slices (as cmd/mosaic-compose
// does when reading a batch of source files) don't have to hand-build each
// SourceDescriptor field by field. alphas, rois and noData may each be nil,
// meaning none of the sources carry that piece; if non-nil, each must have
// exactly one entry per source.
func NewSourceDescriptors[T Numeric](sources []SourceImage[T], alphas []AlphaImage[T], rois []RoiMask, noData [][]Range[T]) ([]SourceDescriptor[T], error) {
	if alphas != nil && len(alphas) != len(sources) {
		return nil, SourceCountMismatchError{Field: "alphas", Count: len(alphas), Want: len(sources)}
	}
	if rois != nil && len(rois) != len(sources) {
		return nil, SourceCountMismatchError{Field: "rois", Count: len(rois), Want: len(sources)}
	}
	if noData != nil && len(noData) != len(sources) {
		return nil, SourceCountMismatchError{Field: "noData", Count: len(noData), Want: len(sources)}
	}

	descs := make([]SourceDescriptor[T], len(sources))
	for i, src := range sources {
		descs[i].Source = src
		if alphas != nil {
			descs[i].Alpha = alphas[i]
		}
		if rois != nil {
			descs[i].Roi = rois[i]
		}
		if noData != nil {
			descs[i].NoData = noData[i]
		}
	}
	return descs, nil
}

// PlanOptions configures NewPlan, per spec.md §6.
type PlanOptions[T Numeric] struct {
	Mode              Mode
	Sources           []SourceDescriptor[T]
	DestinationNoData []float64 // broadcast/truncated to band count, per spec.md §3
	LayoutHint        LayoutHint
}

// Plan is the immutable, precomputed compositing plan produced by NewPlan.
// It owns its LUTs and destination no-data vector and may be shared freely
// across goroutines calling ComposeTile concurrently over disjoint
// rectangles, per spec.md §5.
type Plan[T Numeric] struct {
	mode               Mode
	rect               image.Rectangle
	format             SampleFormat
	bands              int
	sources            []SourceDescriptor[T]
	destNoData         []T
	destNoDataF64      []float64
	isAlphaBitmaskUsed bool
}

// NewPlan validates opts and derives the destination layout, per spec.md
// §4.1. It never touches source pixel data; all decisions are made from
// bounds, band counts and sample formats alone.
func NewPlan[T Numeric](opts PlanOptions[T]) (*Plan[T], error) {
	format := sampleFormatOf[T]()
	if !format.valid() {
		return nil, UnsupportedSampleFormatError{Format: format}
	}

	p := &Plan[T]{
		mode:    opts.Mode,
		format:  format,
		sources: opts.Sources,
	}

	if len(opts.Sources) == 0 {
		if !opts.LayoutHint.Set || opts.LayoutHint.Rect.Empty() || opts.LayoutHint.Bands < 1 {
			return nil, InvalidLayoutError{Reason: "no sources and layout hint does not supply a valid sample model and dimensions"}
		}
		p.rect = opts.LayoutHint.Rect
		p.bands = opts.LayoutHint.Bands
	} else {
		bands := opts.Sources[0].Source.Bands()
		if bands < 1 {
			return nil, InvalidLayoutError{Reason: "source band count must be at least 1"}
		}
		union := opts.Sources[0].Source.Bounds()

		hasAlpha := false
		lacksAlpha := false

		for i, sd := range opts.Sources {
			if sd.Source.SampleFormat() != format {
				return nil, MismatchedSampleFormatError{SourceIndex: i, Expected: format, Got: sd.Source.SampleFormat()}
			}
			if sd.Source.Bands() != bands {
				return nil, MismatchedBandCountError{SourceIndex: i, Expected: bands, Got: sd.Source.Bands()}
			}
			if sd.Alpha != nil {
				hasAlpha = true
				if sd.Alpha.Bands() != 1 {
					return nil, NonUniformBandWidthError{SourceIndex: i, DataBands: bands, OtherBands: sd.Alpha.Bands(), Other: "alpha"}
				}
				if sd.Alpha.SampleFormat() != format {
					return nil, MismatchedSampleFormatError{SourceIndex: i, Expected: format, Got: sd.Alpha.SampleFormat()}
				}
			} else {
				lacksAlpha = true
			}
			if sd.NoData != nil && len(sd.NoData) != bands {
				return nil, NonUniformBandWidthError{SourceIndex: i, DataBands: bands, OtherBands: len(sd.NoData), Other: "no-data ranges"}
			}
			for b, r := range sd.NoData {
				if r.IsSet() && r.SampleFormat() != format {
					return nil, InvalidNoDataRangeError{SourceIndex: i, Band: b}
				}
			}
			union = union.Union(sd.Source.Bounds())
		}

		p.bands = bands
		p.isAlphaBitmaskUsed = hasAlpha && lacksAlpha

		if opts.LayoutHint.Set && !opts.LayoutHint.Rect.Empty() && opts.LayoutHint.Bands == bands && opts.LayoutHint.Format == format {
			p.rect = opts.LayoutHint.Rect
		} else {
			p.rect = union
		}
	}

	p.destNoDataF64 = broadcastNoDataF64(opts.DestinationNoData, p.bands)
	p.destNoData = make([]T, p.bands)
	for i, v := range p.destNoDataF64 {
		p.destNoData[i] = fromF64[T](v)
	}

	for i := range p.sources {
		sd := &p.sources[i]
		switch {
		case sd.Alpha != nil:
			sd.weight = WeightAlpha
		case sd.Roi != nil:
			sd.weight = WeightRoi
		default:
			sd.weight = WeightNone
		}
		sd.extends = SaturatedLowExtender[T]{Format: format}
		if format == FormatU8 && sd.NoData != nil {
			sd.lut = make([]u8NoDataLUT, p.bands)
			for b, r := range sd.NoData {
				sd.lut[b] = newU8NoDataLUT(any(r).(Range[uint8]))
			}
		}
	}

	return p, nil
}

// broadcastNoDataF64 derives one destination no-data value per band from a
// float64 vector of length 1 (broadcast) or >= bandCount (the first
// bandCount entries are used); any other length broadcasts the first
// element, per the resolved open question in spec.md §9 / SPEC_FULL.md.
func broadcastNoDataF64(input []float64, bandCount int) []float64 {
	out := make([]float64, bandCount)
	if len(input) == 0 {
		return out
	}
	if len(input) >= bandCount {
		copy(out, input[:bandCount])
		return out
	}
	for i := range out {
		out[i] = input[0]
	}
	return out
}

// Bounds returns the destination rectangle this plan composites over,
// derived at construction from the union of its sources (or LayoutHint).
func (p *Plan[T]) Bounds() image.Rectangle { return p.rect }

// Bands returns the number of bands every composited tile carries.
func (p *Plan[T]) Bands() int { return p.bands }

// SampleFormat returns the sample format shared by every source, alpha
// mask and the destination.
func (p *Plan[T]) SampleFormat() SampleFormat { return p.format }
