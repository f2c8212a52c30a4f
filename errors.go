package mosaic

import "fmt"

// MismatchedSampleFormatError reports a source whose SampleFormat doesn't
// match the format the plan was constructed with, per spec.md §7.
type MismatchedSampleFormatError struct {
	SourceIndex int
	Expected    SampleFormat
	Got         SampleFormat
}

func (e MismatchedSampleFormatError) Error() string {
	return fmt.Sprintf("mosaic: source %d has sample format %s, plan expects %s", e.SourceIndex, e.Got, e.Expected)
}

// MismatchedBandCountError reports a source whose band count disagrees with
// the plan's band count.
type MismatchedBandCountError struct {
	SourceIndex int
	Expected    int
	Got         int
}

func (e MismatchedBandCountError) Error() string {
	return fmt.Sprintf("mosaic: source %d has %d bands, plan expects %d", e.SourceIndex, e.Got, e.Expected)
}

// NonUniformBandWidthError reports a source whose alpha image is not
// single-band, or whose per-band no-data range slice does not have one
// entry per data band.
type NonUniformBandWidthError struct {
	SourceIndex int
	DataBands   int
	OtherBands  int
	Other       string
}

func (e NonUniformBandWidthError) Error() string {
	return fmt.Sprintf("mosaic: source %d has %d data bands but %s has %d", e.SourceIndex, e.DataBands, e.Other, e.OtherBands)
}

// InvalidLayoutError reports a plan whose destination layout could not be
// derived from its sources, or was given explicitly but is degenerate.
type InvalidLayoutError struct {
	Reason string
}

func (e InvalidLayoutError) Error() string {
	return fmt.Sprintf("mosaic: invalid layout: %s", e.Reason)
}

// InvalidNoDataRangeError reports a no-data range whose sample format does
// not match the plan's sample format. The order of its bounds is not
// checked.
type InvalidNoDataRangeError struct {
	SourceIndex int
	Band        int
}

func (e InvalidNoDataRangeError) Error() string {
	return fmt.Sprintf("mosaic: source %d band %d has an invalid no-data range", e.SourceIndex, e.Band)
}

// SourceCountMismatchError reports a parallel slice (alphas, ROIs, no-data
// ranges) passed to NewSourceDescriptors whose length disagrees with the
// source slice it's meant to line up with.
type SourceCountMismatchError struct {
	Field string
	Count int
	Want  int
}

func (e SourceCountMismatchError) Error() string {
	return fmt.Sprintf("mosaic: %s has %d entries, want %d", e.Field, e.Count, e.Want)
}

// UnsupportedSampleFormatError reports a SampleFormat value outside the six
// defined constants.
type UnsupportedSampleFormatError struct {
	Format SampleFormat
}

func (e UnsupportedSampleFormatError) Error() string {
	return fmt.Sprintf("mosaic: unsupported sample format %d", int(e.Format))
}
