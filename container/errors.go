package container

import "fmt"

// FormatError reports a malformed container file: bad magic, an
// unsupported version, or an internal inconsistency in a header.
type FormatError string

func (e FormatError) Error() string {
	return "container: format error - " + string(e)
}

// UnsupportedError reports a request the container package cannot honor:
// an unknown compression scheme or sample kind.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return "container: unsupported action - " + string(e)
}

// IntegrityError reports a tile whose stored checksum does not match its
// decompressed bytes.
type IntegrityError struct {
	TileIndex int
	BandName  string
}

func (e IntegrityError) Error() string {
	return fmt.Sprintf("container: data integrity compromised - tile %d, band '%s'", e.TileIndex, e.BandName)
}
