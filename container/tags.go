package container

import "io"

// Well-known tag keys a mosaic tool may record in a TagSection. Nothing
// requires these keys be present or exclusive; a TagSection is still a
// free-form string map underneath.
const (
	TagMosaicMode  = "mosaic-mode"  // the compositing mode used to produce this file: "overlay" or "blend"
	TagSourceCount = "source-count" // number of source rasters composited into this file
	TagColorModel  = "color-model"  // Go image/color model an imported image was decoded from
)

// TagSection is a chained block of file-level string metadata: provenance
// like the compositing mode a destination file was produced with, or the
// color model an imported image carried. A container file can hold zero or
// more sections, each pointing to the next via NextTagsStart, so tags can be
// appended without rewriting earlier ones.
type TagSection struct {
	Tags          map[string]string // The tags for this section.
	NextTagsStart int64             // Byte offset from the start of the file to the next tag section, 0 if this is the last.
}

// Get looks up a tag by key in this section only; it does not follow
// NextTagsStart. Use File.AllTags to search a whole chain.
func (t *TagSection) Get(key string) (string, bool) {
	v, ok := t.Tags[key]
	return v, ok
}

// Write encodes the tag count, the next-section offset, then each key/value
// pair to w, according to the byte order and offset width in h.
func (t *TagSection) Write(w io.Writer, h *Header) error {
	if err := h.Write(w, uint32(len(t.Tags))); err != nil {
		return err
	}
	if err := h.WriteOffset(w, t.NextTagsStart); err != nil {
		return err
	}
	for k, v := range t.Tags {
		if err := h.WriteFriendly(w, k); err != nil {
			return err
		}
		if err := h.WriteFriendly(w, v); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a tag section written by Write.
func (t *TagSection) Read(r io.Reader, h *Header) error {
	var tagCount uint32
	if err := h.Read(r, &tagCount); err != nil {
		return err
	}

	nextTagsStart, err := h.ReadOffset(r)
	if err != nil {
		return err
	}
	t.NextTagsStart = nextTagsStart

	t.Tags = make(map[string]string, tagCount)
	for range tagCount {
		key, err := h.ReadFriendly(r)
		if err != nil {
			return err
		}
		val, err := h.ReadFriendly(r)
		if err != nil {
			return err
		}
		t.Tags[key] = val
	}
	return nil
}
