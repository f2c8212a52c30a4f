package container

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// FileType is the four-byte magic marker at the start of every container
// file.
const FileType = "MSC1"

// Version is the container format version this package writes and the
// highest version it will read.
const Version = 1

// Header contains the information needed to read or write the rest of a
// container file: byte order, offset width, and the locations of the first
// tag section and the first band in the file's two independent chains.
type Header struct {
	Version         int
	OffsetSize      int
	ByteOrder       binary.ByteOrder
	FirstBandOffset int64
	FirstTagsOffset int64
}

func (h *Header) Write(w io.Writer, val any) error {
	return binary.Write(w, h.ByteOrder, val)
}

func (h *Header) Read(r io.Reader, val any) error {
	return binary.Read(r, h.ByteOrder, val)
}

// WriteOffset writes offset using this header's OffsetSize, either as a
// truncated int32 or a full int64.
func (h *Header) WriteOffset(w io.Writer, offset int64) error {
	switch h.OffsetSize {
	case 4:
		return binary.Write(w, h.ByteOrder, int32(offset))
	case 8:
		return binary.Write(w, h.ByteOrder, offset)
	default:
		return FormatError(fmt.Sprintf("container: unsupported offset size %d", h.OffsetSize))
	}
}

// ReadOffset reads a single band or tag chain offset, sized per OffsetSize.
func (h *Header) ReadOffset(r io.Reader) (int64, error) {
	switch h.OffsetSize {
	case 4:
		var offset int32
		err := binary.Read(r, h.ByteOrder, &offset)
		return int64(offset), err
	case 8:
		var offset int64
		err := binary.Read(r, h.ByteOrder, &offset)
		return offset, err
	default:
		return 0, FormatError(fmt.Sprintf("container: unsupported offset size %d", h.OffsetSize))
	}
}

// WriteOffsets writes a Band's tile byte-count or tile-offset bookkeeping
// slices, one offset-sized value per tile.
func (h *Header) WriteOffsets(w io.Writer, offsets []int64) error {
	for _, o := range offsets {
		if err := h.WriteOffset(w, o); err != nil {
			return err
		}
	}
	return nil
}

// ReadOffsets fills offsets in place, one offset-sized value per element.
func (h *Header) ReadOffsets(r io.Reader, offsets []int64) error {
	for i := range offsets {
		v, err := h.ReadOffset(r)
		if err != nil {
			return err
		}
		offsets[i] = v
	}
	return nil
}

// WriteFriendly writes a length-prefixed string, used for band names and
// tag keys/values.
func (h *Header) WriteFriendly(w io.Writer, s string) error {
	if err := h.Write(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// ReadFriendly reads a string written by WriteFriendly.
func (h *Header) ReadFriendly(r io.Reader) (string, error) {
	var n uint16
	if err := h.Read(r, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	return string(buf), err
}

// encodeByteOrder maps a binary.ByteOrder to the single marker byte the
// header persists it as.
func encodeByteOrder(order binary.ByteOrder) byte {
	if order == binary.BigEndian {
		return 0xff
	}
	return 0x00
}

// decodeByteOrder is encodeByteOrder's inverse, erroring on any marker byte
// this package didn't itself write.
func decodeByteOrder(marker byte) (binary.ByteOrder, error) {
	switch marker {
	case 0x00:
		return binary.LittleEndian, nil
	case 0xff:
		return binary.BigEndian, nil
	default:
		return nil, FormatError("unsupported or invalid byte order specified")
	}
}

// WriteHeader writes the file marker, version, offset size, byte order and
// the two chain-start offsets that anchor a container file's band and tag
// sections.
func (h *Header) WriteHeader(w io.Writer) error {
	if _, err := w.Write([]byte(FileType)); err != nil {
		return err
	}
	if _, err := w.Write([]byte(fmt.Sprintf("%02d", h.Version))); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(h.OffsetSize), encodeByteOrder(h.ByteOrder)}); err != nil {
		return err
	}
	if err := h.WriteOffset(w, h.FirstBandOffset); err != nil {
		return err
	}
	return h.WriteOffset(w, h.FirstTagsOffset)
}

// OverwriteOffsets patches the first-band and first-tags offsets in a
// header that has already been written to w, without disturbing the
// stream's current position. Every container writer uses this once its
// tag and band chains have been laid out, since their starting offsets
// aren't known until after the header itself has already been written.
func (h *Header) OverwriteOffsets(w io.WriteSeeker, firstBandOffset, firstTagsOffset int64) error {
	oldPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Seek(int64(len(FileType))+2+1+1, io.SeekStart); err != nil {
		return err
	}

	h.FirstBandOffset = firstBandOffset
	h.FirstTagsOffset = firstTagsOffset
	if err := h.WriteOffset(w, firstBandOffset); err != nil {
		return err
	}
	if err := h.WriteOffset(w, firstTagsOffset); err != nil {
		return err
	}

	_, err = w.Seek(oldPos, io.SeekStart)
	return err
}

// ReadHeader parses a container file's header from r, rejecting anything
// that isn't a well-formed header this package's own version can read
// rather than panicking on malformed input.
func (h *Header) ReadHeader(r io.Reader) error {
	buf := make([]byte, 4)

	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	if string(buf) != FileType {
		return FormatError("container file marker not found at start of file")
	}

	if _, err := io.ReadFull(r, buf[0:2]); err != nil {
		return err
	}
	version, err := strconv.ParseInt(string(buf[0:2]), 10, 32)
	if err != nil {
		return err
	}
	if version > Version {
		return FormatError("reader does not support this version of container file")
	}
	h.Version = int(version)

	if _, err := io.ReadFull(r, buf[0:2]); err != nil {
		return err
	}
	if buf[0] != 4 && buf[0] != 8 {
		return FormatError("reader only supports offset sizes of 4 or 8 bytes")
	}
	h.OffsetSize = int(buf[0])

	byteOrder, err := decodeByteOrder(buf[1])
	if err != nil {
		return err
	}
	h.ByteOrder = byteOrder

	firstBandOffset, err := h.ReadOffset(r)
	if err != nil {
		return err
	}
	h.FirstBandOffset = firstBandOffset

	firstTagsOffset, err := h.ReadOffset(r)
	if err != nil {
		return err
	}
	h.FirstTagsOffset = firstTagsOffset

	return nil
}
