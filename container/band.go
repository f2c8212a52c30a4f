package container

import (
	"hash/crc32"
	"io"
)

// Band is one on-disk raster band group of a container file: a uniformly
// typed grid of Count same-kind channels per pixel, tiled according to
// Dimensions. A container file holds one Band per source or per derived
// mosaic tier.
type Band struct {
	Name string // Friendly name of the band.
	// Indicates whether the Count channels of the dataset are stored
	// separated or interleaved. If true, each channel is tiled and
	// stored independently. If false, the default, channel values for
	// a given pixel are stored next to each other.
	Separated   bool
	Compression Compression // The compression scheme used on this band's tile data.
	Kind        BandKind    // The sample kind shared by every channel in this band.
	Count       int         // The number of channels stored per pixel.
	// Dimensions describes the tiled x/y layout of this band. Samples
	// along the first dimension are closest together in memory.
	Dimensions    Dimensions
	TileBytes     []int64 // (Compressed) size in bytes of each on-disk tile.
	TileOffsets   []int64 // Byte offset from the start of the file of each on-disk tile.
	NextBandStart int64   // Byte offset of the next band in the file, 0 if this is the last.
}

// NewBand constructs a Band with tile bookkeeping slices sized correctly
// for its layout.
func NewBand(name string, separated bool, compression Compression, kind BandKind, count int, dims Dimensions) *Band {
	b := &Band{
		Name:        name,
		Separated:   separated,
		Compression: compression,
		Kind:        kind,
		Count:       count,
		Dimensions:  dims,
	}
	b.TileBytes = make([]int64, b.DiskTiles())
	b.TileOffsets = make([]int64, b.DiskTiles())
	return b
}

// tileChannels returns the number of channels stored within a single
// on-disk tile: 1 when channels are separated (each tile holds one
// channel), Count when interleaved.
func (b *Band) tileChannels() int {
	if b.Separated {
		return 1
	}
	return b.Count
}

// tileSampleStride returns the byte width of one pixel's worth of data
// within the tile at tileIndex, the unit compression.go's RLE8 scheme
// runs of.
func (b *Band) tileSampleStride(tileIndex int) int {
	return b.Kind.Size() * b.tileChannels()
}

// DiskTileSize returns the size in bytes of the requested on-disk tile.
// For interleaved bands every tile is the same size; for separated bands
// the number of on-disk tiles is Tiles() * Count, but each tile is
// correspondingly smaller.
func (b *Band) DiskTileSize(tileIndex int) int {
	if len(b.Dimensions) == 0 || b.Dimensions.Tiles() == 0 {
		return 0
	}
	return b.Dimensions.TileSamples() * b.tileSampleStride(tileIndex)
}

// DiskTiles returns the number of discrete tiles actually stored in the
// backing file. For separated bands this is Tiles() * Count.
func (b *Band) DiskTiles() int {
	tiles := b.Dimensions.Tiles()
	if b.Separated {
		tiles *= b.Count
	}
	return tiles
}

// HeaderSize returns the number of bytes this band's header occupies on
// disk.
func (b *Band) HeaderSize(h *Header) int {
	headerSize := 4 + 4                   // configuration and compression
	headerSize += 2 + len([]byte(b.Name)) // name length, then name
	headerSize += b.Kind.HeaderSize(*h)
	headerSize += 4 // channel count
	headerSize += b.Dimensions.HeaderSize(*h)
	headerSize += b.DiskTiles() * h.OffsetSize // tile byte counts
	headerSize += b.DiskTiles() * h.OffsetSize // tile offsets
	headerSize += h.OffsetSize                 // next band start offset
	return headerSize
}

// DataSize returns the total on-disk size in bytes of this band's
// (possibly compressed) tile data, excluding its header.
func (b *Band) DataSize() int64 {
	size := int64(0)
	for _, n := range b.TileBytes {
		size += n
	}
	return size
}

// WriteHeader writes the binary description of the band to w.
func (b *Band) WriteHeader(w io.Writer, h *Header) error {
	tiles := b.DiskTiles()
	if tiles != len(b.TileBytes) {
		return FormatError("invalid TileBytes: must have same number of elements as tiles in band for valid container files")
	}
	if tiles != len(b.TileOffsets) {
		return FormatError("invalid TileOffsets: must have same number of elements as tiles in band for valid container files")
	}

	configuration := uint32(0)
	if b.Separated {
		configuration = 1
	}
	if err := h.Write(w, configuration); err != nil {
		return err
	}
	if err := h.Write(w, b.Compression); err != nil {
		return err
	}
	if err := h.WriteFriendly(w, b.Name); err != nil {
		return err
	}
	if err := b.Kind.Write(w, *h); err != nil {
		return err
	}
	if err := h.Write(w, uint32(b.Count)); err != nil {
		return err
	}
	if err := b.Dimensions.Write(w, *h); err != nil {
		return err
	}
	if err := h.WriteOffsets(w, b.TileBytes); err != nil {
		return err
	}
	if err := h.WriteOffsets(w, b.TileOffsets); err != nil {
		return err
	}
	return h.WriteOffset(w, b.NextBandStart)
}

// ReadBand reads a description of a band from r.
func (b *Band) ReadBand(r io.Reader, h *Header) error {
	var configuration uint32
	if err := h.Read(r, &configuration); err != nil {
		return err
	}
	b.Separated = configuration != 0
	if err := h.Read(r, &b.Compression); err != nil {
		return err
	}

	name, err := h.ReadFriendly(r)
	if err != nil {
		return err
	}
	b.Name = name

	if err := b.Kind.Read(r, *h); err != nil {
		return err
	}

	var count uint32
	if err := h.Read(r, &count); err != nil {
		return err
	}
	if count < 1 {
		return FormatError("must have at least one channel for a valid container file")
	}
	b.Count = int(count)

	b.Dimensions = make(Dimensions, 2)
	if err := b.Dimensions.Read(r, *h); err != nil {
		return err
	}

	tiles := b.DiskTiles()
	b.TileBytes = make([]int64, tiles)
	if err := h.ReadOffsets(r, b.TileBytes); err != nil {
		return err
	}
	b.TileOffsets = make([]int64, tiles)
	if err := h.ReadOffsets(r, b.TileOffsets); err != nil {
		return err
	}
	b.NextBandStart, err = h.ReadOffset(r)
	return err
}

// OverwriteHeader rewrites the band header at headerStartOffset, restoring
// the stream cursor afterward. Used to patch tile byte counts and offsets
// after tile data has been written.
func (b *Band) OverwriteHeader(w io.WriteSeeker, h *Header, headerStartOffset int64) error {
	oldPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Seek(headerStartOffset, io.SeekStart); err != nil {
		return err
	}
	if err := b.WriteHeader(w, h); err != nil {
		return err
	}
	_, err = w.Seek(oldPos, io.SeekStart)
	return err
}

// WriteTile writes the encoded tile at the current stream position,
// recording its offset and compressed size in the band header (without
// flushing those fields to disk). A 4-byte CRC32 checksum follows the
// data, checked on read.
func (b *Band) WriteTile(w io.WriteSeeker, h *Header, tileIndex int, data []byte) error {
	streamOffset, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	b.TileOffsets[tileIndex] = streamOffset

	writeAmt, err := b.Compression.WriteChunk(w, b, tileIndex, data)
	if err != nil {
		return err
	}
	b.TileBytes[tileIndex] = int64(writeAmt)

	checksum := crc32.ChecksumIEEE(data)
	return h.Write(w, checksum)
}

func (b *Band) OverwriteTile(w io.WriteSeeker, h *Header, tileIndex int, data []byte) error {
	if b.TileOffsets[tileIndex] == 0 {
		panic("cannot overwrite a tile that has not already been written")
	}
	if _, err := w.Seek(b.TileOffsets[tileIndex], io.SeekStart); err != nil {
		return err
	}
	return b.WriteTile(w, h, tileIndex, data)
}

// ReadTile reads and decompresses a previously-written tile into data,
// verifying its checksum.
func (b *Band) ReadTile(r io.ReadSeeker, h *Header, tileIndex int, data []byte) error {
	if b.TileBytes[tileIndex] == 0 {
		panic("invalid tile byte count, likely tried to read a tile that hasn't been written yet")
	}

	if _, err := r.Seek(b.TileOffsets[tileIndex], io.SeekStart); err != nil {
		return err
	}
	if _, err := b.Compression.ReadChunk(r, b, tileIndex, data); err != nil {
		return err
	}

	// compression can read more than the compressed size implies, so seek
	// explicitly to the checksum position rather than trusting the cursor
	if _, err := r.Seek(b.TileOffsets[tileIndex]+b.TileBytes[tileIndex], io.SeekStart); err != nil {
		return err
	}

	var savedChecksum uint32
	if err := h.Read(r, &savedChecksum); err != nil {
		return err
	}
	if savedChecksum != crc32.ChecksumIEEE(data) {
		return IntegrityError{TileIndex: tileIndex, BandName: b.Name}
	}
	return nil
}
