package container

import (
	"bytes"
	"compress/flate"
	"io"
)

// Compression identifies the scheme used to shrink a band's on-disk tile
// data.
type Compression uint32

const (
	CompressionNone  Compression = 0 // No compression.
	CompressionFlate Compression = 1 // Standard FLATE compression.
	CompressionRle8  Compression = 2 // Run-length encoding, up to 255 repeats per run.
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionFlate:
		return "flate"
	case CompressionRle8:
		return "rle8"
	default:
		return "unknown"
	}
}

// WriteChunk compresses chunk according to c and writes it to w, returning
// the number of compressed bytes written. band and tileIndex are only
// consulted for CompressionRle8, which needs to know the sample stride of
// the tile being written.
func (c Compression) WriteChunk(w io.Writer, band *Band, tileIndex int, chunk []byte) (int, error) {
	switch c {
	case CompressionNone:
		return w.Write(chunk)
	case CompressionFlate:
		buf := new(bytes.Buffer)
		flateWriter, err := flate.NewWriter(buf, flate.BestCompression)
		if err != nil {
			return 0, err
		}
		if _, err := flateWriter.Write(chunk); err != nil {
			flateWriter.Close()
			return 0, err
		}
		flateWriter.Close()
		writeAmt, err := io.Copy(w, buf)
		return int(writeAmt), err
	case CompressionRle8:
		stride := band.tileSampleStride(tileIndex)
		buf := new(bytes.Buffer)
		for i := 0; i < len(chunk); {
			j := i + stride
			if j > len(chunk) {
				break
			}
			sample := chunk[i:j]

			repeatCount := byte(1)
			for k := j; k+stride <= len(chunk); k += stride {
				if !bytes.Equal(sample, chunk[k:k+stride]) || repeatCount == 255 {
					break
				}
				repeatCount++
			}

			if err := buf.WriteByte(repeatCount); err != nil {
				return 0, err
			}
			if _, err := buf.Write(sample); err != nil {
				return 0, err
			}
			i += int(repeatCount) * stride
		}
		writeAmt, err := io.Copy(w, buf)
		return int(writeAmt), err
	default:
		return 0, UnsupportedError("unknown compression scheme")
	}
}

// ReadChunk decompresses a chunk previously written with WriteChunk into
// data, which must be sized for the uncompressed tile.
func (c Compression) ReadChunk(r io.Reader, band *Band, tileIndex int, data []byte) (int, error) {
	switch c {
	case CompressionNone:
		return io.ReadFull(r, data)
	case CompressionFlate:
		flateRdr := flate.NewReader(r)
		defer flateRdr.Close()
		return io.ReadFull(flateRdr, data)
	case CompressionRle8:
		stride := band.tileSampleStride(tileIndex)
		offset := 0
		for offset < len(data) {
			countByte := make([]byte, 1)
			if _, err := io.ReadFull(r, countByte); err != nil {
				return offset, err
			}
			sample := make([]byte, stride)
			if _, err := io.ReadFull(r, sample); err != nil {
				return offset, err
			}
			for i := byte(0); i < countByte[0] && offset < len(data); i++ {
				copy(data[offset:offset+stride], sample)
				offset += stride
			}
		}
		return offset, nil
	default:
		return 0, UnsupportedError("unknown compression scheme")
	}
}
