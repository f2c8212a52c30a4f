package container

import "encoding/binary"

// allHeaderVariants returns one Header per combination of byte order and
// offset size, the matrix most encode/decode round-trip tests are run
// against.
func allHeaderVariants(version int) []Header {
	return []Header{
		{Version: version, ByteOrder: binary.BigEndian, OffsetSize: 4},
		{Version: version, ByteOrder: binary.BigEndian, OffsetSize: 8},
		{Version: version, ByteOrder: binary.LittleEndian, OffsetSize: 4},
		{Version: version, ByteOrder: binary.LittleEndian, OffsetSize: 8},
	}
}
