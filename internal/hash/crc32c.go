package hash

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// CRC32CBytes returns the checksum of data as 4 big-endian bytes,
// the layout object stores expect in checksum headers.
func CRC32CBytes(data []byte) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, 4), CRC32C(data))
}
