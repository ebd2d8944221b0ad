// Package hash provides checksum helpers for object integrity.
//
// # CRC32-Castagnoli (CRC32C)
//
// Objects written through the S3 backend carry a CRC32C checksum that the
// service validates before publishing the object. CRC32C is also used as the
// ETag of blobstore.MemoryStore objects.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
//
// Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC) when available.
package hash
