// Package blobstore defines the object-store contract used by fileio and ships
// the non-network implementations.
//
// Store is the interface every backend implements. Keys are flat,
// slash-delimited strings; "directories" exist only as naming conventions:
//
//   - a zero-length marker object whose key ends with "/" (KindDirMarker)
//   - a prefix shared by other keys (KindDirPrefix)
//
// # Built-in Implementations
//
//   - MemoryStore: flat in-memory key space, for tests and the "memory" backend
//   - LocalStore: local filesystem, where directories are real
//   - ThrottledStore: decorator limiting in-flight requests and throughput
//   - s3.Store: Amazon S3 and S3-compatible endpoints (aws-sdk-go-v2)
//   - minio.Store: MinIO and S3-compatible endpoints (minio-go)
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Read(ctx, key) ([]byte, error)
//	    Write(ctx, key, data) error
//	    Stat(ctx, key) (Metadata, error)
//	    List(ctx, prefix) ([]Metadata, error)
//	    Delete(ctx, key) error
//	    CreateDir(ctx, key) error
//	    Rename(ctx, src, dst) error
//	}
//
// Not-found conditions must satisfy errors.Is(err, ErrNotFound).
package blobstore
