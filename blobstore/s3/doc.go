// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := awss3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "warehouse/")
//
// # Features
//
//   - Single-request reads of whole objects
//   - Single PutObject with CRC32C checksum for small objects,
//     multipart uploads via the transfer manager above the part size
//   - Delimited listing with automatic pagination
//   - Rename as server-side copy followed by delete
//   - Configurable prefix for multi-tenant isolation
package s3
