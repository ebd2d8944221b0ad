// Package minio provides a MinIO implementation of the blobstore.Store interface.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	store := minio.NewStore(client, "my-bucket", "warehouse/")
package minio
