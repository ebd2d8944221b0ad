package minio

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hupe1980/fileio/blobstore"
	"github.com/hupe1980/fileio/blobstore/storetest"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-fileio"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	_, err = client.ListBuckets(ctx)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		require.NoError(t, err)
	}

	storetest.Run(t, func(t *testing.T) blobstore.Store {
		return NewStore(client, bucket, "test-"+uuid.NewString())
	})

	t.Run("PrefixIsolation", func(t *testing.T) {
		a := NewStore(client, bucket, "iso-"+uuid.NewString())
		b := NewStore(client, bucket, "iso-"+uuid.NewString())

		require.NoError(t, a.Write(ctx, "shared.txt", []byte("a")))
		_, err := b.Stat(ctx, "shared.txt")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
		require.NoError(t, a.Delete(ctx, "shared.txt"))
	})
}

func TestNewStore_Prefix(t *testing.T) {
	s := NewStore(nil, "bucket", "/root/")
	assert.Equal(t, "root/x", s.key("x"))
	assert.Equal(t, "bucket", s.Bucket())

	s = NewStore(nil, "bucket", "")
	assert.Equal(t, "x", s.key("x"))
}
