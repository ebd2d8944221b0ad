package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/fileio/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store implements blobstore.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO blob store.
// bucket is the MinIO bucket name.
// rootPrefix is prepended to all keys (e.g. "warehouse/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: blobstore.DirKey(strings.Trim(rootPrefix, blobstore.Separator)),
	}
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

func (s *Store) key(name string) string {
	return s.prefix + name
}

func isNotFound(err error) bool {
	errResp := minio.ToErrorResponse(err)
	return errResp.Code == "NoSuchKey" || errResp.Code == "NotFound"
}

func mapError(op, name string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("minio: %s %q: %w", op, name, blobstore.ErrNotFound)
	}
	return fmt.Errorf("minio: %s %q: %w", op, name, err)
}

// Read downloads the whole object.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError("read", name, err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; a missing key only surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError("read", name, err)
	}
	return data, nil
}

// Write stores data with a single PutObject call.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("minio: write %q: %w", name, err)
	}
	return nil
}

// Stat returns the metadata of the exact key.
func (s *Store) Stat(ctx context.Context, name string) (blobstore.Metadata, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		return blobstore.Metadata{}, mapError("stat", name, err)
	}
	return metadata(name, info), nil
}

func metadata(name string, info minio.ObjectInfo) blobstore.Metadata {
	kind := blobstore.KindFile
	if blobstore.IsDirKey(name) {
		kind = blobstore.KindDirMarker
	}
	return blobstore.Metadata{
		Key:           name,
		ContentLength: info.Size,
		Kind:          kind,
		LastModified:  info.LastModified,
		ETag:          strings.Trim(info.ETag, `"`),
		Version:       info.VersionID,
	}
}

// List returns the direct children of prefix.
// Common prefixes come back as keys ending in "/" and are reported as inferred directories.
func (s *Store) List(ctx context.Context, prefix string) ([]blobstore.Metadata, error) {
	fullPrefix := s.key(prefix)

	var entries []blobstore.Metadata
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list %q: %w", prefix, obj.Err)
		}
		if obj.Key == fullPrefix {
			continue
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		if blobstore.IsDirKey(name) {
			entries = append(entries, blobstore.Metadata{Key: name, Kind: blobstore.KindDirPrefix})
			continue
		}
		entries = append(entries, metadata(name, obj))
	}
	return entries, nil
}

// Delete removes an object. Absent keys are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil // Already gone
		}
		return fmt.Errorf("minio: delete %q: %w", name, err)
	}
	return nil
}

// CreateDir writes a zero-length marker object.
func (s *Store) CreateDir(ctx context.Context, name string) error {
	if !blobstore.IsDirKey(name) {
		return fmt.Errorf("minio: create dir %q: key must end with %q", name, blobstore.Separator)
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("minio: create dir %q: %w", name, err)
	}
	return nil
}

// Rename copies src to dst server-side and then removes src.
func (s *Store) Rename(ctx context.Context, src, dst string) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: s.key(dst)},
		minio.CopySrcOptions{Bucket: s.bucket, Object: s.key(src)},
	)
	if err != nil {
		return mapError("rename", src, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(src), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio: rename %q: remove source: %w", src, err)
	}
	return nil
}

var _ blobstore.Store = (*Store)(nil)
