package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/fileio/blobstore"
)

// Store implements blobstore.Store for S3 and S3-compatible services.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	cfg      UploadConfig
	uploader *manager.Uploader
}

// Option configures a Store.
type Option func(*Store)

// WithUploadConfig overrides the default upload settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(s *Store) {
		s.cfg = cfg
	}
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "warehouse/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...Option) *Store {
	s := &Store{
		client: client,
		bucket: bucket,
		prefix: blobstore.DirKey(strings.Trim(rootPrefix, blobstore.Separator)),
		cfg:    DefaultUploadConfig(),
	}
	for _, fn := range optFns {
		fn(s)
	}
	s.cfg = s.cfg.withDefaults()
	s.uploader = newUploader(client, s.cfg)
	return s
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) rel(key string) string {
	return strings.TrimPrefix(key, s.prefix)
}

// Read downloads the whole object.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, mapError("read", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %q: %w", name, err)
	}
	return data, nil
}

// Write stores data in a single request, or a single multipart upload
// when it exceeds the configured part size.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	key := s.key(name)

	var err error
	if s.cfg.EnableChecksum && int64(len(data)) < s.cfg.PartSize {
		err = putWithChecksum(ctx, s.client, s.bucket, key, data)
	} else {
		err = upload(ctx, s.uploader, s.bucket, key, data, s.cfg.EnableChecksum)
	}
	if err != nil {
		return fmt.Errorf("s3: write %q: %w", name, err)
	}
	return nil
}

// Stat issues a HEAD request for the exact key.
func (s *Store) Stat(ctx context.Context, name string) (blobstore.Metadata, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return blobstore.Metadata{}, mapError("stat", name, err)
	}
	return newMetadata(name, head.ContentLength, head.LastModified, head.ETag, head.VersionId), nil
}

// List returns the direct children of prefix using "/" as delimiter.
// Common prefixes are reported as inferred directories.
func (s *Store) List(ctx context.Context, prefix string) ([]blobstore.Metadata, error) {
	fullPrefix := s.key(prefix)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(fullPrefix),
		Delimiter: aws.String(blobstore.Separator),
	})

	var entries []blobstore.Metadata
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == fullPrefix {
				continue
			}
			entries = append(entries, newMetadata(s.rel(key), obj.Size, obj.LastModified, obj.ETag, nil))
		}
		for _, cp := range page.CommonPrefixes {
			entries = append(entries, blobstore.Metadata{
				Key:  s.rel(aws.ToString(cp.Prefix)),
				Kind: blobstore.KindDirPrefix,
			})
		}
	}
	return entries, nil
}

// Delete removes an object. S3 treats deleting an absent key as success.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3: delete %q: %w", name, err)
	}
	return nil
}

// CreateDir writes a zero-length marker object.
func (s *Store) CreateDir(ctx context.Context, name string) error {
	if !blobstore.IsDirKey(name) {
		return fmt.Errorf("s3: create dir %q: key must end with %q", name, blobstore.Separator)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return fmt.Errorf("s3: create dir %q: %w", name, err)
	}
	return nil
}

// Rename copies src to dst and then deletes src.
// A failure between the two steps leaves both objects in place.
func (s *Store) Rename(ctx context.Context, src, dst string) error {
	srcKey := s.key(src)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.key(dst)),
		CopySource: aws.String(copySource(s.bucket, srcKey)),
	})
	if err != nil {
		return mapError("rename", src, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(srcKey),
	})
	if err != nil {
		return fmt.Errorf("s3: rename %q: delete source: %w", src, err)
	}
	return nil
}

var _ blobstore.Store = (*Store)(nil)
