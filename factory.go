package fileio

import (
	"context"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/fileio/blobstore"
	miniostore "github.com/hupe1980/fileio/blobstore/minio"
	s3store "github.com/hupe1980/fileio/blobstore/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// StoreFactory builds the store for a validated configuration.
// It is called at most once per successful Configure.
type StoreFactory func(ctx context.Context, cfg Config) (blobstore.Store, error)

// DefaultStoreFactory builds the store named by cfg.Backend.
func DefaultStoreFactory(ctx context.Context, cfg Config) (blobstore.Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case BackendLocal:
		return blobstore.NewLocalStore(cfg.LocalRoot), nil
	case BackendMinio:
		return newMinioStore(cfg)
	default:
		return newS3Store(ctx, cfg)
	}
}

func newS3Store(ctx context.Context, cfg Config) (blobstore.Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		// The default endpoint is left to the SDK's regional resolver.
		if cfg.Endpoint != DefaultEndpoint {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyleAccess
	})

	return s3store.NewStore(client, cfg.Bucket, "", s3store.WithUploadConfig(s3store.UploadConfig{
		PartSize:       cfg.PartSize,
		EnableChecksum: cfg.Checksum,
	})), nil
}

func newMinioStore(cfg Config) (blobstore.Store, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	lookup := minio.BucketLookupAuto
	if cfg.PathStyleAccess {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:        miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       u.Scheme == "https",
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, err
	}
	return miniostore.NewStore(client, cfg.Bucket, ""), nil
}
