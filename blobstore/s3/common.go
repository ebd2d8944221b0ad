package s3

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/fileio/blobstore"
)

// isNotFound reports whether err signals a missing key.
// HeadObject returns a bare 404 without a typed error, so API codes are checked too.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "404":
			return true
		}
	}
	return false
}

// mapError converts "not found" responses into blobstore.ErrNotFound.
func mapError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("s3: %s %q: %w", op, key, blobstore.ErrNotFound)
	}
	return fmt.Errorf("s3: %s %q: %w", op, key, err)
}

func newMetadata(key string, size *int64, modTime *time.Time, etag, version *string) blobstore.Metadata {
	kind := blobstore.KindFile
	if blobstore.IsDirKey(key) {
		kind = blobstore.KindDirMarker
	}
	return blobstore.Metadata{
		Key:           key,
		ContentLength: aws.ToInt64(size),
		Kind:          kind,
		LastModified:  aws.ToTime(modTime),
		ETag:          strings.Trim(aws.ToString(etag), `"`),
		Version:       aws.ToString(version),
	}
}

// copySource builds the URL-encoded "bucket/key" value CopyObject expects.
func copySource(bucket, key string) string {
	return (&url.URL{Path: bucket + "/" + key}).EscapedPath()
}
