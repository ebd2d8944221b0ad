package blobstore

import (
	"context"
	"os"
	"strings"
	"time"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Separator delimits the "directories" of a flat key space.
const Separator = "/"

// Kind distinguishes plain objects from the two flavours of emulated directories.
type Kind uint8

const (
	// KindFile is a regular object.
	KindFile Kind = iota
	// KindDirMarker is a zero-length object whose key ends with Separator.
	KindDirMarker
	// KindDirPrefix is a directory inferred from keys sharing a prefix.
	// No object exists under the directory key itself.
	KindDirPrefix
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirMarker:
		return "dir-marker"
	case KindDirPrefix:
		return "dir-prefix"
	default:
		return "unknown"
	}
}

// Metadata is an immutable snapshot of an entry's attributes.
type Metadata struct {
	// Key is the full store key. Directory keys end with Separator.
	Key           string
	ContentLength int64
	Kind          Kind
	LastModified  time.Time
	ETag          string
	Version       string
}

// IsDir reports whether the entry is a marker or an inferred directory.
func (m Metadata) IsDir() bool {
	return m.Kind == KindDirMarker || m.Kind == KindDirPrefix
}

// Store is the contract the filesystem adapter requires from an object store client.
//
// Keys are slash-delimited and never start with a slash. Implementations must be
// safe for concurrent use.
type Store interface {
	// Read returns the full contents of the object at key.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data at key in a single call. The object becomes visible
	// only once the call succeeds.
	Write(ctx context.Context, key string, data []byte) error
	// Stat returns the metadata of the exact key.
	Stat(ctx context.Context, key string) (Metadata, error)
	// List returns the direct children of prefix, using Separator as delimiter.
	// Nested "directories" are returned as directory entries.
	// The entry for prefix itself is never included.
	List(ctx context.Context, prefix string) ([]Metadata, error)
	// Delete removes the object at key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// CreateDir creates a directory marker. key ends with Separator.
	CreateDir(ctx context.Context, key string) error
	// Rename moves the object at src to dst. Not atomic on object stores.
	Rename(ctx context.Context, src, dst string) error
}

// IsDirKey reports whether key names a directory marker.
func IsDirKey(key string) bool {
	return strings.HasSuffix(key, Separator)
}

// DirKey returns key with a trailing Separator. The empty key stays empty.
func DirKey(key string) string {
	if key == "" || IsDirKey(key) {
		return key
	}
	return key + Separator
}

// childOf reports whether key is a direct or nested child of prefix and returns
// the direct child's key (with a trailing separator when it is nested deeper).
func childOf(prefix, key string) (string, bool) {
	if !strings.HasPrefix(key, prefix) || key == prefix {
		return "", false
	}
	rest := key[len(prefix):]
	if i := strings.Index(rest, Separator); i >= 0 {
		return prefix + rest[:i+1], true
	}
	return key, true
}
