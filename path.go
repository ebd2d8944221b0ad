package fileio

import (
	"fmt"
	"path"
	"strings"

	"github.com/hupe1980/fileio/blobstore"
)

// Path names an object or directory.
//
// Two spellings are accepted: flat paths such as "/warehouse/db/t1" and
// qualified URIs such as "s3://bucket/warehouse/db/t1". Both resolve to the
// same slash-delimited key ("warehouse/db/t1"); the root has the empty key.
// The zero Path is the flat root.
type Path struct {
	scheme    string
	authority string
	key       string
}

// ParsePath parses and normalizes s.
//
// The key is taken verbatim: '#', '?' and '%' are ordinary key characters in
// both spellings, so "s3://b/x#1" and "/x#1" name the same key.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return Path{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	scheme, rest, qualified := strings.Cut(s, "://")
	if !qualified || strings.HasPrefix(s, blobstore.Separator) {
		return Path{key: cleanKey(s)}, nil
	}
	if !validScheme(scheme) {
		return Path{}, fmt.Errorf("%w: %q: bad scheme", ErrInvalidPath, s)
	}

	authority, key, _ := strings.Cut(rest, blobstore.Separator)
	return Path{
		scheme:    strings.ToLower(scheme),
		authority: authority,
		key:       cleanKey(key),
	}, nil
}

// validScheme reports whether s is an RFC 3986 scheme.
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// MustParsePath is like ParsePath but panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPath resolves child relative to parent.
func NewPath(parent Path, child string) Path {
	return Path{
		scheme:    parent.scheme,
		authority: parent.authority,
		key:       cleanKey(parent.key + blobstore.Separator + child),
	}
}

func cleanKey(s string) string {
	k := path.Clean(blobstore.Separator + s)
	return strings.TrimPrefix(k, blobstore.Separator)
}

// String returns the normalized form of the path.
func (p Path) String() string {
	if p.scheme == "" {
		return blobstore.Separator + p.key
	}
	return p.scheme + "://" + p.authority + blobstore.Separator + p.key
}

// Equal reports whether both paths have the same normalized form.
func (p Path) Equal(o Path) bool { return p.String() == o.String() }

// Key returns the store key, without a leading slash.
func (p Path) Key() string { return p.key }

// DirKey returns the key with a trailing slash; empty for the root.
func (p Path) DirKey() string { return blobstore.DirKey(p.key) }

// Name returns the last element of the path; empty for the root.
func (p Path) Name() string {
	if p.key == "" {
		return ""
	}
	return path.Base(p.key)
}

// Parent returns the enclosing directory. The root is its own parent.
func (p Path) Parent() Path {
	parent := p
	if i := strings.LastIndex(p.key, blobstore.Separator); i >= 0 {
		parent.key = p.key[:i]
	} else {
		parent.key = ""
	}
	return parent
}

// IsRoot reports whether p names the root.
func (p Path) IsRoot() bool { return p.key == "" }

// Scheme returns the URI scheme, empty for flat paths.
func (p Path) Scheme() string { return p.scheme }

// Authority returns the URI authority (the bucket for s3 URIs), empty for flat paths.
func (p Path) Authority() string { return p.authority }

// withKey returns a path in the same namespace with a different key.
func (p Path) withKey(key string) Path {
	p.key = cleanKey(key)
	return p
}
