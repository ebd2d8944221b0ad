package fileio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/fileio/blobstore"
	"github.com/hupe1980/fileio/internal/resource"
)

var (
	// ErrConfiguration is returned when the store options are missing or malformed.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotConfigured is returned by every operation before a successful Configure.
	ErrNotConfigured = fmt.Errorf("%w: fileio is not configured", ErrConfiguration)

	// ErrNotFound is returned when an object is absent on read or stat.
	// It matches blobstore.ErrNotFound and os.ErrNotExist.
	ErrNotFound = blobstore.ErrNotFound

	// ErrWrite is returned when the store rejects the single write of a closed output stream.
	ErrWrite = errors.New("write failed")

	// ErrList is returned when a listing cannot be obtained.
	ErrList = errors.New("list failed")

	// ErrDirectoryCreate is returned when a directory marker cannot be created.
	ErrDirectoryCreate = errors.New("directory create failed")

	// ErrRename is returned when the store rejects a rename.
	ErrRename = errors.New("rename failed")

	// ErrClosedStream is returned by stream operations after Close.
	ErrClosedStream = errors.New("stream is closed")

	// ErrInvalidPath is returned for empty or unparsable paths, and for
	// qualified paths that point at a different bucket.
	ErrInvalidPath = errors.New("invalid path")

	// ErrMemoryLimitExceeded is returned when buffering an object would exceed
	// the configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// PathError records a failed operation on a path.
//
// errors.Is matches both the error kind (ErrNotFound, ErrWrite, ...) and the
// underlying store error.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" ")
	b.WriteString(e.Path)
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PathError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newPathError(op string, p Path, kind, err error) error {
	return &PathError{Op: op, Path: p.String(), Kind: kind, Err: err}
}

// newMemoryLimitError reports that n more bytes did not fit the memory limit of rc.
func newMemoryLimitError(op string, p Path, rc *resource.Controller, n int64) error {
	return newPathError(op, p, ErrMemoryLimitExceeded, fmt.Errorf("%s requested, %s of %s in use",
		humanize.IBytes(uint64(n)),
		humanize.IBytes(uint64(rc.MemoryUsage())),
		humanize.IBytes(uint64(rc.MemoryLimit())),
	))
}

// ConfigError reports a missing or malformed configuration key.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Key    string
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Key, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigError) Unwrap() error { return e.cause }
