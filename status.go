package fileio

import (
	"io/fs"
	"time"

	"github.com/hupe1980/fileio/blobstore"
)

// FileStatus describes an object or directory. It also implements fs.FileInfo.
type FileStatus struct {
	path Path
	md   blobstore.Metadata
}

var _ fs.FileInfo = (*FileStatus)(nil)

func newFileStatus(p Path, md blobstore.Metadata) *FileStatus {
	return &FileStatus{path: p, md: md}
}

// Path returns the path the status describes.
func (s *FileStatus) Path() Path { return s.path }

// Len returns the content length in bytes; 0 for directories.
func (s *FileStatus) Len() int64 { return s.md.ContentLength }

// IsDir reports whether the entry is a directory marker or an inferred directory.
func (s *FileStatus) IsDir() bool { return s.md.IsDir() }

// Kind returns the entry kind.
func (s *FileStatus) Kind() blobstore.Kind { return s.md.Kind }

// ModificationTime returns the last modification in Unix milliseconds.
// Inferred directories have no timestamp and report 0.
func (s *FileStatus) ModificationTime() int64 {
	if s.md.LastModified.IsZero() {
		return 0
	}
	return s.md.LastModified.UnixMilli()
}

// AccessTime is not tracked by object stores; it equals ModificationTime.
func (s *FileStatus) AccessTime() int64 { return s.ModificationTime() }

// Owner returns the object version, the closest thing an object store has.
func (s *FileStatus) Owner() string { return s.md.Version }

// ETag returns the store's entity tag, if any.
func (s *FileStatus) ETag() string { return s.md.ETag }

// Metadata returns the underlying store metadata.
func (s *FileStatus) Metadata() blobstore.Metadata { return s.md }

// Name implements fs.FileInfo.
func (s *FileStatus) Name() string { return s.path.Name() }

// Size implements fs.FileInfo.
func (s *FileStatus) Size() int64 { return s.md.ContentLength }

// Mode implements fs.FileInfo.
func (s *FileStatus) Mode() fs.FileMode {
	if s.IsDir() {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

// ModTime implements fs.FileInfo.
func (s *FileStatus) ModTime() time.Time { return s.md.LastModified }

// Sys implements fs.FileInfo and returns the blobstore.Metadata.
func (s *FileStatus) Sys() any { return s.md }
