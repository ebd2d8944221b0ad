package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/fileio/internal/fs"
)

const tempPattern = ".fileio-*"

// LocalStore implements Store using the local file system.
// Directories are real directories; a "marker" is the directory itself.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem overrides the file system (e.g. fs.FaultyFS in tests).
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, optFns ...LocalOption) *LocalStore {
	s := &LocalStore{root: filepath.Clean(root), fs: fs.Default}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Root returns the store's root directory.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("local: key %q escapes root", key)
	}
	return p, nil
}

// Read returns the full contents of a file.
func (s *LocalStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.OpenFile(p, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("local: read %q: is a directory: %w", key, ErrNotFound)
	}

	data := make([]byte, info.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Write stores data via a temporary file renamed into place,
// so readers never observe a partial file.
func (s *LocalStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := s.fs.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Rename(tmpName, p); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	return nil
}

// Stat returns the metadata of a file or directory.
func (s *LocalStore) Stat(ctx context.Context, key string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	p, err := s.path(key)
	if err != nil {
		return Metadata{}, err
	}

	info, err := s.fs.Stat(p)
	if err != nil {
		return Metadata{}, err
	}
	if IsDirKey(key) && !info.IsDir() {
		return Metadata{}, fmt.Errorf("local: stat %q: not a directory: %w", key, ErrNotFound)
	}
	return localMetadata(strings.TrimSuffix(key, Separator), info), nil
}

func localMetadata(key string, info os.FileInfo) Metadata {
	if info.IsDir() {
		return Metadata{
			Key:          DirKey(key),
			Kind:         KindDirMarker,
			LastModified: info.ModTime(),
		}
	}
	return Metadata{
		Key:           key,
		ContentLength: info.Size(),
		Kind:          KindFile,
		LastModified:  info.ModTime(),
	}
}

// List returns the entries of the directory named by prefix.
// A missing directory lists as empty, like a prefix without objects.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(prefix)
	if err != nil {
		return nil, err
	}

	entries, err := s.fs.ReadDir(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var result []Metadata
	for _, e := range entries {
		if matched, _ := filepath.Match(tempPattern, e.Name()); matched {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue // removed concurrently
			}
			return nil, err
		}
		result = append(result, localMetadata(prefix+e.Name(), info))
	}
	return result, nil
}

// Delete removes a file or an empty directory. Absent keys are ignored.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if p == s.root {
		return nil
	}

	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// CreateDir creates the directory and any missing parents.
func (s *LocalStore) CreateDir(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsDirKey(key) {
		return fmt.Errorf("local: create dir %q: key must end with %q", key, Separator)
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return s.fs.MkdirAll(p, 0o755)
}

// Rename moves src to dst, creating dst's parent directories.
func (s *LocalStore) Rename(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sp, err := s.path(src)
	if err != nil {
		return err
	}
	dp, err := s.path(dst)
	if err != nil {
		return err
	}

	if _, err := s.fs.Stat(sp); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(dp), 0o755); err != nil {
		return err
	}
	return s.fs.Rename(sp, dp)
}
