package blobstore

import (
	"context"

	"github.com/hupe1980/fileio/internal/resource"
)

// ThrottledStore wraps a Store and bounds in-flight requests and throughput.
// Calls block on the caller's goroutine until the limits admit them.
type ThrottledStore struct {
	inner Store
	rc    *resource.Controller
}

// NewThrottledStore creates a ThrottledStore. A nil controller disables throttling.
func NewThrottledStore(inner Store, rc *resource.Controller) *ThrottledStore {
	return &ThrottledStore{inner: inner, rc: rc}
}

// Unwrap returns the wrapped store.
func (s *ThrottledStore) Unwrap() Store { return s.inner }

func (s *ThrottledStore) begin(ctx context.Context) (func(), error) {
	if err := s.rc.AcquireRequest(ctx); err != nil {
		return nil, err
	}
	return s.rc.ReleaseRequest, nil
}

// Read implements Store. The object size is charged against the IO budget
// once the data has arrived.
func (s *ThrottledStore) Read(ctx context.Context, key string) ([]byte, error) {
	done, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	data, err := s.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Write implements Store. The data size is charged before the write starts.
func (s *ThrottledStore) Write(ctx context.Context, key string, data []byte) error {
	done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := s.rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Write(ctx, key, data)
}

// Stat implements Store.
func (s *ThrottledStore) Stat(ctx context.Context, key string) (Metadata, error) {
	done, err := s.begin(ctx)
	if err != nil {
		return Metadata{}, err
	}
	defer done()
	return s.inner.Stat(ctx, key)
}

// List implements Store.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]Metadata, error) {
	done, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	return s.inner.List(ctx, prefix)
}

// Delete implements Store.
func (s *ThrottledStore) Delete(ctx context.Context, key string) error {
	done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	return s.inner.Delete(ctx, key)
}

// CreateDir implements Store.
func (s *ThrottledStore) CreateDir(ctx context.Context, key string) error {
	done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	return s.inner.CreateDir(ctx, key)
}

// Rename implements Store.
func (s *ThrottledStore) Rename(ctx context.Context, src, dst string) error {
	done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	return s.inner.Rename(ctx, src, dst)
}
