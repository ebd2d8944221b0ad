package fileio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/fileio/blobstore"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

// faultyStore is a MemoryStore with per-operation fault injection.
type faultyStore struct {
	*blobstore.MemoryStore

	mu          sync.Mutex
	readErr     error
	writeErr    error
	statErr     error
	listErr     map[string]error // by prefix
	deleteErr   map[string]error // by key
	createErr   error
	renameErr   error
	writeCalls  atomic.Int64
	deleteCalls atomic.Int64
	statKeys    []string
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		MemoryStore: blobstore.NewMemoryStore(),
		listErr:     make(map[string]error),
		deleteErr:   make(map[string]error),
	}
}

func (s *faultyStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.MemoryStore.Read(ctx, key)
}

func (s *faultyStore) Write(ctx context.Context, key string, data []byte) error {
	s.writeCalls.Add(1)
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.MemoryStore.Write(ctx, key, data)
}

func (s *faultyStore) Stat(ctx context.Context, key string) (blobstore.Metadata, error) {
	s.mu.Lock()
	s.statKeys = append(s.statKeys, key)
	s.mu.Unlock()
	if s.statErr != nil {
		return blobstore.Metadata{}, s.statErr
	}
	return s.MemoryStore.Stat(ctx, key)
}

func (s *faultyStore) List(ctx context.Context, prefix string) ([]blobstore.Metadata, error) {
	if err := s.listErr[prefix]; err != nil {
		return nil, err
	}
	return s.MemoryStore.List(ctx, prefix)
}

func (s *faultyStore) Delete(ctx context.Context, key string) error {
	s.deleteCalls.Add(1)
	if err := s.deleteErr[key]; err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, key)
}

func (s *faultyStore) CreateDir(ctx context.Context, key string) error {
	if s.createErr != nil {
		return s.createErr
	}
	return s.MemoryStore.CreateDir(ctx, key)
}

func (s *faultyStore) Rename(ctx context.Context, src, dst string) error {
	if s.renameErr != nil {
		return s.renameErr
	}
	return s.MemoryStore.Rename(ctx, src, dst)
}

func (s *faultyStore) statted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statKeys...)
}

func newTestFileIO(t *testing.T, optFns ...Option) (*FileIO, *faultyStore) {
	t.Helper()
	store := newFaultyStore()
	fio := New(append([]Option{WithStore(store)}, optFns...)...)
	t.Cleanup(func() { _ = fio.Close() })
	return fio, store
}

func writeString(t *testing.T, fio *FileIO, p Path, content string) {
	t.Helper()
	require.NoError(t, fio.WriteFile(context.Background(), p, []byte(content), true))
}
