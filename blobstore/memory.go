package blobstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/fileio/internal/hash"
)

// MemoryStore is an in-memory Store implementation over a flat key space.
// It behaves like an object bucket: directories only exist as markers or prefixes.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	version uint64
	now     func() time.Time
}

type memoryObject struct {
	data    []byte
	modTime time.Time
	etag    string
	version string
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// Read returns a copy of the object's contents.
func (m *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("memory: read %q: %w", key, ErrNotFound)
	}

	// Return a copy to prevent external mutation
	copied := make([]byte, len(obj.data))
	copy(copied, obj.data)
	return copied, nil
}

// Write stores data atomically.
func (m *MemoryStore) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.putLocked(key, data)
	return nil
}

func (m *MemoryStore) putLocked(key string, data []byte) {
	// Copy to prevent external mutation
	copied := make([]byte, len(data))
	copy(copied, data)

	m.version++
	m.objects[key] = memoryObject{
		data:    copied,
		modTime: m.now(),
		etag:    strconv.FormatUint(uint64(hash.CRC32C(copied)), 16),
		version: strconv.FormatUint(m.version, 10),
	}
}

// Stat returns the metadata of the exact key.
func (m *MemoryStore) Stat(_ context.Context, key string) (Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return Metadata{}, fmt.Errorf("memory: stat %q: %w", key, ErrNotFound)
	}
	return obj.metadata(key), nil
}

func (o memoryObject) metadata(key string) Metadata {
	kind := KindFile
	if IsDirKey(key) {
		kind = KindDirMarker
	}
	return Metadata{
		Key:           key,
		ContentLength: int64(len(o.data)),
		Kind:          kind,
		LastModified:  o.modTime,
		ETag:          o.etag,
		Version:       o.version,
	}
}

// List returns the direct children of prefix, sorted by key.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]Metadata)
	for key, obj := range m.objects {
		child, ok := childOf(prefix, key)
		if !ok {
			continue
		}
		if child == key {
			seen[child] = obj.metadata(key)
			continue
		}
		if _, dup := seen[child]; dup {
			continue
		}
		if marker, ok := m.objects[child]; ok {
			seen[child] = marker.metadata(child)
		} else {
			seen[child] = Metadata{Key: child, Kind: KindDirPrefix}
		}
	}

	entries := make([]Metadata, 0, len(seen))
	for _, md := range seen {
		entries = append(entries, md)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Delete removes an object. Absent keys are ignored.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

// CreateDir writes a zero-length marker object.
func (m *MemoryStore) CreateDir(_ context.Context, key string) error {
	if !IsDirKey(key) {
		return fmt.Errorf("memory: create dir %q: key must end with %q", key, Separator)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.putLocked(key, nil)
	return nil
}

// Rename moves an object from src to dst, replacing dst.
func (m *MemoryStore) Rename(_ context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[src]
	if !ok {
		return fmt.Errorf("memory: rename %q: %w", src, ErrNotFound)
	}
	m.objects[dst] = obj
	delete(m.objects, src)
	return nil
}

// Keys returns every key currently stored, sorted. Intended for tests.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored objects, markers included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// HasPrefix reports whether any key starts with prefix.
func (m *MemoryStore) HasPrefix(prefix string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
