// Package storetest provides a conformance suite for blobstore.Store implementations.
//
//	func TestMyStore(t *testing.T) {
//	    storetest.Run(t, func(t *testing.T) blobstore.Store {
//	        return mystore.New(...)
//	    })
//	}
//
// Every subtest receives a fresh store from the factory; stores backed by a
// shared bucket should hand out a unique root prefix per call.
package storetest

import (
	"context"
	"sort"
	"testing"

	"github.com/hupe1980/fileio/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) blobstore.Store

// Run executes the conformance suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("ReadWrite", func(t *testing.T) { testReadWrite(t, newStore(t)) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, newStore(t)) })
	t.Run("EmptyObject", func(t *testing.T) { testEmptyObject(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("Stat", func(t *testing.T) { testStat(t, newStore(t)) })
	t.Run("ListDirectChildren", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("ListMissingPrefix", func(t *testing.T) { testListMissing(t, newStore(t)) })
	t.Run("DeleteIdempotent", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("CreateDir", func(t *testing.T) { testCreateDir(t, newStore(t)) })
	t.Run("Rename", func(t *testing.T) { testRename(t, newStore(t)) })
}

func keys(entries []blobstore.Metadata) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	sort.Strings(out)
	return out
}

func testReadWrite(t *testing.T, s blobstore.Store) {
	ctx := context.Background()
	data := []byte("Hello from MinIO!")

	require.NoError(t, s.Write(ctx, "test-dir/test-file.txt", data))

	got, err := s.Read(ctx, "test-dir/test-file.txt")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func testOverwrite(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "obj", []byte("first")))
	require.NoError(t, s.Write(ctx, "obj", []byte("second")))

	got, err := s.Read(ctx, "obj")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func testEmptyObject(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "empty", nil))

	got, err := s.Read(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)

	md, err := s.Stat(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, int64(0), md.ContentLength)
	assert.Equal(t, blobstore.KindFile, md.Kind)
}

func testNotFound(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	_, err := s.Read(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = s.Stat(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	assert.Error(t, s.Rename(ctx, "missing", "elsewhere"))
}

func testStat(t *testing.T, s blobstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, "a/b.bin", make([]byte, 42)))

	md, err := s.Stat(ctx, "a/b.bin")
	require.NoError(t, err)
	assert.Equal(t, "a/b.bin", md.Key)
	assert.Equal(t, int64(42), md.ContentLength)
	assert.False(t, md.IsDir())
	assert.False(t, md.LastModified.IsZero())
}

func testList(t *testing.T, s blobstore.Store) {
	ctx := context.Background()
	for _, k := range []string{"t/a.txt", "t/b.txt", "t/sub/c.txt", "t/sub/deeper/d.txt", "other/e.txt"} {
		require.NoError(t, s.Write(ctx, k, []byte(k)))
	}

	entries, err := s.List(ctx, "t/")
	require.NoError(t, err)
	assert.Equal(t, []string{"t/a.txt", "t/b.txt", "t/sub/"}, keys(entries))

	for _, e := range entries {
		if e.Key == "t/sub/" {
			assert.True(t, e.IsDir())
		} else {
			assert.Equal(t, blobstore.KindFile, e.Kind)
			assert.Equal(t, int64(len(e.Key)), e.ContentLength)
		}
	}

	root, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other/", "t/"}, keys(root))
}

func testListMissing(t *testing.T, s blobstore.Store) {
	entries, err := s.List(context.Background(), "nothing-here/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func testDelete(t *testing.T, s blobstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, "gone.txt", []byte("Delete me")))

	require.NoError(t, s.Delete(ctx, "gone.txt"))
	_, err := s.Stat(ctx, "gone.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// Second delete of an absent key succeeds.
	require.NoError(t, s.Delete(ctx, "gone.txt"))
}

func testCreateDir(t *testing.T, s blobstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateDir(ctx, "made/"))

	md, err := s.Stat(ctx, "made/")
	require.NoError(t, err)
	assert.True(t, md.IsDir())
	assert.Equal(t, "made/", md.Key)

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, keys(entries), "made/")

	// The marker is not its own child.
	children, err := s.List(ctx, "made/")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func testRename(t *testing.T, s blobstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, "from.txt", []byte("payload")))

	require.NoError(t, s.Rename(ctx, "from.txt", "to/dest.txt"))

	_, err := s.Stat(ctx, "from.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	got, err := s.Read(ctx, "to/dest.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}
