package fileio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/fileio/blobstore"
	"github.com/hupe1980/fileio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFileIO_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	fio, _ := newTestFileIO(t)

	testPath := MustParsePath("/test-dir/test-file.txt")
	content := "Hello from MinIO!"

	out, err := fio.NewOutputStream(ctx, testPath, true)
	require.NoError(t, err)
	_, err = out.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	in, err := fio.NewInputStream(ctx, testPath)
	require.NoError(t, err)
	buffer := make([]byte, len(content))
	n, err := in.Read(buffer)
	require.NoError(t, err)
	require.NoError(t, in.Close())

	assert.Equal(t, len(content), n)
	assert.Equal(t, content, string(buffer))
}

func TestFileIO_ExistsAndDelete(t *testing.T) {
	ctx := context.Background()
	fio, _ := newTestFileIO(t)

	testPath := MustParsePath("/test-dir/delete-me.txt")
	writeString(t, fio, testPath, "Delete me")

	exists, err := fio.Exists(ctx, testPath)
	require.NoError(t, err)
	assert.True(t, exists)

	ok, err := fio.Delete(ctx, testPath, false)
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err = fio.Exists(ctx, testPath)
	require.NoError(t, err)
	assert.False(t, exists, "File should be deleted and not exist anymore.")
}

func TestFileIO_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fio, _ := newTestFileIO(t)
	rng := testutil.NewRNG(4711)

	for i, payload := range rng.Payloads(20, 64*1024) {
		p := MustParsePath(fmt.Sprintf("/round-trip/obj-%d", i))
		require.NoError(t, fio.WriteFile(ctx, p, payload, true))

		got, err := fio.ReadFile(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, len(payload), len(got))
		assert.True(t, bytes.Equal(payload, got), "payload %d differs", i)
	}
}

func TestFileIO_NotConfigured(t *testing.T) {
	ctx := context.Background()
	fio := New()
	p := MustParsePath("/x")

	_, err := fio.NewInputStream(ctx, p)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = fio.NewOutputStream(ctx, p, true)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = fio.GetFileStatus(ctx, p)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = fio.ListStatus(ctx, p)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = fio.Exists(ctx, p)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = fio.Delete(ctx, p, true)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = fio.Mkdirs(ctx, p)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = fio.Rename(ctx, p, p)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.True(t, fio.IsObjectStore())
}

func TestFileIO_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		fio := New()
		require.NoError(t, fio.Configure(ctx, Options{KeyBackend: "memory"}))

		p := MustParsePath("/a.txt")
		writeString(t, fio, p, "data")
		got, err := fio.ReadFile(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "data", string(got))

		// Later calls are no-ops, even with different options.
		require.NoError(t, fio.Configure(ctx, Options{KeyBackend: "bogus"}))
		exists, err := fio.Exists(ctx, p)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Local", func(t *testing.T) {
		fio := New()
		require.NoError(t, fio.Configure(ctx, Options{KeyBackend: "local", KeyLocalRoot: t.TempDir()}))

		p := MustParsePath("/dir/file.bin")
		writeString(t, fio, p, "on disk")
		st, err := fio.GetFileStatus(ctx, p.Parent())
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	})

	t.Run("InvalidOptionsCanBeRetried", func(t *testing.T) {
		fio := New()

		err := fio.Configure(ctx, Options{KeyBackend: "s3"})
		assert.ErrorIs(t, err, ErrConfiguration)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, KeyBucket, cerr.Key)

		_, err = fio.Exists(ctx, MustParsePath("/x"))
		assert.ErrorIs(t, err, ErrNotConfigured)

		require.NoError(t, fio.Configure(ctx, Options{KeyBackend: "memory"}))
		_, err = fio.Exists(ctx, MustParsePath("/x"))
		assert.NoError(t, err)
	})

	t.Run("FactoryFailure", func(t *testing.T) {
		fio := New(WithStoreFactory(func(context.Context, Config) (blobstore.Store, error) {
			return nil, errBackend
		}))

		err := fio.Configure(ctx, Options{KeyBackend: "memory"})
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorIs(t, err, errBackend)
	})

	t.Run("InjectedStoreSkipsConfigure", func(t *testing.T) {
		calls := 0
		fio := New(
			WithStore(blobstore.NewMemoryStore()),
			WithStoreFactory(func(context.Context, Config) (blobstore.Store, error) {
				calls++
				return blobstore.NewMemoryStore(), nil
			}),
		)
		require.NoError(t, fio.Configure(ctx, Options{KeyBackend: "memory"}))
		assert.Equal(t, 0, calls)
	})

	t.Run("LimitsWrapStore", func(t *testing.T) {
		fio := New()
		require.NoError(t, fio.Configure(ctx, Options{
			KeyBackend:             "memory",
			KeyMaxInflightRequests: "4",
		}))
		_, ok := fio.op.Load().store.(*blobstore.ThrottledStore)
		assert.True(t, ok)
	})
}

func TestFileIO_ConfigureRace(t *testing.T) {
	var constructed atomic.Int64
	fio := New(WithStoreFactory(func(context.Context, Config) (blobstore.Store, error) {
		constructed.Add(1)
		return blobstore.NewMemoryStore(), nil
	}))

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			return fio.Configure(context.Background(), Options{KeyBackend: "memory"})
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), constructed.Load())
}

func TestFileIO_BucketMismatch(t *testing.T) {
	ctx := context.Background()
	fio := New(WithStoreFactory(func(context.Context, Config) (blobstore.Store, error) {
		return blobstore.NewMemoryStore(), nil
	}))
	require.NoError(t, fio.Configure(ctx, Options{
		KeyBucket:    "warehouse",
		KeyAccessKey: "ak",
		KeySecretKey: "sk",
	}))

	writeString(t, fio, MustParsePath("s3://warehouse/db/t1"), "x")

	// Flat and qualified spellings name the same object.
	exists, err := fio.Exists(ctx, MustParsePath("/db/t1"))
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = fio.NewInputStream(ctx, MustParsePath("s3://elsewhere/db/t1"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = fio.Rename(ctx, MustParsePath("s3://warehouse/db/t1"), MustParsePath("s3://elsewhere/db/t2"))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestFileIO_KeysWithURIMetacharacters(t *testing.T) {
	ctx := context.Background()
	fio, store := newTestFileIO(t)

	writeString(t, fio, MustParsePath("s3://b/x/part#1"), "one")
	writeString(t, fio, MustParsePath("s3://b/x/part#2"), "two")
	writeString(t, fio, MustParsePath("s3://b/x/q?v=1"), "query")
	writeString(t, fio, MustParsePath("s3://b/x/a%2Fb"), "escaped")

	assert.Equal(t, []string{"x/a%2Fb", "x/part#1", "x/part#2", "x/q?v=1"}, store.Keys())

	got, err := fio.ReadFile(ctx, MustParsePath("s3://b/x/part#1"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	// The flat spelling reaches the same object.
	got, err = fio.ReadFile(ctx, MustParsePath("/x/part#2"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestFileIO_GetFileStatus(t *testing.T) {
	ctx := context.Background()
	fio, store := newTestFileIO(t)

	writeString(t, fio, MustParsePath("/db/t1/data.bin"), "12345")
	require.NoError(t, store.CreateDir(ctx, "db/empty/"))

	t.Run("File", func(t *testing.T) {
		st, err := fio.GetFileStatus(ctx, MustParsePath("/db/t1/data.bin"))
		require.NoError(t, err)
		assert.False(t, st.IsDir())
		assert.Equal(t, int64(5), st.Len())
		assert.Equal(t, "/db/t1/data.bin", st.Path().String())
		assert.Equal(t, blobstore.KindFile, st.Kind())
	})

	t.Run("Marker", func(t *testing.T) {
		st, err := fio.GetFileStatus(ctx, MustParsePath("/db/empty"))
		require.NoError(t, err)
		assert.True(t, st.IsDir())
		assert.Equal(t, blobstore.KindDirMarker, st.Kind())
	})

	t.Run("InferredPrefix", func(t *testing.T) {
		st, err := fio.GetFileStatus(ctx, MustParsePath("/db/t1"))
		require.NoError(t, err)
		assert.True(t, st.IsDir())
		assert.Equal(t, blobstore.KindDirPrefix, st.Kind())
		assert.Equal(t, int64(0), st.ModificationTime())
	})

	t.Run("Root", func(t *testing.T) {
		st, err := fio.GetFileStatus(ctx, MustParsePath("/"))
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := fio.GetFileStatus(ctx, MustParsePath("/db/nope"))
		assert.ErrorIs(t, err, ErrNotFound)
		var perr *PathError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "stat", perr.Op)
		assert.Equal(t, "/db/nope", perr.Path)
	})
}

func TestFileIO_ListStatus(t *testing.T) {
	ctx := context.Background()
	fio, _ := newTestFileIO(t)

	writeString(t, fio, MustParsePath("/t/a.txt"), "a")
	writeString(t, fio, MustParsePath("/t/b.txt"), "bb")
	writeString(t, fio, MustParsePath("/t/sub/c.txt"), "ccc")

	statuses, err := fio.ListStatus(ctx, MustParsePath("/t"))
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, "/t/a.txt", statuses[0].Path().String())
	assert.Equal(t, int64(1), statuses[0].Len())
	assert.Equal(t, "/t/b.txt", statuses[1].Path().String())
	assert.Equal(t, "/t/sub", statuses[2].Path().String())
	assert.True(t, statuses[2].IsDir())

	empty, err := fio.ListStatus(ctx, MustParsePath("/nothing"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFileIO_ListStatusError(t *testing.T) {
	fio, store := newTestFileIO(t)
	store.listErr["t/"] = errBackend

	_, err := fio.ListStatus(context.Background(), MustParsePath("/t"))
	assert.ErrorIs(t, err, ErrList)
	assert.ErrorIs(t, err, errBackend)
}

func TestFileIO_DeleteRecursive(t *testing.T) {
	ctx := context.Background()
	fio, store := newTestFileIO(t)
	rng := testutil.NewRNG(42)

	for _, k := range rng.Keys("warehouse/db/", 40, 3) {
		require.NoError(t, store.Write(ctx, k, []byte(k)))
	}
	require.NoError(t, store.CreateDir(ctx, "warehouse/db/"))
	require.NoError(t, store.CreateDir(ctx, "warehouse/db/empty/"))
	require.NoError(t, store.Write(ctx, "warehouse/keep.txt", []byte("keep")))

	ok, err := fio.Delete(ctx, MustParsePath("/warehouse/db"), true)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.False(t, store.HasPrefix("warehouse/db"))
	assert.Equal(t, []string{"warehouse/keep.txt"}, store.Keys())

	statuses, err := fio.ListStatus(ctx, MustParsePath("/warehouse/db"))
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestFileIO_DeleteRecursiveSkipsFailures(t *testing.T) {
	ctx := context.Background()
	fio, store := newTestFileIO(t)

	for _, k := range []string{"d/a", "d/b", "d/sub/c", "d/sub/d"} {
		require.NoError(t, store.Write(ctx, k, nil))
	}
	store.deleteErr["d/b"] = errBackend
	store.listErr["d/sub/"] = errBackend

	ok, err := fio.Delete(ctx, MustParsePath("/d"), true)
	require.NoError(t, err)
	assert.True(t, ok)

	// The failing entry and the unlistable subtree survive; the rest is gone.
	assert.Equal(t, []string{"d/b", "d/sub/c", "d/sub/d"}, store.Keys())
}

func TestFileIO_DeleteRecursiveListFailure(t *testing.T) {
	fio, store := newTestFileIO(t)
	store.listErr["d/"] = errBackend

	ok, err := fio.Delete(context.Background(), MustParsePath("/d"), true)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrList)
	assert.ErrorIs(t, err, errBackend)
}

func TestFileIO_DeleteNonRecursive(t *testing.T) {
	ctx := context.Background()
	fio, store := newTestFileIO(t)

	writeString(t, fio, MustParsePath("/d/a"), "a")
	writeString(t, fio, MustParsePath("/d/b"), "b")

	// A single call on the exact key; children are untouched.
	ok, err := fio.Delete(ctx, MustParsePath("/d"), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), store.deleteCalls.Load())
	assert.Equal(t, []string{"d/a", "d/b"}, store.Keys())

	// Store failures are not reported.
	store.deleteErr["d/a"] = errBackend
	ok, err = fio.Delete(ctx, MustParsePath("/d/a"), false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileIO_ExistsFalseAfterDeleteWithChildren(t *testing.T) {
	ctx := context.Background()
	fio, store := newTestFileIO(t)

	p := MustParsePath("/t/data")
	writeString(t, fio, p, "object")
	writeString(t, fio, MustParsePath("/t/data/child"), "child")

	ok, err := fio.Delete(ctx, p, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"t/data/child"}, store.Keys())

	exists, err := fio.Exists(ctx, p)
	require.NoError(t, err)
	assert.False(t, exists)

	// GetFileStatus still infers the directory from the remaining child.
	st, err := fio.GetFileStatus(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, blobstore.KindDirPrefix, st.Kind())
}

func TestFileIO_ExistsDirectories(t *testing.T) {
	ctx := context.Background()
	fio, _ := newTestFileIO(t)

	_, err := fio.Mkdirs(ctx, MustParsePath("/marked"))
	require.NoError(t, err)
	writeString(t, fio, MustParsePath("/implied/child"), "x")

	for path, want := range map[string]bool{"/": true, "/marked": true, "/implied": false} {
		exists, err := fio.Exists(ctx, MustParsePath(path))
		require.NoError(t, err)
		assert.Equal(t, want, exists, path)
	}
}

func TestFileIO_ExistsSwallowsErrors(t *testing.T) {
	fio, store := newTestFileIO(t)
	writeString(t, fio, MustParsePath("/a"), "a")
	store.statErr = errBackend

	exists, err := fio.Exists(context.Background(), MustParsePath("/a"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileIO_Mkdirs(t *testing.T) {
	ctx := context.Background()
	fio, store := newTestFileIO(t)

	ok, err := fio.Mkdirs(ctx, MustParsePath("/a/b"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a/b/"}, store.Keys())

	ok, err = fio.Mkdirs(ctx, MustParsePath("/"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())

	store.createErr = errBackend
	ok, err = fio.Mkdirs(ctx, MustParsePath("/c"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrDirectoryCreate)
	assert.ErrorIs(t, err, errBackend)
}

func TestFileIO_Rename(t *testing.T) {
	ctx := context.Background()
	fio, _ := newTestFileIO(t)

	src := MustParsePath("/from.txt")
	dst := MustParsePath("/to/dest.txt")
	writeString(t, fio, src, "payload")

	ok, err := fio.Rename(ctx, src, dst)
	require.NoError(t, err)
	assert.True(t, ok)

	exists, _ := fio.Exists(ctx, src)
	assert.False(t, exists)
	got, err := fio.ReadFile(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	ok, err = fio.Rename(ctx, src, dst)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrRename)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileIO_ReadMissing(t *testing.T) {
	fio, store := newTestFileIO(t)

	_, err := fio.NewInputStream(context.Background(), MustParsePath("/missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	// Any read failure is reported as not found.
	writeString(t, fio, MustParsePath("/present"), "x")
	store.readErr = errBackend
	_, err = fio.NewInputStream(context.Background(), MustParsePath("/present"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, errBackend)
}

func TestFileIO_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	fio, _ := newTestFileIO(t, WithMetricsCollector(metrics))

	p := MustParsePath("/m/obj")
	writeString(t, fio, p, "12345")
	_, _ = fio.ReadFile(ctx, p)
	_, _ = fio.ReadFile(ctx, MustParsePath("/m/missing"))
	_, _ = fio.ListStatus(ctx, MustParsePath("/m"))
	_, _ = fio.Exists(ctx, p)
	_, _ = fio.Mkdirs(ctx, MustParsePath("/m/dir"))
	_, _ = fio.Rename(ctx, p, MustParsePath("/m/obj2"))
	_, _ = fio.Delete(ctx, MustParsePath("/m"), true)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.WriteCount)
	assert.Equal(t, int64(5), stats.WriteBytes)
	assert.Equal(t, int64(2), stats.ReadCount)
	assert.Equal(t, int64(1), stats.ReadErrors)
	assert.Equal(t, int64(5), stats.ReadBytes)
	assert.Equal(t, int64(1), stats.ListCount)
	assert.Equal(t, int64(1), stats.ListEntries)
	assert.Equal(t, int64(1), stats.StatCount)
	assert.Equal(t, int64(1), stats.MkdirsCount)
	assert.Equal(t, int64(1), stats.RenameCount)
	assert.Equal(t, int64(1), stats.DeleteRecursive)
}

func TestFileIO_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	fio := New()
	require.NoError(t, fio.Configure(ctx, Options{
		KeyBackend:          "memory",
		KeyMemoryLimitBytes: "16",
	}))
	rc := fio.op.Load().rc

	out, err := fio.NewOutputStream(ctx, MustParsePath("/big"), true)
	require.NoError(t, err)
	_, err = out.Write(make([]byte, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), rc.MemoryUsage())

	_, err = out.Write(make([]byte, 10))
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Contains(t, err.Error(), "10 B requested, 10 B of 16 B in use")

	require.NoError(t, out.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())

	in, err := fio.NewInputStream(ctx, MustParsePath("/big"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), rc.MemoryUsage())

	// A second snapshot of the same object does not fit.
	_, err = fio.NewInputStream(ctx, MustParsePath("/big"))
	assert.True(t, errors.Is(err, ErrMemoryLimitExceeded))

	require.NoError(t, in.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}
