package fileio

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/fileio/blobstore"
	"github.com/hupe1980/fileio/internal/resource"
)

// FileIO exposes path-based file operations over an object store.
//
// A FileIO is safe for concurrent use. Streams it returns are not.
type FileIO struct {
	opts options

	mu sync.Mutex // serializes Configure's slow path
	op atomic.Pointer[operator]
}

// New creates a FileIO. Unless WithStore is given, it must be configured
// with Configure before use.
func New(optFns ...Option) *FileIO {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	f := &FileIO{opts: o}
	if o.store != nil {
		f.op.Store(newOperator(o.store, "", nil, o))
	}
	return f
}

// Configure builds the store from opts. Only the first successful call has
// an effect; concurrent first calls construct exactly one store. A failed
// call leaves the FileIO unconfigured, so it may be retried.
func (f *FileIO) Configure(ctx context.Context, opts Options) error {
	if f.op.Load() != nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.op.Load() != nil {
		return nil
	}

	cfg, err := ParseConfig(opts)
	if err != nil {
		f.opts.logger.LogConfigure(ctx, cfg, err)
		return err
	}

	store, err := f.opts.storeFactory(ctx, cfg)
	if err != nil {
		err = &ConfigError{Key: KeyBackend, Reason: "cannot create " + string(cfg.Backend) + " store", cause: err}
		f.opts.logger.LogConfigure(ctx, cfg, err)
		return err
	}

	var rc *resource.Controller
	if !cfg.Limits.Unlimited() {
		rc = resource.NewController(cfg.Limits)
		if cfg.Limits.MaxInflightRequests > 0 || cfg.Limits.IOLimitBytesPerSec > 0 {
			store = blobstore.NewThrottledStore(store, rc)
		}
	}

	o := f.opts
	o.logger = o.logger.WithBackend(cfg.Backend)
	f.op.Store(newOperator(store, cfg.Bucket, rc, o))
	o.logger.LogConfigure(ctx, cfg, nil)
	return nil
}

// IsObjectStore reports whether the backing store is an object store. Always true.
func (f *FileIO) IsObjectStore() bool { return true }

// operator returns the configured operator after checking that p belongs to it.
func (f *FileIO) operator(op string, paths ...Path) (*operator, error) {
	o := f.op.Load()
	if o == nil {
		return nil, ErrNotConfigured
	}
	for _, p := range paths {
		if p.Authority() != "" && o.bucket != "" && p.Authority() != o.bucket {
			return nil, newPathError(op, p, ErrInvalidPath, nil)
		}
	}
	return o, nil
}

// NewInputStream reads the whole object at p and returns a seekable stream over it.
func (f *FileIO) NewInputStream(ctx context.Context, p Path) (*InputStream, error) {
	o, err := f.operator("open", p)
	if err != nil {
		return nil, err
	}

	data, err := o.readAll(ctx, p)
	if err != nil {
		return nil, err
	}

	n := int64(len(data))
	if err := o.rc.AcquireMemory(n); err != nil {
		return nil, newMemoryLimitError("open", p, o.rc, n)
	}
	return newInputStream(p, data, func() { o.rc.ReleaseMemory(n) }), nil
}

// NewOutputStream returns a stream that writes p when closed. The store is
// not contacted before Close. overwrite is passed through but not enforced.
func (f *FileIO) NewOutputStream(ctx context.Context, p Path, overwrite bool) (*OutputStream, error) {
	o, err := f.operator("create", p)
	if err != nil {
		return nil, err
	}
	return newOutputStream(ctx, o, p, overwrite), nil
}

// GetFileStatus returns the status of p, resolving directory markers and
// inferred directories.
func (f *FileIO) GetFileStatus(ctx context.Context, p Path) (*FileStatus, error) {
	o, err := f.operator("stat", p)
	if err != nil {
		return nil, err
	}
	md, err := o.stat(ctx, p)
	if err != nil {
		return nil, err
	}
	return newFileStatus(p, md), nil
}

// ListStatus returns the direct children of p in store order.
// Each status carries the child's own path.
func (f *FileIO) ListStatus(ctx context.Context, p Path) ([]*FileStatus, error) {
	o, err := f.operator("list", p)
	if err != nil {
		return nil, err
	}
	entries, err := o.list(ctx, p)
	if err != nil {
		return nil, err
	}
	statuses := make([]*FileStatus, 0, len(entries))
	for _, md := range entries {
		statuses = append(statuses, newFileStatus(p.withKey(md.Key), md))
	}
	return statuses, nil
}

// Exists reports whether p is an object or a directory marker. Unlike
// GetFileStatus it does not infer directories from keys below p. Any store
// failure, transient or not, is reported as false. The error is non-nil only
// for an unconfigured FileIO.
func (f *FileIO) Exists(ctx context.Context, p Path) (bool, error) {
	o, err := f.operator("exists", p)
	if err != nil {
		return false, err
	}
	if _, err := o.exists(ctx, p); err != nil {
		o.logger.LogSwallowed(ctx, "exists", p, err)
		return false, nil
	}
	return true, nil
}

// Delete removes p, and with recursive everything below it.
// It is not atomic: a failure part way leaves the remaining entries in place.
func (f *FileIO) Delete(ctx context.Context, p Path, recursive bool) (bool, error) {
	o, err := f.operator("delete", p)
	if err != nil {
		return false, err
	}
	if err := o.delete(ctx, p, recursive); err != nil {
		return false, err
	}
	return true, nil
}

// Mkdirs creates a directory marker for p.
func (f *FileIO) Mkdirs(ctx context.Context, p Path) (bool, error) {
	o, err := f.operator("mkdirs", p)
	if err != nil {
		return false, err
	}
	if err := o.createDir(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// Rename moves src to dst with a single store call. It is not atomic.
func (f *FileIO) Rename(ctx context.Context, src, dst Path) (bool, error) {
	o, err := f.operator("rename", src, dst)
	if err != nil {
		return false, err
	}
	if err := o.rename(ctx, src, dst); err != nil {
		return false, err
	}
	return true, nil
}

// ReadFile returns the contents of p.
func (f *FileIO) ReadFile(ctx context.Context, p Path) ([]byte, error) {
	in, err := f.NewInputStream(ctx, p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	return io.ReadAll(in)
}

// WriteFile stores data at p. Nothing is stored if data does not fit the
// memory limit.
func (f *FileIO) WriteFile(ctx context.Context, p Path, data []byte, overwrite bool) error {
	out, err := f.NewOutputStream(ctx, p, overwrite)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.discard()
		return err
	}
	return out.Close()
}

// Close releases the FileIO. Remote stores hold no resources, so it only
// exists for symmetry; it is idempotent.
func (f *FileIO) Close() error { return nil }
