package fileio

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/fileio/blobstore"
	"github.com/hupe1980/fileio/internal/resource"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hupe1980/fileio"

// operator adapts a blobstore.Store to path semantics: it emulates
// directories, translates errors and instruments every call.
type operator struct {
	store   blobstore.Store
	bucket  string
	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
	tracer  trace.Tracer
}

func newOperator(store blobstore.Store, bucket string, rc *resource.Controller, o options) *operator {
	return &operator{
		store:   store,
		bucket:  bucket,
		rc:      rc,
		logger:  o.logger,
		metrics: o.metricsCollector,
		tracer:  o.tracerProvider.Tracer(instrumentationName),
	}
}

func (o *operator) start(ctx context.Context, op string, p Path, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "fileio."+op, trace.WithAttributes(
		append(attrs, attribute.String("fileio.path", p.String()))...,
	))
}

// finish ends the span and logs the outcome. size < 0 means "not applicable".
func (o *operator) finish(ctx context.Context, span trace.Span, op string, p Path, size int64, began time.Time, err error) time.Duration {
	elapsed := time.Since(began)
	if size >= 0 {
		span.SetAttributes(attribute.Int64("fileio.size", size))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	o.logger.LogOp(ctx, op, p, size, elapsed, err)
	return elapsed
}

// readAll fetches the whole object. Every failure is reported as ErrNotFound.
func (o *operator) readAll(ctx context.Context, p Path) ([]byte, error) {
	ctx, span := o.start(ctx, "read", p)
	began := time.Now()

	data, err := o.store.Read(ctx, p.Key())
	if err != nil {
		err = newPathError("read", p, ErrNotFound, err)
	}

	elapsed := o.finish(ctx, span, "read", p, int64(len(data)), began, err)
	o.metrics.RecordRead(len(data), elapsed, err)
	return data, err
}

// writeAll stores data with a single store call. overwrite is not enforced.
func (o *operator) writeAll(ctx context.Context, p Path, data []byte, overwrite bool) error {
	ctx, span := o.start(ctx, "write", p, attribute.Bool("fileio.overwrite", overwrite))
	began := time.Now()

	err := o.store.Write(ctx, p.Key(), data)
	if err != nil {
		err = newPathError("write", p, ErrWrite, err)
	}

	elapsed := o.finish(ctx, span, "write", p, int64(len(data)), began, err)
	o.metrics.RecordWrite(len(data), elapsed, err)
	return err
}

// stat resolves p as an object, a directory marker or an inferred directory,
// in that order.
func (o *operator) stat(ctx context.Context, p Path) (blobstore.Metadata, error) {
	return o.lookup(ctx, "stat", p, true)
}

// exists resolves p as an object or a directory marker only. A key that is
// merely a prefix of other keys does not exist on its own, so a deleted
// object stays gone even when keys below it remain.
func (o *operator) exists(ctx context.Context, p Path) (blobstore.Metadata, error) {
	return o.lookup(ctx, "exists", p, false)
}

func (o *operator) lookup(ctx context.Context, op string, p Path, inferPrefix bool) (blobstore.Metadata, error) {
	ctx, span := o.start(ctx, op, p)
	began := time.Now()

	md, err := o.resolve(ctx, p, inferPrefix)
	if err != nil {
		err = newPathError(op, p, ErrNotFound, err)
	} else {
		span.SetAttributes(attribute.String("fileio.kind", md.Kind.String()))
	}

	elapsed := o.finish(ctx, span, op, p, -1, began, err)
	o.metrics.RecordStat(elapsed, err)
	return md, err
}

func (o *operator) resolve(ctx context.Context, p Path, inferPrefix bool) (blobstore.Metadata, error) {
	if p.IsRoot() {
		return blobstore.Metadata{Kind: blobstore.KindDirPrefix}, nil
	}

	md, err := o.store.Stat(ctx, p.Key())
	if err == nil || !errors.Is(err, blobstore.ErrNotFound) {
		return md, err
	}

	dirKey := p.DirKey()
	if md, err := o.store.Stat(ctx, dirKey); err == nil {
		return md, nil
	} else if !errors.Is(err, blobstore.ErrNotFound) {
		return blobstore.Metadata{}, err
	}
	if !inferPrefix {
		return blobstore.Metadata{}, err
	}

	children, lerr := o.store.List(ctx, dirKey)
	if lerr != nil {
		return blobstore.Metadata{}, lerr
	}
	if len(children) == 0 {
		return blobstore.Metadata{}, err
	}
	return blobstore.Metadata{Key: dirKey, Kind: blobstore.KindDirPrefix}, nil
}

// list returns the direct children of p.
func (o *operator) list(ctx context.Context, p Path) ([]blobstore.Metadata, error) {
	ctx, span := o.start(ctx, "list", p)
	began := time.Now()

	entries, err := o.store.List(ctx, p.DirKey())
	if err != nil {
		err = newPathError("list", p, ErrList, err)
	} else {
		span.SetAttributes(attribute.Int("fileio.entries", len(entries)))
	}

	elapsed := o.finish(ctx, span, "list", p, -1, began, err)
	o.metrics.RecordList(len(entries), elapsed, err)
	return entries, err
}

// delete removes p. A non-recursive delete never fails; store errors are
// only logged. A recursive delete fails only when the top-level listing does.
func (o *operator) delete(ctx context.Context, p Path, recursive bool) error {
	ctx, span := o.start(ctx, "delete", p, attribute.Bool("fileio.recursive", recursive))
	began := time.Now()

	var err error
	if recursive {
		err = o.deleteTree(ctx, p)
	} else if derr := o.store.Delete(ctx, p.Key()); derr != nil {
		o.logger.LogSwallowed(ctx, "delete", p, derr)
	}

	elapsed := o.finish(ctx, span, "delete", p, -1, began, err)
	o.metrics.RecordDelete(recursive, elapsed, err)
	return err
}

// deleteTree walks p depth first in listing order. Per-entry failures are
// logged and skipped; the walk does not stop or roll back.
func (o *operator) deleteTree(ctx context.Context, p Path) error {
	entries, err := o.store.List(ctx, p.DirKey())
	if err != nil {
		return newPathError("delete", p, ErrList, err)
	}

	for _, e := range entries {
		child := p.withKey(e.Key)
		if e.IsDir() {
			if err := o.deleteTree(ctx, child); err != nil {
				o.logger.LogSwallowed(ctx, "delete", child, err)
			}
			continue
		}
		if err := o.store.Delete(ctx, e.Key); err != nil {
			o.logger.LogSwallowed(ctx, "delete", child, err)
		}
	}

	if p.IsRoot() {
		return nil
	}
	for _, key := range []string{p.DirKey(), p.Key()} {
		if err := o.store.Delete(ctx, key); err != nil {
			o.logger.LogSwallowed(ctx, "delete", p, err)
		}
	}
	return nil
}

// createDir writes a directory marker for p.
func (o *operator) createDir(ctx context.Context, p Path) error {
	ctx, span := o.start(ctx, "mkdirs", p)
	began := time.Now()

	var err error
	if !p.IsRoot() {
		if cerr := o.store.CreateDir(ctx, p.DirKey()); cerr != nil {
			err = newPathError("mkdirs", p, ErrDirectoryCreate, cerr)
		}
	}

	elapsed := o.finish(ctx, span, "mkdirs", p, -1, began, err)
	o.metrics.RecordMkdirs(elapsed, err)
	return err
}

// rename issues a single store rename. It is not atomic.
func (o *operator) rename(ctx context.Context, src, dst Path) error {
	ctx, span := o.start(ctx, "rename", src, attribute.String("fileio.destination", dst.String()))
	began := time.Now()

	var err error
	if rerr := o.store.Rename(ctx, src.Key(), dst.Key()); rerr != nil {
		err = newPathError("rename", src, ErrRename, rerr)
	}

	elapsed := o.finish(ctx, span, "rename", src, -1, began, err)
	o.metrics.RecordRename(elapsed, err)
	return err
}
