// Package fileio provides a file-system abstraction over object stores.
//
// Table readers and writers use paths, streams and directory listings; the
// objects behind them live in a flat bucket (S3, MinIO) or, for tests and
// local development, in memory or on disk. fileio bridges the two:
// directories are emulated with zero-length marker objects and key prefixes,
// input streams are seekable snapshots of a whole object, and output streams
// buffer in memory and store the object with a single write on Close.
//
// # Quick Start
//
//	ctx := context.Background()
//	fio := fileio.New(fileio.WithLogger(fileio.NewTextLogger(slog.LevelInfo)))
//	err := fio.Configure(ctx, fileio.Options{
//	    fileio.KeyEndpoint:  "http://127.0.0.1:9000",
//	    fileio.KeyBucket:    "warehouse",
//	    fileio.KeyAccessKey: "minio",
//	    fileio.KeySecretKey: "minio123",
//	    fileio.KeyPathStyleAccess: "true",
//	})
//
//	p := fileio.MustParsePath("/db/t1/data-0.parquet")
//	out, _ := fio.NewOutputStream(ctx, p, true)
//	out.Write(payload)
//	out.Close() // the object is stored here
//
//	in, _ := fio.NewInputStream(ctx, p)
//	in.Seek(128, io.SeekStart)
//
// # Paths
//
// "/a/b" and "s3://bucket/a/b" name the same key "a/b". A qualified path
// whose bucket differs from the configured one is rejected.
//
// # Directories
//
// Mkdirs writes a marker object "a/b/". GetFileStatus on "a/b" resolves, in
// order, the object "a/b", the marker "a/b/" and finally any key below
// "a/b/" (an inferred directory).
//
// # Error Handling
//
// Errors match the sentinels in this package with errors.Is:
//
//	if errors.Is(err, fileio.ErrNotFound) { ... }
//
// Exists and non-recursive Delete do not report store failures; they are
// logged at debug level.
//
// # Observability
//
// Every store call is traced with OpenTelemetry (span "fileio.<op>"),
// logged through Logger and recorded by the MetricsCollector.
package fileio
