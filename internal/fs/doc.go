// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: Represents an open file with read/write/sync capabilities
//   - [FileSystem]: Abstracts filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// # Usage
//
// blobstore.LocalStore uses fs.Default unless another FileSystem is injected:
//
//	store := blobstore.NewLocalStore(root, blobstore.WithFileSystem(fs.Default))
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("part-0", fs.Fault{FailAfterBytes: 1024})
//	ffs.AddRule("stale", fs.Fault{FailOnRemove: true})
//
// # Design Notes
//
// This package does NOT include context.Context parameters. Local filesystem
// calls are not interruptible at the syscall level; cancellation is checked by
// the callers between calls.
package fs
