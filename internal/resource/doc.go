// Package resource implements the resource controller behind fileio's optional limits.
//
// The Controller manages three resource types:
//
//   - Memory: bytes held by open stream buffers (non-blocking, fail-fast)
//   - Requests: concurrent store requests across all callers (blocking)
//   - IO: store throughput in bytes per second (token bucket)
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory returns ErrMemoryLimitExceeded immediately
// when the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(size); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(size)
//
// # Request and IO Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxInflightRequests: 64,
//	    IOLimitBytesPerSec:  100 * 1024 * 1024, // 100MB/s
//	})
//
//	if err := rc.AcquireRequest(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseRequest()
//
//	if err := rc.AcquireIO(ctx, len(data)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
