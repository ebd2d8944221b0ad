package fileio

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with fileio-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(p Path) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", p.String()),
	}
}

// WithBackend adds a backend field to the logger.
func (l *Logger) WithBackend(b Backend) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", string(b)),
	}
}

// LogOp logs a store operation. Missing objects are routine and logged at
// debug level; other failures at warn level.
func (l *Logger) LogOp(ctx context.Context, op string, p Path, size int64, elapsed time.Duration, err error) {
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrNotFound) {
			level = slog.LevelDebug
		}
		l.Log(ctx, level, op+" failed",
			"path", p.String(),
			"duration", elapsed,
			"error", err,
		)
		return
	}
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []any{"path", p.String(), "duration", elapsed}
	if size >= 0 {
		attrs = append(attrs, "size", humanize.IBytes(uint64(size)))
	}
	l.DebugContext(ctx, op+" completed", attrs...)
}

// LogSwallowed logs an error that is deliberately not returned to the caller.
func (l *Logger) LogSwallowed(ctx context.Context, op string, p Path, err error) {
	l.DebugContext(ctx, op+" error ignored",
		"path", p.String(),
		"error", err,
	)
}

// LogConfigure logs the outcome of Configure.
func (l *Logger) LogConfigure(ctx context.Context, cfg Config, err error) {
	if err != nil {
		l.ErrorContext(ctx, "configure failed",
			"error", err,
		)
		return
	}
	attrs := []any{"config", cfg}
	if cfg.Limits.MemoryLimitBytes > 0 {
		attrs = append(attrs, "memory_limit", humanize.IBytes(uint64(cfg.Limits.MemoryLimitBytes)))
	}
	l.InfoContext(ctx, "fileio configured", attrs...)
}
