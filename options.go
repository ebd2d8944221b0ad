package fileio

import (
	"log/slog"

	"github.com/hupe1980/fileio/blobstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	tracerProvider   trace.TracerProvider
	store            blobstore.Store
	storeFactory     StoreFactory
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		tracerProvider:   otel.GetTracerProvider(),
		storeFactory:     DefaultStoreFactory,
	}
}

// Option configures a FileIO.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := fileio.NewJSONLogger(slog.LevelDebug)
//	fio := fileio.New(fileio.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &fileio.BasicMetricsCollector{}
//	fio := fileio.New(fileio.WithMetricsCollector(metrics))
//	// ... use fio ...
//	stats := metrics.GetStats()
//	fmt.Printf("Reads: %d, Avg latency: %dns\n", stats.ReadCount, stats.ReadAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithTracerProvider sets the OpenTelemetry provider used for operation spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithStore injects a ready store. The FileIO is usable immediately and
// Configure becomes a no-op.
func WithStore(store blobstore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithStoreFactory replaces DefaultStoreFactory for Configure.
func WithStoreFactory(factory StoreFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.storeFactory = factory
		}
	}
}
