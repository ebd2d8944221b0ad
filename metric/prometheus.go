// Package metric exports fileio operation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	fio := fileio.New(fileio.WithMetricsCollector(metric.NewPrometheusCollector(reg)))
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "fileio"
	subsystem = "store"
)

// PrometheusCollector implements fileio.MetricsCollector with Prometheus collectors.
type PrometheusCollector struct {
	ops     *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	entries prometheus.Counter
}

// NewPrometheusCollector registers the fileio metrics on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ops_total",
		Help:      "Total number of store operations by result.",
	}, []string{"op", "result"}) // result = "ok" | "error"
	bytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "bytes_total",
		Help:      "Total bytes transferred by successful reads and writes.",
	}, []string{"op"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "op_duration_seconds",
		Help:      "Histogram of store operation durations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	entries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "list_entries_total",
		Help:      "Total number of entries returned by listings.",
	})

	ops = register(reg, ops)
	bytes = register(reg, bytes)
	latency = register(reg, latency)
	entries = register(reg, entries)

	return &PrometheusCollector{
		ops:     ops,
		bytes:   bytes,
		latency: latency,
		entries: entries,
	}
}

// register returns the already registered collector when c is a duplicate,
// so several FileIO instances can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (p *PrometheusCollector) observe(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.ops.WithLabelValues(op, result).Inc()
	p.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordRead implements fileio.MetricsCollector.
func (p *PrometheusCollector) RecordRead(n int, d time.Duration, err error) {
	p.observe("read", d, err)
	if err == nil {
		p.bytes.WithLabelValues("read").Add(float64(n))
	}
}

// RecordWrite implements fileio.MetricsCollector.
func (p *PrometheusCollector) RecordWrite(n int, d time.Duration, err error) {
	p.observe("write", d, err)
	if err == nil {
		p.bytes.WithLabelValues("write").Add(float64(n))
	}
}

// RecordStat implements fileio.MetricsCollector.
func (p *PrometheusCollector) RecordStat(d time.Duration, err error) {
	p.observe("stat", d, err)
}

// RecordList implements fileio.MetricsCollector.
func (p *PrometheusCollector) RecordList(n int, d time.Duration, err error) {
	p.observe("list", d, err)
	p.entries.Add(float64(n))
}

// RecordDelete implements fileio.MetricsCollector.
func (p *PrometheusCollector) RecordDelete(recursive bool, d time.Duration, err error) {
	op := "delete"
	if recursive {
		op = "delete_recursive"
	}
	p.observe(op, d, err)
}

// RecordMkdirs implements fileio.MetricsCollector.
func (p *PrometheusCollector) RecordMkdirs(d time.Duration, err error) {
	p.observe("mkdirs", d, err)
}

// RecordRename implements fileio.MetricsCollector.
func (p *PrometheusCollector) RecordRename(d time.Duration, err error) {
	p.observe("rename", d, err)
}
