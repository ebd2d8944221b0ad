package fileio

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see package metric for a ready-made adapter).
type MetricsCollector interface {
	// RecordRead is called after each whole-object read.
	// bytes is the object size, err is nil if successful.
	RecordRead(bytes int, duration time.Duration, err error)

	// RecordWrite is called after each whole-object write.
	RecordWrite(bytes int, duration time.Duration, err error)

	// RecordStat is called after each stat, including directory fallbacks.
	RecordStat(duration time.Duration, err error)

	// RecordList is called after each listing. entries is the number of children.
	RecordList(entries int, duration time.Duration, err error)

	// RecordDelete is called after each delete.
	RecordDelete(recursive bool, duration time.Duration, err error)

	// RecordMkdirs is called after each directory marker creation.
	RecordMkdirs(duration time.Duration, err error)

	// RecordRename is called after each rename.
	RecordRename(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRead(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordWrite(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordStat(time.Duration, error)         {}
func (NoopMetricsCollector) RecordList(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordDelete(bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordMkdirs(time.Duration, error)       {}
func (NoopMetricsCollector) RecordRename(time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReadCount       atomic.Int64
	ReadErrors      atomic.Int64
	ReadBytes       atomic.Int64
	ReadTotalNanos  atomic.Int64
	WriteCount      atomic.Int64
	WriteErrors     atomic.Int64
	WriteBytes      atomic.Int64
	WriteTotalNanos atomic.Int64
	StatCount       atomic.Int64
	StatErrors      atomic.Int64
	ListCount       atomic.Int64
	ListErrors      atomic.Int64
	ListEntries     atomic.Int64
	DeleteCount     atomic.Int64
	DeleteRecursive atomic.Int64
	DeleteErrors    atomic.Int64
	MkdirsCount     atomic.Int64
	MkdirsErrors    atomic.Int64
	RenameCount     atomic.Int64
	RenameErrors    atomic.Int64
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
		return
	}
	b.ReadBytes.Add(int64(bytes))
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	b.WriteBytes.Add(int64(bytes))
}

// RecordStat implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStat(_ time.Duration, err error) {
	b.StatCount.Add(1)
	if err != nil {
		b.StatErrors.Add(1)
	}
}

// RecordList implements MetricsCollector.
func (b *BasicMetricsCollector) RecordList(entries int, _ time.Duration, err error) {
	b.ListCount.Add(1)
	b.ListEntries.Add(int64(entries))
	if err != nil {
		b.ListErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(recursive bool, _ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if recursive {
		b.DeleteRecursive.Add(1)
	}
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordMkdirs implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMkdirs(_ time.Duration, err error) {
	b.MkdirsCount.Add(1)
	if err != nil {
		b.MkdirsErrors.Add(1)
	}
}

// RecordRename implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRename(_ time.Duration, err error) {
	b.RenameCount.Add(1)
	if err != nil {
		b.RenameErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReadCount:       b.ReadCount.Load(),
		ReadErrors:      b.ReadErrors.Load(),
		ReadBytes:       b.ReadBytes.Load(),
		ReadAvgNanos:    avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		WriteCount:      b.WriteCount.Load(),
		WriteErrors:     b.WriteErrors.Load(),
		WriteBytes:      b.WriteBytes.Load(),
		WriteAvgNanos:   avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		StatCount:       b.StatCount.Load(),
		StatErrors:      b.StatErrors.Load(),
		ListCount:       b.ListCount.Load(),
		ListErrors:      b.ListErrors.Load(),
		ListEntries:     b.ListEntries.Load(),
		DeleteCount:     b.DeleteCount.Load(),
		DeleteRecursive: b.DeleteRecursive.Load(),
		DeleteErrors:    b.DeleteErrors.Load(),
		MkdirsCount:     b.MkdirsCount.Load(),
		MkdirsErrors:    b.MkdirsErrors.Load(),
		RenameCount:     b.RenameCount.Load(),
		RenameErrors:    b.RenameErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReadCount       int64
	ReadErrors      int64
	ReadBytes       int64
	ReadAvgNanos    int64
	WriteCount      int64
	WriteErrors     int64
	WriteBytes      int64
	WriteAvgNanos   int64
	StatCount       int64
	StatErrors      int64
	ListCount       int64
	ListErrors      int64
	ListEntries     int64
	DeleteCount     int64
	DeleteRecursive int64
	DeleteErrors    int64
	MkdirsCount     int64
	MkdirsErrors    int64
	RenameCount     int64
	RenameErrors    int64
}
