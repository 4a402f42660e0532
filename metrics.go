package songsight

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordRebuild is called after each rebuild or snapshot load.
	// count is the number of indexed tracks.
	RecordRebuild(count int, duration time.Duration, err error)

	// RecordSimilar is called after each similarity query.
	// results is the number of neighbors returned.
	RecordSimilar(results int, duration time.Duration, err error)

	// RecordRange is called after each range filter query.
	RecordRange(results int, duration time.Duration, err error)

	// RecordSample is called after each ranked random sample.
	RecordSample(results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRebuild(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSimilar(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRange(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSample(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RebuildCount      atomic.Int64
	RebuildErrors     atomic.Int64
	RebuildTotalNanos atomic.Int64
	IndexedTracks     atomic.Int64
	SimilarCount      atomic.Int64
	SimilarErrors     atomic.Int64
	SimilarTotalNanos atomic.Int64
	SimilarResults    atomic.Int64
	RangeCount        atomic.Int64
	RangeErrors       atomic.Int64
	RangeResults      atomic.Int64
	SampleCount       atomic.Int64
	SampleErrors      atomic.Int64
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(count int, duration time.Duration, err error) {
	b.RebuildCount.Add(1)
	b.RebuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RebuildErrors.Add(1)
		return
	}
	b.IndexedTracks.Store(int64(count))
}

// RecordSimilar implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSimilar(results int, duration time.Duration, err error) {
	b.SimilarCount.Add(1)
	b.SimilarTotalNanos.Add(duration.Nanoseconds())
	b.SimilarResults.Add(int64(results))
	if err != nil {
		b.SimilarErrors.Add(1)
	}
}

// RecordRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRange(results int, duration time.Duration, err error) {
	b.RangeCount.Add(1)
	b.RangeResults.Add(int64(results))
	if err != nil {
		b.RangeErrors.Add(1)
	}
}

// RecordSample implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSample(results int, duration time.Duration, err error) {
	b.SampleCount.Add(1)
	if err != nil {
		b.SampleErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RebuildCount:    b.RebuildCount.Load(),
		RebuildErrors:   b.RebuildErrors.Load(),
		RebuildAvgNanos: avg(b.RebuildTotalNanos.Load(), b.RebuildCount.Load()),
		IndexedTracks:   b.IndexedTracks.Load(),
		SimilarCount:    b.SimilarCount.Load(),
		SimilarErrors:   b.SimilarErrors.Load(),
		SimilarAvgNanos: avg(b.SimilarTotalNanos.Load(), b.SimilarCount.Load()),
		SimilarResults:  b.SimilarResults.Load(),
		RangeCount:      b.RangeCount.Load(),
		RangeErrors:     b.RangeErrors.Load(),
		RangeResults:    b.RangeResults.Load(),
		SampleCount:     b.SampleCount.Load(),
		SampleErrors:    b.SampleErrors.Load(),
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
	RebuildCount    int64
	RebuildErrors   int64
	RebuildAvgNanos int64
	IndexedTracks   int64
	SimilarCount    int64
	SimilarErrors   int64
	SimilarAvgNanos int64
	SimilarResults  int64
	RangeCount      int64
	RangeErrors     int64
	RangeResults    int64
	SampleCount     int64
	SampleErrors    int64
}
