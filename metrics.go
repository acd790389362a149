package ledgerdb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics. metric.Prometheus exports
// them to Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each insert; err is nil on success.
	RecordInsert(duration time.Duration, err error)

	// RecordUpdate is called after each update or patch.
	RecordUpdate(duration time.Duration, err error)

	// RecordDelete is called after each delete.
	RecordDelete(duration time.Duration, err error)

	// RecordQuery is called after each read. kind names the query
	// ("range", "by_token", "bfs", ...), results is the number of items
	// returned.
	RecordQuery(kind string, results int, duration time.Duration, err error)

	// RecordLoad is called after each bulk load.
	RecordLoad(inserted, skipped int, duration time.Duration)

	// RecordGraphRebuild is called after the wallet graph is re-derived.
	RecordGraphRebuild(nodes, edges int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)             {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, error)             {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)             {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, int, time.Duration)            {}
func (NoopMetricsCollector) RecordGraphRebuild(int, int, time.Duration)    {}

// BasicMetricsCollector keeps counters in memory. Useful for debugging and
// tests without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	UpdateCount      atomic.Int64
	UpdateErrors     atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryResults     atomic.Int64
	QueryTotalNanos  atomic.Int64
	LoadCount        atomic.Int64
	LoadInserted     atomic.Int64
	LoadSkipped      atomic.Int64
	GraphRebuilds    atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(_ time.Duration, err error) {
	b.UpdateCount.Add(1)
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(inserted, skipped int, _ time.Duration) {
	b.LoadCount.Add(1)
	b.LoadInserted.Add(int64(inserted))
	b.LoadSkipped.Add(int64(skipped))
}

// RecordGraphRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGraphRebuild(int, int, time.Duration) {
	b.GraphRebuilds.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		UpdateCount:    b.UpdateCount.Load(),
		UpdateErrors:   b.UpdateErrors.Load(),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryResults:   b.QueryResults.Load(),
		QueryAvgNanos:  avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		LoadCount:      b.LoadCount.Load(),
		LoadInserted:   b.LoadInserted.Load(),
		LoadSkipped:    b.LoadSkipped.Load(),
		GraphRebuilds:  b.GraphRebuilds.Load(),
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
	InsertCount    int64
	InsertErrors   int64
	InsertAvgNanos int64
	UpdateCount    int64
	UpdateErrors   int64
	DeleteCount    int64
	DeleteErrors   int64
	QueryCount     int64
	QueryErrors    int64
	QueryResults   int64
	QueryAvgNanos  int64
	LoadCount      int64
	LoadInserted   int64
	LoadSkipped    int64
	GraphRebuilds  int64
}
