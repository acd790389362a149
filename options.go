package ledgerdb

import "time"

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	eagerGraph       bool
	progressInterval time.Duration
	capacity         int
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		progressInterval: 5 * time.Second,
	}
}

// Option configures a DB.
type Option func(*options)

// WithLogger sets the logger. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &ledgerdb.BasicMetricsCollector{}
//	db := ledgerdb.New(ledgerdb.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithEagerGraphRebuild re-derives the wallet graph right after every
// update and delete instead of on the next graph read.
func WithEagerGraphRebuild() Option {
	return func(o *options) {
		o.eagerGraph = true
	}
}

// WithProgressInterval sets how often Load logs progress. Zero disables
// progress logs.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

// WithInitialCapacity pre-sizes the record store.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}
