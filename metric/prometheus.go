package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Prometheus records engine operations as Prometheus series. It satisfies
// ledgerdb.MetricsCollector and is safe for concurrent use.
type Prometheus struct {
	gatherer prometheus.Gatherer

	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	results    *prometheus.HistogramVec
	loadRows   *prometheus.CounterVec
	graphNodes prometheus.Gauge
	graphEdges prometheus.Gauge
	rebuilds   prometheus.Histogram

	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheus creates the collectors under namespace and registers them
// with reg. A nil reg uses a fresh registry.
func NewPrometheus(reg *prometheus.Registry, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "ledgerdb"
	}

	p := &Prometheus{
		gatherer: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations segmented by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of engine operations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of results returned per query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"op"}),
		loadRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_rows_total",
			Help:      "Rows seen by bulk loads segmented by result.",
		}, []string{"result"}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Wallets in the last derived graph.",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Directed edges in the last derived graph.",
		}),
		rebuilds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of graph re-derivations.",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests segmented by route, method and status.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(
		p.operations,
		p.latency,
		p.results,
		p.loadRows,
		p.graphNodes,
		p.graphEdges,
		p.rebuilds,
		p.requests,
		p.durations,
	)
	return p
}

func (p *Prometheus) record(op string, d time.Duration, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	p.operations.WithLabelValues(op, outcome).Inc()
	p.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordInsert implements ledgerdb.MetricsCollector.
func (p *Prometheus) RecordInsert(d time.Duration, err error) { p.record("insert", d, err) }

// RecordUpdate implements ledgerdb.MetricsCollector.
func (p *Prometheus) RecordUpdate(d time.Duration, err error) { p.record("update", d, err) }

// RecordDelete implements ledgerdb.MetricsCollector.
func (p *Prometheus) RecordDelete(d time.Duration, err error) { p.record("delete", d, err) }

// RecordQuery implements ledgerdb.MetricsCollector.
func (p *Prometheus) RecordQuery(kind string, results int, d time.Duration, err error) {
	p.record(kind, d, err)
	p.results.WithLabelValues(kind).Observe(float64(results))
}

// RecordLoad implements ledgerdb.MetricsCollector.
func (p *Prometheus) RecordLoad(inserted, skipped int, d time.Duration) {
	p.operations.WithLabelValues("load", outcomeOK).Inc()
	p.latency.WithLabelValues("load").Observe(d.Seconds())
	p.loadRows.WithLabelValues("inserted").Add(float64(inserted))
	p.loadRows.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordGraphRebuild implements ledgerdb.MetricsCollector.
func (p *Prometheus) RecordGraphRebuild(nodes, edges int, d time.Duration) {
	p.graphNodes.Set(float64(nodes))
	p.graphEdges.Set(float64(edges))
	p.rebuilds.Observe(d.Seconds())
}

// ObserveRequest records one served HTTP request.
func (p *Prometheus) ObserveRequest(route, method string, status int, d time.Duration) {
	p.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.durations.WithLabelValues(route, method).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
