// Package metric exports ledgerdb engine and HTTP metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	m := metric.NewPrometheus(reg, "ledgerdb")
//	db := ledgerdb.New(ledgerdb.WithMetricsCollector(m))
//	http.Handle("/metrics", m.Handler())
package metric
