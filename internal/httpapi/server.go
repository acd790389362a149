// Package httpapi serves the ledgerdb query API over HTTP.
//
// Every response uses the envelope {"ok":true,"data":...} or
// {"ok":false,"error":"..."}. Engine calls are serialized behind one mutex.
package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/ledgerdb"
	"github.com/hupe1980/ledgerdb/codec"
	"github.com/hupe1980/ledgerdb/metric"
	"github.com/hupe1980/ledgerdb/resource"
)

// Config captures the dependencies of the server.
type Config struct {
	DB *ledgerdb.DB
	// Source describes where the dataset was loaded from; reported by
	// /api/status.
	Source string
	// Location interprets timestamps in paths and bodies. Defaults to UTC.
	Location *time.Location
	Logger   *ledgerdb.Logger
	// Metrics instruments requests and serves /metrics when set.
	Metrics *metric.Prometheus
	// Limiter admits requests to /api when set.
	Limiter *resource.Controller
	Codec   codec.Codec
}

// Server holds the router and the engine it guards.
type Server struct {
	mu     sync.Mutex
	db     *ledgerdb.DB
	source string
	loc    *time.Location
	logger *ledgerdb.Logger
	codec  codec.Codec

	metrics *metric.Prometheus
	limiter *resource.Controller
	router  http.Handler
}

// New constructs the server and its routes.
func New(cfg Config) *Server {
	if cfg.DB == nil {
		cfg.DB = ledgerdb.New()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = ledgerdb.NoopLogger()
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.Default
	}
	s := &Server{
		db:      cfg.DB,
		source:  cfg.Source,
		loc:     cfg.Location,
		logger:  cfg.Logger,
		codec:   cfg.Codec,
		metrics: cfg.Metrics,
		limiter: cfg.Limiter,
	}
	s.router = s.buildRouter()
	return s
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(s.requestID)
	r.Use(s.recoverer)
	r.Use(s.logRequests)
	if s.metrics != nil {
		r.Use(s.instrument)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if s.limiter != nil {
			api.Use(s.admit)
		}
		api.Use(s.serialize)

		api.Get("/status", s.handleStatus)

		api.Route("/db", func(db chi.Router) {
			db.Get("/by_timestamp/{ts}", s.handleByTimestamp)
			db.Get("/by_token/{symbol}", s.handleByToken)
			db.Get("/by_sender/{wallet}", s.handleBySender)
			db.Get("/range", s.handleRange)
			db.Post("/insert", s.handleInsert)
			db.Post("/update_by_timestamp/{ts}", s.handleUpdate)
			db.Post("/delete_by_timestamp/{ts}", s.handleDelete)
		})

		api.Route("/graph", func(g chi.Router) {
			g.Get("/neighbors/{wallet}", s.handleNeighbors)
			g.Get("/bfs/{wallet}", s.handleBFS)
			g.Get("/dfs/{wallet}", s.handleDFS)
			g.Get("/top_tokens/{wallet}", s.handleTopTokens)
			g.Get("/wallet_summary/{wallet}", s.handleWalletSummary)
			g.Get("/top_counterparties/{wallet}", s.handleTopCounterparties)
			g.Get("/shortest_path", s.handleShortestPath)
		})

		api.Route("/stats", func(st chi.Router) {
			st.Get("/pair_stats", s.handlePairStats)
			st.Get("/wallet_currency_breakdown/{wallet}", s.handleCurrencyBreakdown)
			st.Get("/top_wallet_by_currency", s.handleTopWalletByCurrency)
			st.Get("/amount_usd_analytics", s.handleAmountAnalytics)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
