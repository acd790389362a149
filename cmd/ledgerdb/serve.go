package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ledgerdb"
	"github.com/hupe1980/ledgerdb/internal/config"
	"github.com/hupe1980/ledgerdb/internal/httpapi"
	"github.com/hupe1980/ledgerdb/metric"
	"github.com/hupe1980/ledgerdb/resource"
)

func serve(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	opts := engineOptions(cfg.Engine, logger)
	var prom *metric.Prometheus
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom = metric.NewPrometheus(reg, cfg.Metrics.Namespace)
		opts = append(opts, ledgerdb.WithMetricsCollector(prom))
	}
	db := ledgerdb.New(opts...)

	store, source, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.Dataset.Name != "" {
		if _, err := loadDataset(ctx, db, store, cfg.Dataset, logger.WithSource(source)); err != nil {
			return err
		}
		source += "/" + cfg.Dataset.Name
	}
	loc, err := cfg.Dataset.Location()
	if err != nil {
		return err
	}

	api := httpapi.New(httpapi.Config{
		DB:       db,
		Source:   source,
		Location: loc,
		Logger:   logger,
		Metrics:  prom,
		Limiter:  limiter(cfg.Server),
	})
	return listenAndServe(ctx, cfg.Server, api.Handler(), logger)
}

func limiter(cfg config.ServerConfig) *resource.Controller {
	if cfg.MaxInFlight == 0 && cfg.RequestsPerSecond == 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MaxInFlight:       cfg.MaxInFlight,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
}

// listenAndServe runs the server until ctx is done, then shuts it down
// within the configured timeout.
func listenAndServe(ctx context.Context, cfg config.ServerConfig, h http.Handler, logger *ledgerdb.Logger) error {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		logger.InfoContext(shutdownCtx, "shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	})
	return g.Wait()
}
