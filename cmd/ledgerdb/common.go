package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hupe1980/ledgerdb"
	"github.com/hupe1980/ledgerdb/blobstore"
	minioblob "github.com/hupe1980/ledgerdb/blobstore/minio"
	s3blob "github.com/hupe1980/ledgerdb/blobstore/s3"
	"github.com/hupe1980/ledgerdb/ingest"
	"github.com/hupe1980/ledgerdb/internal/config"
	"github.com/hupe1980/ledgerdb/resource"
)

// commonFlags are shared by every subcommand.
type commonFlags struct {
	config  string
	envFile string
	dataset string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "path to a YAML configuration file")
	fs.StringVar(&c.envFile, "env", ".env", "path to an optional .env file")
	fs.StringVar(&c.dataset, "dataset", "", "dataset object name (overrides dataset.name)")
}

func (c *commonFlags) load() (config.Config, error) {
	cfg, err := config.Load(c.config, c.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if c.dataset != "" {
		cfg.Dataset.Name = c.dataset
	}
	return cfg, nil
}

// newLogger builds the process logger. The returned closer flushes a log file.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*ledgerdb.Logger, io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	var (
		w      io.Writer = stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w, closer = lj, lj
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return ledgerdb.NewLogger(slog.NewJSONHandler(w, opts)), closer, nil
	}
	return ledgerdb.NewLogger(slog.NewTextHandler(w, opts)), closer, nil
}

// openStore connects to the configured dataset source and describes it.
func openStore(ctx context.Context, cfg config.Config) (blobstore.Store, string, error) {
	ds := cfg.Dataset
	switch ds.Source {
	case config.SourceLocal:
		return blobstore.NewLocalStore(ds.Root), "local:" + ds.Root, nil
	case config.SourceMinIO:
		client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(minioblob.Wrap(client), ds.Bucket, ds.Prefix),
			"minio:" + ds.Bucket + "/" + ds.Prefix, nil
	case config.SourceS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return nil, "", fmt.Errorf("aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			}
			o.UsePathStyle = cfg.S3.UsePathStyle
		})
		return s3blob.NewStore(client, ds.Bucket, ds.Prefix), "s3:" + ds.Bucket + "/" + ds.Prefix, nil
	default:
		return nil, "", fmt.Errorf("unknown dataset source %q", ds.Source)
	}
}

func engineOptions(cfg config.EngineConfig, logger *ledgerdb.Logger) []ledgerdb.Option {
	opts := []ledgerdb.Option{
		ledgerdb.WithLogger(logger),
		ledgerdb.WithProgressInterval(cfg.ProgressInterval),
		ledgerdb.WithInitialCapacity(cfg.InitialCapacity),
	}
	if cfg.EagerGraph {
		opts = append(opts, ledgerdb.WithEagerGraphRebuild())
	}
	return opts
}

// loadDataset streams the configured dataset into db.
func loadDataset(ctx context.Context, db *ledgerdb.DB, store blobstore.Store, cfg config.DatasetConfig, logger *ledgerdb.Logger) (ledgerdb.LoadStats, error) {
	loc, err := cfg.Location()
	if err != nil {
		return ledgerdb.LoadStats{}, err
	}
	raw, err := blobstore.OpenReader(ctx, store, cfg.Name)
	if err != nil {
		return ledgerdb.LoadStats{}, fmt.Errorf("open dataset %q: %w", cfg.Name, err)
	}
	defer raw.Close()

	rc := resource.NewController(resource.Config{IOBytesPerSec: cfg.IOBytesPerSec})
	r, err := ingest.Decompress(cfg.Name, resource.NewRateLimitedReader(ctx, raw, rc))
	if err != nil {
		return ledgerdb.LoadStats{}, fmt.Errorf("decompress dataset %q: %w", cfg.Name, err)
	}
	defer r.Close()

	rd := ingest.NewReader(r,
		ingest.WithTimestampColumn(cfg.TimestampColumn),
		ingest.WithLocation(loc),
	)
	if _, err := rd.Header(); err != nil {
		return ledgerdb.LoadStats{}, fmt.Errorf("read header of %q: %w", cfg.Name, err)
	}
	if !rd.HasColumn(cfg.TimestampColumn) {
		logger.WarnContext(ctx, "timestamp column missing; every row will be skipped",
			"column", cfg.TimestampColumn,
		)
	}
	return db.Load(ctx, rd.Rows())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "ledgerdb: close:", err)
	}
}
