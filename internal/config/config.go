// Package config loads the ledgerdb binary configuration from a YAML file,
// an optional .env file and LEDGERDB_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEDGERDB_"

// Dataset sources.
const (
	SourceLocal = "local"
	SourceMinIO = "minio"
	SourceS3    = "s3"
)

type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// MaxInFlight bounds concurrently admitted requests. 0 disables the bound.
	MaxInFlight int64 `yaml:"maxInFlight"`
	// RequestsPerSecond limits admitted requests. 0 disables the limit.
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File enables size-based rotation when set; empty logs to stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

type DatasetConfig struct {
	Source string `yaml:"source"`
	// Root is the local directory for the local source.
	Root string `yaml:"root"`
	// Bucket and Prefix address the object store sources.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// Name is the object to load, relative to Root or Prefix. Empty starts
	// with an empty database.
	Name            string `yaml:"name"`
	TimestampColumn string `yaml:"timestampColumn"`
	Timezone        string `yaml:"timezone"`
	// IOBytesPerSec throttles dataset reads. 0 is unlimited.
	IOBytesPerSec int64 `yaml:"ioBytesPerSec"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSSL"`
}

type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

type EngineConfig struct {
	EagerGraph       bool          `yaml:"eagerGraph"`
	ProgressInterval time.Duration `yaml:"progressInterval"`
	InitialCapacity  int           `yaml:"initialCapacity"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Dataset DatasetConfig `yaml:"dataset"`
	MinIO   MinIOConfig   `yaml:"minio"`
	S3      S3Config      `yaml:"s3"`
	Engine  EngineConfig  `yaml:"engine"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:          ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Burst:           1,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "ledgerdb",
		},
		Dataset: DatasetConfig{
			Source:          SourceLocal,
			Root:            "data",
			TimestampColumn: "timestamp",
			Timezone:        "UTC",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Engine: EngineConfig{
			ProgressInterval: 5 * time.Second,
		},
	}
}

// Load builds the configuration. An empty path skips the YAML file and an
// empty envFile skips the .env file; a missing envFile is not an error.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}
	if envFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) stringVar(key string, dst *string) {
	if v, ok := e.lookup(EnvPrefix + key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (e *envReader) boolVar(key string, dst *bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = b
}

func (e *envReader) int64Var(key string, dst *int64) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = n
}

func (e *envReader) intVar(key string, dst *int) {
	n := int64(*dst)
	e.int64Var(key, &n)
	*dst = int(n)
}

func (e *envReader) floatVar(key string, dst *float64) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = f
}

func (e *envReader) durationVar(key string, dst *time.Duration) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = d
}

func (cfg *Config) applyEnv(lookup lookupFunc) error {
	e := &envReader{lookup: lookup}

	e.stringVar("LISTEN", &cfg.Server.Listen)
	e.durationVar("READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.durationVar("WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.durationVar("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	e.int64Var("MAX_IN_FLIGHT", &cfg.Server.MaxInFlight)
	e.floatVar("REQUESTS_PER_SECOND", &cfg.Server.RequestsPerSecond)
	e.intVar("BURST", &cfg.Server.Burst)

	e.stringVar("LOG_LEVEL", &cfg.Log.Level)
	e.stringVar("LOG_FORMAT", &cfg.Log.Format)
	e.stringVar("LOG_FILE", &cfg.Log.File)

	e.boolVar("METRICS_ENABLED", &cfg.Metrics.Enabled)
	e.stringVar("METRICS_NAMESPACE", &cfg.Metrics.Namespace)

	e.stringVar("DATASET_SOURCE", &cfg.Dataset.Source)
	e.stringVar("DATASET_ROOT", &cfg.Dataset.Root)
	e.stringVar("DATASET_BUCKET", &cfg.Dataset.Bucket)
	e.stringVar("DATASET_PREFIX", &cfg.Dataset.Prefix)
	e.stringVar("DATASET_NAME", &cfg.Dataset.Name)
	e.stringVar("DATASET_TIMESTAMP_COLUMN", &cfg.Dataset.TimestampColumn)
	e.stringVar("DATASET_TIMEZONE", &cfg.Dataset.Timezone)
	e.int64Var("DATASET_IO_BYTES_PER_SEC", &cfg.Dataset.IOBytesPerSec)

	e.stringVar("MINIO_ENDPOINT", &cfg.MinIO.Endpoint)
	e.stringVar("MINIO_ACCESS_KEY", &cfg.MinIO.AccessKey)
	e.stringVar("MINIO_SECRET_KEY", &cfg.MinIO.SecretKey)
	e.boolVar("MINIO_USE_SSL", &cfg.MinIO.UseSSL)

	e.stringVar("S3_REGION", &cfg.S3.Region)
	e.stringVar("S3_ENDPOINT", &cfg.S3.Endpoint)
	e.boolVar("S3_USE_PATH_STYLE", &cfg.S3.UsePathStyle)

	e.boolVar("EAGER_GRAPH", &cfg.Engine.EagerGraph)
	e.durationVar("PROGRESS_INTERVAL", &cfg.Engine.ProgressInterval)
	e.intVar("INITIAL_CAPACITY", &cfg.Engine.InitialCapacity)

	return errors.Join(e.errs...)
}

// Validate reports every invalid setting at once.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		errs = append(errs, errors.New("server.listen must not be empty"))
	}
	if cfg.Server.MaxInFlight < 0 {
		errs = append(errs, errors.New("server.maxInFlight must not be negative"))
	}
	if cfg.Server.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("server.requestsPerSecond must not be negative"))
	}
	if cfg.Server.RequestsPerSecond > 0 && cfg.Server.Burst < 1 {
		errs = append(errs, errors.New("server.burst must be at least 1 when rate limiting"))
	}
	if _, err := cfg.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", cfg.Log.Format))
	}
	switch cfg.Dataset.Source {
	case SourceLocal:
		if cfg.Dataset.Root == "" {
			errs = append(errs, errors.New("dataset.root is required for the local source"))
		}
	case SourceMinIO:
		if cfg.MinIO.Endpoint == "" {
			errs = append(errs, errors.New("minio.endpoint is required for the minio source"))
		}
		if cfg.Dataset.Bucket == "" {
			errs = append(errs, errors.New("dataset.bucket is required for the minio source"))
		}
	case SourceS3:
		if cfg.Dataset.Bucket == "" {
			errs = append(errs, errors.New("dataset.bucket is required for the s3 source"))
		}
	default:
		errs = append(errs, fmt.Errorf("dataset.source %q must be local, minio or s3", cfg.Dataset.Source))
	}
	if _, err := cfg.Dataset.Location(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Dataset.IOBytesPerSec < 0 {
		errs = append(errs, errors.New("dataset.ioBytesPerSec must not be negative"))
	}
	if cfg.Engine.InitialCapacity < 0 {
		errs = append(errs, errors.New("engine.initialCapacity must not be negative"))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return level, nil
}

// Location resolves Timezone.
func (d DatasetConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dataset.timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}
