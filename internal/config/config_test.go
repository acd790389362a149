package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "ledgerdb.yaml", `
server:
  listen: ":9090"
  maxInFlight: 8
log:
  level: debug
  format: json
dataset:
  source: minio
  bucket: datasets
  name: tx.csv.zst
minio:
  endpoint: localhost:9000
engine:
  eagerGraph: true
  progressInterval: 1s
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, int64(8), cfg.Server.MaxInFlight)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, SourceMinIO, cfg.Dataset.Source)
	assert.Equal(t, "tx.csv.zst", cfg.Dataset.Name)
	assert.True(t, cfg.Engine.EagerGraph)
	assert.Equal(t, time.Second, cfg.Engine.ProgressInterval)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "bad.yaml", "server:\n  lsten: \":1\"\n")
	_, err := Load(path, "")
	assert.ErrorContains(t, err, "decode config")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "ledgerdb.yaml", "server:\n  listen: \":9090\"\n")
	t.Setenv("LEDGERDB_LISTEN", ":7070")
	t.Setenv("LEDGERDB_DATASET_SOURCE", "s3")
	t.Setenv("LEDGERDB_DATASET_BUCKET", "bucket")
	t.Setenv("LEDGERDB_EAGER_GRAPH", "true")
	t.Setenv("LEDGERDB_REQUESTS_PER_SECOND", "2.5")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, SourceS3, cfg.Dataset.Source)
	assert.True(t, cfg.Engine.EagerGraph)
	assert.Equal(t, 2.5, cfg.Server.RequestsPerSecond)
}

func TestEnvFile(t *testing.T) {
	// Registered with t.Setenv so the variables godotenv sets are restored.
	t.Setenv("LEDGERDB_LOG_LEVEL", "")
	os.Unsetenv("LEDGERDB_LOG_LEVEL")
	t.Setenv("LEDGERDB_METRICS_NAMESPACE", "explicit")

	env := writeFile(t, ".env", "LEDGERDB_LOG_LEVEL=warn\nLEDGERDB_METRICS_NAMESPACE=fromfile\n")
	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "explicit", cfg.Metrics.Namespace, "process env wins over .env")

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestEnvParseErrors(t *testing.T) {
	t.Setenv("LEDGERDB_EAGER_GRAPH", "maybe")
	t.Setenv("LEDGERDB_MAX_IN_FLIGHT", "many")
	_, err := Load("", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "LEDGERDB_EAGER_GRAPH")
	assert.ErrorContains(t, err, "LEDGERDB_MAX_IN_FLIGHT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{"ok", func(*Config) {}, nil},
		{"empty listen", func(c *Config) { c.Server.Listen = " " }, []string{"server.listen"}},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, []string{"log.level"}},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, []string{"log.format"}},
		{"unknown source", func(c *Config) { c.Dataset.Source = "ftp" }, []string{"dataset.source"}},
		{"minio needs endpoint and bucket", func(c *Config) { c.Dataset.Source = SourceMinIO }, []string{"minio.endpoint", "dataset.bucket"}},
		{"bad timezone", func(c *Config) { c.Dataset.Timezone = "Mars/Olympus" }, []string{"dataset.timezone"}},
		{"burst", func(c *Config) { c.Server.RequestsPerSecond = 1; c.Server.Burst = 0 }, []string{"server.burst"}},
		{"several at once", func(c *Config) {
			c.Server.MaxInFlight = -1
			c.Engine.InitialCapacity = -1
		}, []string{"server.maxInFlight", "engine.initialCapacity"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			for _, w := range tt.want {
				assert.ErrorContains(t, err, w)
			}
		})
	}
}
