package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEDGERDB_DATASET_SOURCE", "local")
	t.Setenv("LEDGERDB_DATASET_ROOT", dir)
	t.Setenv("LEDGERDB_LOG_LEVEL", "error")
	return dir
}

func TestGenerateThenLoad(t *testing.T) {
	dir := isolate(t)
	ctx := t.Context()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"generate", "-env", "", "-dataset", "tx.csv.zst", "-n", "500", "-wallets", "20"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "wrote 500 records")

	info, err := os.Stat(filepath.Join(dir, "tx.csv.zst"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	stdout.Reset()
	err = run(ctx, []string{"load", "-env", "", "-dataset", "tx.csv.zst"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "rows=500 inserted=500 skipped=0")
	assert.Contains(t, out, "records=500")
}

func TestLoadRequiresDataset(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"load", "-env", ""}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dataset name")
}

func TestLoadMissingDataset(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	err := run(t.Context(), []string{"load", "-env", "", "-dataset", "absent.csv"}, &stdout, &stderr)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestServeStopsOnCancel(t *testing.T) {
	isolate(t)
	t.Setenv("LEDGERDB_LISTEN", "127.0.0.1:0")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"serve", "-env", ""}, &stdout, &stderr)
	assert.NoError(t, err)
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(t.Context(), []string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "usage: ledgerdb")

	err := run(t.Context(), []string{"compact"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "compact"`)

	err = run(t.Context(), nil, &stdout, &stderr)
	require.Error(t, err)
}
