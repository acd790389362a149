package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/ledgerdb/blobstore"
	"github.com/hupe1980/ledgerdb/ingest"
	"github.com/hupe1980/ledgerdb/testutil"
)

func generate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	n := fs.Int("n", 100_000, "number of records")
	seed := fs.Int64("seed", 42, "random seed")
	wallets := fs.Int("wallets", 100, "number of distinct wallets")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}
	name := cfg.Dataset.Name
	if name == "" {
		return errors.New("generate: no dataset name configured")
	}
	loc, err := cfg.Dataset.Location()
	if err != nil {
		return err
	}

	store, source, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	ws, ok := store.(blobstore.WritableStore)
	if !ok {
		return fmt.Errorf("generate: %s is read-only", source)
	}
	out, err := ws.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := writeDataset(out, name, *n, *seed, *wallets, loc); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d records to %s/%s\n", *n, source, name)
	return nil
}

func writeDataset(w io.Writer, name string, n int, seed int64, wallets int, loc *time.Location) error {
	zw, err := ingest.Compress(name, w)
	if err != nil {
		return err
	}
	cw := ingest.NewWriter(zw, loc)
	gen := testutil.NewGenerator(testutil.NewRNG(seed), testutil.GeneratorConfig{Wallets: wallets})
	for range n {
		if err := cw.Write(gen.Next()); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := cw.Flush(); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}
