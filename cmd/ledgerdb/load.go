package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/hupe1980/ledgerdb"
)

func load(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
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
	if cfg.Dataset.Name == "" {
		return errors.New("load: no dataset name configured")
	}
	logger, closer, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	store, source, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	db := ledgerdb.New(engineOptions(cfg.Engine, logger)...)
	ls, err := loadDataset(ctx, db, store, cfg.Dataset, logger.WithSource(source))
	if err != nil {
		return err
	}

	st := db.Stats()
	g := db.Graph()
	fmt.Fprintf(stdout, "rows=%d inserted=%d skipped=%d duration=%s\n", ls.Rows, ls.Inserted, ls.Skipped, ls.Duration)
	fmt.Fprintf(stdout, "records=%d timestamps=%d tokens=%d senders=%d\n", st.Live, st.TimestampKeys, st.TokenKeys, st.SenderKeys)
	fmt.Fprintf(stdout, "wallets=%d edges=%d\n", g.NodeCount(), g.EdgeCount())
	if lo, hi, ok := db.TimeBounds(); ok {
		fmt.Fprintf(stdout, "from=%d to=%d\n", lo, hi)
	}
	return nil
}
