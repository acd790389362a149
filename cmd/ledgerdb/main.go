// Command ledgerdb loads a transaction dataset into memory and serves the
// query API.
//
//	ledgerdb serve    [-config file] [-env file] [-dataset name]
//	ledgerdb load     [-config file] [-env file] [-dataset name]
//	ledgerdb generate [-config file] [-env file] -dataset name [-n rows] [-seed n] [-wallets n]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "ledgerdb:", err)
		os.Exit(1)
	}
}

const usage = `usage: ledgerdb <command> [flags]

commands:
  serve     load the configured dataset and serve the HTTP API
  load      load the configured dataset and print a summary
  generate  write a synthetic dataset to the configured store
`

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}
	switch cmd, rest := args[0], args[1:]; cmd {
	case "serve":
		return serve(ctx, rest, stderr)
	case "load":
		return load(ctx, rest, stdout, stderr)
	case "generate":
		return generate(ctx, rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
