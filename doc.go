// Package ledgerdb provides an embedded, in-memory store for crypto
// transaction records.
//
// Records are kept in a slot array addressed by a stable, never reused id.
// Three AVL indexes (timestamp, token, sender wallet) stay consistent with the
// live records across inserts, updates and deletes, and a directed wallet
// graph derived from the same records answers traversal and ranking queries.
//
// # Quick Start
//
//	ctx := context.Background()
//	db := ledgerdb.New(ledgerdb.WithLogger(ledgerdb.NewTextLogger(nil, slog.LevelInfo)))
//
//	id, _ := db.Insert(ctx, model.Fields{
//	    Timestamp:  1704067200,
//	    Token:      "BTC",
//	    Volume:     5,
//	    WalletFrom: "A",
//	    WalletTo:   "B",
//	})
//
//	ids, _ := db.RangeByTimestamp(1704067200, 1704070800)
//	order, _ := db.BFS("A")
//	top, _ := db.TopTokens("A", 3)
//
// # Loading Datasets
//
// The ingest package decodes CSV exports into records; Load consumes its row
// sequence and skips malformed rows:
//
//	f, _ := os.Open("transactions.csv")
//	st, err := db.Load(ctx, ingest.NewReader(f).Rows())
//
// # Graph Consistency
//
// The wallet graph grows with every insert. Updates and deletes mark it stale
// and it is re-derived from the live records on the next graph read, or
// immediately with WithEagerGraphRebuild.
//
// # Concurrency
//
// A DB is single-writer: callers sharing one must serialize every call,
// including reads, which may rebuild the graph.
package ledgerdb
