package ledgerdb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/time/rate"

	"github.com/hupe1980/ledgerdb/graph"
	"github.com/hupe1980/ledgerdb/ingest"
	"github.com/hupe1980/ledgerdb/internal/index"
	"github.com/hupe1980/ledgerdb/model"
	"github.com/hupe1980/ledgerdb/stats"
)

// DB is an in-memory transaction store with secondary indexes and a derived
// wallet graph. It is not safe for concurrent use; callers that share a DB
// must serialize access.
type DB struct {
	idx   *index.Manager
	g     *graph.Graph
	stale bool
	opts  options
}

// New creates an empty DB.
func New(optFns ...Option) *DB {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DB{
		idx:  index.NewManager(opts.capacity),
		g:    graph.New(),
		opts: opts,
	}
}

// Insert validates and stores f, indexes it and adds it to the wallet graph.
func (db *DB) Insert(ctx context.Context, f model.Fields) (model.ID, error) {
	start := time.Now()
	id, err := db.idx.Insert(f)
	err = translateError(err)
	if err == nil && !db.stale {
		db.g.AddRecord(f)
	}
	db.opts.metricsCollector.RecordInsert(time.Since(start), err)
	db.opts.logger.LogInsert(ctx, id, err)
	return id, err
}

// LoadStats summarizes a bulk load.
type LoadStats struct {
	// Rows counts every row seen, good or bad.
	Rows     int
	Inserted int
	// Skipped counts malformed rows and rows that failed validation.
	Skipped  int
	Duration time.Duration
}

// Load inserts every row of seq. Rows whose error wraps ingest.ErrBadRow and
// rows failing validation are skipped; any other error aborts the load.
// Records inserted before an abort or cancellation stay in the DB.
func (db *DB) Load(ctx context.Context, seq iter.Seq2[model.Fields, error]) (LoadStats, error) {
	start := time.Now()
	var st LoadStats
	progress := rate.Sometimes{Interval: db.opts.progressInterval}

	finish := func(err error) (LoadStats, error) {
		st.Duration = time.Since(start)
		db.opts.metricsCollector.RecordLoad(st.Inserted, st.Skipped, st.Duration)
		db.opts.logger.LogLoad(ctx, st, err)
		return st, err
	}

	for f, err := range seq {
		if err != nil {
			if !errors.Is(err, ingest.ErrBadRow) {
				return finish(err)
			}
			st.Rows++
			st.Skipped++
			continue
		}
		st.Rows++
		if st.Rows%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return finish(err)
			}
		}
		if _, err := db.idx.Insert(f); err != nil {
			st.Skipped++
			continue
		}
		st.Inserted++
		if !db.stale {
			db.g.AddRecord(f)
		}
		if db.opts.progressInterval > 0 && st.Rows%10_000 == 0 {
			progress.Do(func() {
				db.opts.logger.LogLoadProgress(ctx, st.Rows, st.Inserted)
			})
		}
	}
	return finish(ctx.Err())
}

// Get returns the live record for id.
func (db *DB) Get(id model.ID) (model.Record, error) {
	rec, err := db.idx.Get(id)
	return rec, translateError(err)
}

// Resolve returns the live records for ids in order, skipping ids that do
// not resolve.
func (db *DB) Resolve(ids []model.ID) []model.Record {
	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		if rec, err := db.idx.Get(id); err == nil {
			out = append(out, rec)
		}
	}
	return out
}

// Update replaces every field of id with f.
func (db *DB) Update(ctx context.Context, id model.ID, f model.Fields) error {
	start := time.Now()
	_, err := db.idx.Update(id, f)
	err = translateError(err)
	if err == nil {
		db.invalidateGraph(ctx)
	}
	db.opts.metricsCollector.RecordUpdate(time.Since(start), err)
	db.opts.logger.LogUpdate(ctx, id, err)
	return err
}

// Patch changes only the fields set in p. Extra entries are merged.
func (db *DB) Patch(ctx context.Context, id model.ID, p model.Patch) error {
	rec, err := db.idx.Get(id)
	if err != nil {
		err = translateError(err)
		db.opts.metricsCollector.RecordUpdate(0, err)
		db.opts.logger.LogUpdate(ctx, id, err)
		return err
	}
	if p.IsEmpty() {
		return nil
	}
	return db.Update(ctx, id, p.Apply(rec.Fields))
}

// Delete tombstones id. The id is never reused.
func (db *DB) Delete(ctx context.Context, id model.ID) error {
	start := time.Now()
	err := translateError(db.idx.Delete(id))
	if err == nil {
		db.invalidateGraph(ctx)
	}
	db.opts.metricsCollector.RecordDelete(time.Since(start), err)
	db.opts.logger.LogDelete(ctx, id, err)
	return err
}

// RangeByTimestamp returns the ids with start <= timestamp <= end, ordered by
// timestamp and then insertion order. It fails with ErrInvalidRange when
// start > end.
func (db *DB) RangeByTimestamp(start, end int64) ([]model.ID, error) {
	t := time.Now()
	ids, err := db.idx.RangeByTimestamp(start, end)
	err = translateError(err)
	db.opts.metricsCollector.RecordQuery("range", len(ids), time.Since(t), err)
	return ids, err
}

// ScanTimestamp is the lazy form of RangeByTimestamp. Each iteration rescans
// the index; the DB must not be mutated while iterating. Inverted bounds
// yield nothing.
func (db *DB) ScanTimestamp(start, end int64) iter.Seq[model.ID] {
	return db.idx.ScanTimestamp(start, end)
}

// ByTimestamp returns the ids recorded at exactly ts.
func (db *DB) ByTimestamp(ts int64) []model.ID {
	t := time.Now()
	ids := db.idx.ByTimestamp(ts)
	db.opts.metricsCollector.RecordQuery("by_timestamp", len(ids), time.Since(t), nil)
	return ids
}

// FirstByTimestamp returns the earliest-inserted live record at ts.
func (db *DB) FirstByTimestamp(ts int64) (model.Record, error) {
	ids := db.idx.ByTimestamp(ts)
	if len(ids) == 0 {
		return model.Record{}, fmt.Errorf("%w: no record at timestamp %d", ErrNotFound, ts)
	}
	return db.Get(ids[0])
}

// ByToken returns the ids of records for token in insertion order.
func (db *DB) ByToken(token string) []model.ID {
	t := time.Now()
	ids := db.idx.ByToken(token)
	db.opts.metricsCollector.RecordQuery("by_token", len(ids), time.Since(t), nil)
	return ids
}

// BySender returns the ids of records sent from wallet in insertion order.
func (db *DB) BySender(wallet string) []model.ID {
	t := time.Now()
	ids := db.idx.BySender(wallet)
	db.opts.metricsCollector.RecordQuery("by_sender", len(ids), time.Since(t), nil)
	return ids
}

// UpdateByTimestamp patches the first live record at ts and returns its id.
func (db *DB) UpdateByTimestamp(ctx context.Context, ts int64, p model.Patch) (model.ID, error) {
	rec, err := db.FirstByTimestamp(ts)
	if err != nil {
		return 0, err
	}
	return rec.ID, db.Patch(ctx, rec.ID, p)
}

// DeleteByTimestamp deletes the first live record at ts and returns its id.
func (db *DB) DeleteByTimestamp(ctx context.Context, ts int64) (model.ID, error) {
	rec, err := db.FirstByTimestamp(ts)
	if err != nil {
		return 0, err
	}
	return rec.ID, db.Delete(ctx, rec.ID)
}

// Records yields copies of the live records in id order.
func (db *DB) Records() iter.Seq[model.Record] {
	return db.idx.Records()
}

// Tokens yields the distinct tokens of live records in ascending order.
func (db *DB) Tokens() iter.Seq[string] {
	return db.idx.Tokens()
}

// TimeBounds returns the smallest and largest live timestamps.
func (db *DB) TimeBounds() (lo, hi int64, ok bool) {
	return db.idx.TimeBounds()
}

func (db *DB) invalidateGraph(ctx context.Context) {
	db.stale = true
	if db.opts.eagerGraph {
		db.rebuildGraph(ctx)
	}
}

func (db *DB) rebuildGraph(ctx context.Context) {
	start := time.Now()
	db.g = graph.FromRecords(db.idx.Scan())
	db.stale = false
	d := time.Since(start)
	db.opts.metricsCollector.RecordGraphRebuild(db.g.NodeCount(), db.g.EdgeCount(), d)
	db.opts.logger.LogGraphRebuild(ctx, db.g.NodeCount(), db.g.EdgeCount(), d)
}

// Graph returns the wallet graph of the live records, re-deriving it first if
// an update or delete made it stale. The graph must not be mutated.
func (db *DB) Graph() *graph.Graph {
	if db.stale {
		db.rebuildGraph(context.Background())
	}
	return db.g
}

// Neighbors returns the outgoing edges of wallet. Unknown wallets have none.
func (db *DB) Neighbors(wallet string) []graph.Neighbor {
	t := time.Now()
	nb := db.Graph().Neighbors(wallet)
	db.opts.metricsCollector.RecordQuery("neighbors", len(nb), time.Since(t), nil)
	return nb
}

// BFS returns the wallets reachable from start in breadth-first order. It
// fails with ErrNotFound for an unknown start.
func (db *DB) BFS(start string) ([]string, error) {
	t := time.Now()
	order, err := db.Graph().BFS(start)
	err = translateError(err)
	db.opts.metricsCollector.RecordQuery("bfs", len(order), time.Since(t), err)
	return order, err
}

// DFS returns the wallets reachable from start in depth-first pre-order. It
// fails with ErrNotFound for an unknown start.
func (db *DB) DFS(start string) ([]string, error) {
	t := time.Now()
	order, err := db.Graph().DFS(start)
	err = translateError(err)
	db.opts.metricsCollector.RecordQuery("dfs", len(order), time.Since(t), err)
	return order, err
}

// TopTokens returns the k tokens with the largest outgoing volume from
// wallet. It fails with ErrInvalidK for negative k.
func (db *DB) TopTokens(wallet string, k int) ([]graph.TokenVolume, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	t := time.Now()
	rows := db.Graph().TopTokens(wallet, k)
	db.opts.metricsCollector.RecordQuery("top_tokens", len(rows), time.Since(t), nil)
	return rows, nil
}

// AmountFilter restricts AmountAnalytics. Empty fields match everything.
type AmountFilter struct {
	Token    string
	Status   string
	Sender   string
	Receiver string
}

// AmountAnalytics summarizes the Price of the live records matching filter.
// Records are visited in id order, so the percentile sample is reproducible.
func (db *DB) AmountAnalytics(filter AmountFilter, opts ...stats.Option) stats.Summary {
	t := time.Now()
	acc := stats.NewAccumulator(opts...)
	add := func(rec model.Record) {
		if filter.Status != "" && rec.Status != filter.Status {
			return
		}
		if filter.Receiver != "" && rec.WalletTo != filter.Receiver {
			return
		}
		acc.Add(rec.Price)
	}

	if candidates := db.candidates(filter); candidates != nil {
		it := candidates.Iterator()
		for it.HasNext() {
			if rec, err := db.idx.Get(model.ID(it.Next())); err == nil {
				add(rec)
			}
		}
	} else {
		for rec := range db.idx.Scan() {
			add(rec)
		}
	}

	s := acc.Summary()
	db.opts.metricsCollector.RecordQuery("amount_analytics", s.Count, time.Since(t), nil)
	return s
}

// candidates intersects the posting lists of the indexed filter fields. It
// returns nil when no indexed field is filtered.
func (db *DB) candidates(filter AmountFilter) *roaring64.Bitmap {
	var bm *roaring64.Bitmap
	and := func(ids []model.ID) {
		b := roaring64.New()
		for _, id := range ids {
			b.Add(uint64(id))
		}
		if bm == nil {
			bm = b
			return
		}
		bm.And(b)
	}
	if filter.Token != "" {
		and(db.idx.ByToken(filter.Token))
	}
	if filter.Sender != "" {
		and(db.idx.BySender(filter.Sender))
	}
	return bm
}

// Stats describes the sizes of the DB.
type Stats struct {
	Live          int
	Slots         int
	Tombstones    int
	TimestampKeys int
	TokenKeys     int
	SenderKeys    int
	// Graph counts describe the current graph; GraphStale reports that it
	// will be re-derived on the next graph read.
	GraphNodes int
	GraphEdges int
	GraphTx    int
	GraphStale bool
}

// Stats returns the current sizes without re-deriving the graph.
func (db *DB) Stats() Stats {
	s := db.idx.Stats()
	return Stats{
		Live:          s.Live,
		Slots:         s.Slots,
		Tombstones:    s.Tombstones,
		TimestampKeys: s.TimestampKeys,
		TokenKeys:     s.TokenKeys,
		SenderKeys:    s.SenderKeys,
		GraphNodes:    db.g.NodeCount(),
		GraphEdges:    db.g.EdgeCount(),
		GraphTx:       db.g.TxCount(),
		GraphStale:    db.stale,
	}
}
