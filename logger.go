package ledgerdb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/ledgerdb/model"
)

// Logger wraps slog.Logger with ledgerdb-specific helpers so that every
// operation logs with the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON to w at the given level.
// A nil w means stderr.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
// A nil w means stderr.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithID adds a record id field.
func (l *Logger) WithID(id model.ID) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", uint64(id)),
	}
}

// WithWallet adds a wallet field.
func (l *Logger) WithWallet(wallet string) *Logger {
	return &Logger{
		Logger: l.Logger.With("wallet", wallet),
	}
}

// WithSource adds a dataset source field.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", source),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, id model.ID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"id", uint64(id),
		)
	}
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, id model.ID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"id", uint64(id),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"id", uint64(id),
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, id model.ID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"id", uint64(id),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"id", uint64(id),
		)
	}
}

// LogLoadProgress logs an in-flight bulk load.
func (l *Logger) LogLoadProgress(ctx context.Context, rows, inserted int) {
	l.InfoContext(ctx, "load progress",
		"rows", rows,
		"inserted", inserted,
	)
}

// LogLoad logs the end of a bulk load.
func (l *Logger) LogLoad(ctx context.Context, st LoadStats, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "load failed",
			"rows", st.Rows,
			"inserted", st.Inserted,
			"error", err,
		)
	case st.Skipped > 0:
		l.WarnContext(ctx, "load completed with skipped rows",
			"rows", st.Rows,
			"inserted", st.Inserted,
			"skipped", st.Skipped,
			"duration", st.Duration,
		)
	default:
		l.InfoContext(ctx, "load completed",
			"rows", st.Rows,
			"inserted", st.Inserted,
			"duration", st.Duration,
		)
	}
}

// LogGraphRebuild logs a re-derivation of the wallet graph.
func (l *Logger) LogGraphRebuild(ctx context.Context, nodes, edges int, d time.Duration) {
	l.InfoContext(ctx, "graph rebuilt",
		"nodes", nodes,
		"edges", edges,
		"duration", d,
	)
}
