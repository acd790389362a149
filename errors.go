package ledgerdb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ledgerdb/graph"
	"github.com/hupe1980/ledgerdb/internal/index"
	"github.com/hupe1980/ledgerdb/internal/store"
)

var (
	// ErrNotFound is returned for unknown or deleted records and unknown
	// wallets.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRange is returned when a range has start > end.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidRecord is returned when record fields fail validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrTombstoned) ||
		errors.Is(err, graph.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if errors.Is(err, index.ErrInvalidRange) {
		return fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	if errors.Is(err, index.ErrInvalidField) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return err
}
