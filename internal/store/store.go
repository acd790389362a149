// Package store implements the primary record store: an append-only slot
// array addressed by record ID, with tombstones instead of physical deletion.
package store

import (
	"errors"
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/ledgerdb/model"
)

var (
	// ErrNotFound is returned for IDs that were never assigned.
	ErrNotFound = errors.New("store: record not found")
	// ErrTombstoned is returned for IDs whose record has been deleted.
	ErrTombstoned = errors.New("store: record tombstoned")
)

// slot is either a live record or a tombstone.
type slot struct {
	fields model.Fields
	live   bool
}

// Store holds records by ID.
//
// The slot count only grows: a tombstoned slot keeps its ID reserved forever,
// so IDs handed out once never resolve to a different record.
type Store struct {
	slots      []slot
	tombstones *roaring64.Bitmap
}

// New creates a store with room for capacity records before it reallocates.
func New(capacity int) *Store {
	return &Store{
		slots:      make([]slot, 0, max(capacity, 0)),
		tombstones: roaring64.New(),
	}
}

// Append stores a live record and returns its ID. O(1) amortized.
func (s *Store) Append(f model.Fields) model.ID {
	s.slots = append(s.slots, slot{fields: f.Clone(), live: true})
	return model.ID(len(s.slots) - 1)
}

// NextID returns the ID the next Append will assign.
func (s *Store) NextID() model.ID {
	return model.ID(len(s.slots))
}

func (s *Store) slot(id model.ID) (*slot, error) {
	if id >= model.ID(len(s.slots)) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, uint64(id))
	}
	return &s.slots[id], nil
}

// Get returns the record for id. It fails with ErrNotFound if id was never
// assigned and with ErrTombstoned if the record has been deleted.
func (s *Store) Get(id model.ID) (model.Record, error) {
	sl, err := s.slot(id)
	if err != nil {
		return model.Record{}, err
	}
	if !sl.live {
		return model.Record{}, fmt.Errorf("%w: %d", ErrTombstoned, uint64(id))
	}
	return model.Record{ID: id, Fields: sl.fields.Clone()}, nil
}

// IsLive reports whether id resolves to a live record.
func (s *Store) IsLive(id model.ID) bool {
	return id < model.ID(len(s.slots)) && s.slots[id].live
}

// Tombstone marks id deleted. It fails with ErrNotFound if id was never
// assigned and is a no-op for an already tombstoned id.
func (s *Store) Tombstone(id model.ID) error {
	sl, err := s.slot(id)
	if err != nil {
		return err
	}
	if !sl.live {
		return nil
	}
	sl.live = false
	sl.fields = model.Fields{}
	s.tombstones.Add(uint64(id))
	return nil
}

// Replace overwrites the fields of a live record in place.
func (s *Store) Replace(id model.ID, f model.Fields) error {
	sl, err := s.slot(id)
	if err != nil {
		return err
	}
	if !sl.live {
		return fmt.Errorf("%w: %d", ErrTombstoned, uint64(id))
	}
	sl.fields = f.Clone()
	return nil
}

// Slots returns the number of assigned IDs, live or tombstoned.
func (s *Store) Slots() int {
	return len(s.slots)
}

// Live returns the number of live records.
func (s *Store) Live() int {
	return len(s.slots) - int(s.tombstones.GetCardinality()) //nolint:gosec // bounded by len(slots)
}

// Tombstones returns a copy of the set of tombstoned IDs.
func (s *Store) Tombstones() *roaring64.Bitmap {
	return s.tombstones.Clone()
}

// All yields copies of the live records in ID order. The store must not be
// mutated during iteration.
func (s *Store) All() iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		for rec := range s.Scan() {
			rec.Fields = rec.Fields.Clone()
			if !yield(rec) {
				return
			}
		}
	}
}

// Scan is like All but shares the stored Extra maps with the caller, which
// must treat every record as read-only.
func (s *Store) Scan() iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		for i := range s.slots {
			if !s.slots[i].live {
				continue
			}
			if !yield(model.Record{ID: model.ID(i), Fields: s.slots[i].fields}) {
				return
			}
		}
	}
}
