// Package index maintains the secondary indexes over the record store.
//
// A Manager owns the store and three ordered indexes (timestamp, token,
// sender wallet). Every mutation goes through the Manager, which keeps each
// index equal to the live contents of the store for its field.
package index

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/hupe1980/ledgerdb/internal/avl"
	"github.com/hupe1980/ledgerdb/internal/store"
	"github.com/hupe1980/ledgerdb/model"
)

var (
	// ErrInvalidRange is returned when a range query has start > end.
	ErrInvalidRange = errors.New("index: invalid range")
	// ErrInvalidField is returned when a record fails validation.
	ErrInvalidField = errors.New("index: invalid field")
)

// Manager keeps the record store and its secondary indexes consistent.
type Manager struct {
	store    *store.Store
	byTime   *avl.Tree[int64, model.ID]
	byToken  *avl.Tree[string, model.ID]
	bySender *avl.Tree[string, model.ID]
}

// NewManager creates an empty manager. capacity pre-sizes the record store.
func NewManager(capacity int) *Manager {
	return &Manager{
		store:    store.New(capacity),
		byTime:   avl.New[int64, model.ID](),
		byToken:  avl.New[string, model.ID](),
		bySender: avl.New[string, model.ID](),
	}
}

// Validate checks the fields the indexes and the relationship graph rely on.
func Validate(f model.Fields) error {
	var errs []error
	if f.Token == "" {
		errs = append(errs, fmt.Errorf("%w: token is empty", ErrInvalidField))
	}
	if f.WalletFrom == "" {
		errs = append(errs, fmt.Errorf("%w: wallet_from is empty", ErrInvalidField))
	}
	if f.WalletTo == "" {
		errs = append(errs, fmt.Errorf("%w: wallet_to is empty", ErrInvalidField))
	}
	if math.IsNaN(f.Volume) || math.IsInf(f.Volume, 0) {
		errs = append(errs, fmt.Errorf("%w: volume is not finite", ErrInvalidField))
	}
	if math.IsNaN(f.Price) || math.IsInf(f.Price, 0) {
		errs = append(errs, fmt.Errorf("%w: price is not finite", ErrInvalidField))
	}
	return errors.Join(errs...)
}

// Insert appends a record and indexes it. Fields are validated before any
// mutation, so a failed insert leaves no partial state behind.
func (m *Manager) Insert(f model.Fields) (model.ID, error) {
	if err := Validate(f); err != nil {
		return 0, err
	}
	id := m.store.Append(f)
	m.byTime.Insert(f.Timestamp, id)
	m.byToken.Insert(f.Token, id)
	m.bySender.Insert(f.WalletFrom, id)
	return id, nil
}

// Delete removes id from every index and tombstones it. It fails with
// store.ErrNotFound or store.ErrTombstoned and then mutates nothing.
func (m *Manager) Delete(id model.ID) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return err
	}
	m.byTime.Remove(rec.Timestamp, id)
	m.byToken.Remove(rec.Token, id)
	m.bySender.Remove(rec.WalletFrom, id)
	return m.store.Tombstone(id)
}

// Update replaces the fields of id. Only indexes whose field value changed
// are touched; the old entry is removed before the new one is inserted.
func (m *Manager) Update(id model.ID, f model.Fields) (model.Record, error) {
	old, err := m.store.Get(id)
	if err != nil {
		return model.Record{}, err
	}
	if err := Validate(f); err != nil {
		return model.Record{}, err
	}
	if old.Timestamp != f.Timestamp {
		m.byTime.Remove(old.Timestamp, id)
		m.byTime.Insert(f.Timestamp, id)
	}
	if old.Token != f.Token {
		m.byToken.Remove(old.Token, id)
		m.byToken.Insert(f.Token, id)
	}
	if old.WalletFrom != f.WalletFrom {
		m.bySender.Remove(old.WalletFrom, id)
		m.bySender.Insert(f.WalletFrom, id)
	}
	if err := m.store.Replace(id, f); err != nil {
		return model.Record{}, err
	}
	return old, nil
}

// Get returns the live record for id.
func (m *Manager) Get(id model.ID) (model.Record, error) {
	return m.store.Get(id)
}

// ScanTimestamp lazily yields the IDs with start <= timestamp <= end, ordered
// by timestamp and then by insertion order. Inverted bounds yield nothing.
func (m *Manager) ScanTimestamp(start, end int64) iter.Seq[model.ID] {
	return m.byTime.RangeValues(start, end)
}

// RangeByTimestamp collects ScanTimestamp. It fails with ErrInvalidRange when
// start > end.
func (m *Manager) RangeByTimestamp(start, end int64) ([]model.ID, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start %d > end %d", ErrInvalidRange, start, end)
	}
	var ids []model.ID
	for id := range m.byTime.RangeValues(start, end) {
		ids = append(ids, id)
	}
	return ids, nil
}

// ByTimestamp returns the IDs recorded at exactly ts.
func (m *Manager) ByTimestamp(ts int64) []model.ID {
	return m.byTime.Lookup(ts)
}

// ByToken returns the IDs of records for token.
func (m *Manager) ByToken(token string) []model.ID {
	return m.byToken.Lookup(token)
}

// BySender returns the IDs of records sent from wallet.
func (m *Manager) BySender(wallet string) []model.ID {
	return m.bySender.Lookup(wallet)
}

// Records yields copies of the live records in ID order.
func (m *Manager) Records() iter.Seq[model.Record] {
	return m.store.All()
}

// Scan yields the live records without copying; see store.Store.Scan.
func (m *Manager) Scan() iter.Seq[model.Record] {
	return m.store.Scan()
}

// Stats describes the sizes of the store and its indexes.
type Stats struct {
	Live          int
	Slots         int
	Tombstones    int
	TimestampKeys int
	TokenKeys     int
	SenderKeys    int
}

// Stats returns the current sizes.
func (m *Manager) Stats() Stats {
	return Stats{
		Live:          m.store.Live(),
		Slots:         m.store.Slots(),
		Tombstones:    m.store.Slots() - m.store.Live(),
		TimestampKeys: m.byTime.Len(),
		TokenKeys:     m.byToken.Len(),
		SenderKeys:    m.bySender.Len(),
	}
}

// Tokens yields the distinct indexed tokens in ascending order.
func (m *Manager) Tokens() iter.Seq[string] {
	return m.byToken.Keys()
}

// TimeBounds returns the smallest and largest indexed timestamps.
func (m *Manager) TimeBounds() (lo, hi int64, ok bool) {
	lo, ok = m.byTime.Min()
	if !ok {
		return 0, 0, false
	}
	hi, _ = m.byTime.Max()
	return lo, hi, true
}
