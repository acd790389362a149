package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ledgerdb/model"
)

func TestStoreAppendGet(t *testing.T) {
	s := New(4)

	id0 := s.Append(model.Fields{Timestamp: 100, Token: "BTC"})
	id1 := s.Append(model.Fields{Timestamp: 200, Token: "ETH"})
	assert.Equal(t, model.ID(0), id0)
	assert.Equal(t, model.ID(1), id1)
	assert.Equal(t, model.ID(2), s.NextID())

	rec, err := s.Get(id1)
	require.NoError(t, err)
	assert.Equal(t, id1, rec.ID)
	assert.Equal(t, "ETH", rec.Token)

	_, err = s.Get(7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreTombstone(t *testing.T) {
	s := New(0)
	id := s.Append(model.Fields{Token: "BTC"})
	s.Append(model.Fields{Token: "ETH"})

	require.NoError(t, s.Tombstone(id))
	assert.False(t, s.IsLive(id))

	_, err := s.Get(id)
	assert.ErrorIs(t, err, ErrTombstoned)

	// Tombstoning twice is a no-op.
	require.NoError(t, s.Tombstone(id))
	assert.ErrorIs(t, s.Tombstone(99), ErrNotFound)

	assert.Equal(t, 2, s.Slots())
	assert.Equal(t, 1, s.Live())
	assert.True(t, s.Tombstones().Contains(uint64(id)))

	// IDs are never reused.
	next := s.Append(model.Fields{Token: "BTC"})
	assert.Equal(t, model.ID(2), next)
}

func TestStoreReplace(t *testing.T) {
	s := New(0)
	id := s.Append(model.Fields{Token: "BTC", Extra: map[string]string{"k": "v"}})

	require.NoError(t, s.Replace(id, model.Fields{Token: "ETH"}))
	rec, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "ETH", rec.Token)
	assert.Nil(t, rec.Extra)

	require.NoError(t, s.Tombstone(id))
	assert.ErrorIs(t, s.Replace(id, model.Fields{}), ErrTombstoned)
	assert.ErrorIs(t, s.Replace(5, model.Fields{}), ErrNotFound)
}

func TestStoreIsolation(t *testing.T) {
	s := New(0)
	extra := map[string]string{"k": "v"}
	id := s.Append(model.Fields{Extra: extra})
	extra["k"] = "mutated"

	rec, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "v", rec.Extra["k"])

	rec.Extra["k"] = "again"
	rec, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "v", rec.Extra["k"])
}

func TestStoreAllCopies(t *testing.T) {
	s := New(0)
	id := s.Append(model.Fields{Extra: map[string]string{"note": "orig"}})

	for rec := range s.All() {
		rec.Extra["note"] = "mutated"
	}
	rec, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "orig", rec.Extra["note"])

	for rec := range s.Scan() {
		assert.Equal(t, "orig", rec.Extra["note"])
	}
}

func TestStoreAllSkipsTombstones(t *testing.T) {
	s := New(0)
	for i := range 5 {
		s.Append(model.Fields{Timestamp: int64(i)})
	}
	require.NoError(t, s.Tombstone(1))
	require.NoError(t, s.Tombstone(3))

	var ids []model.ID
	for rec := range s.All() {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []model.ID{0, 2, 4}, ids)
}
