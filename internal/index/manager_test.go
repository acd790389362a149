package index

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ledgerdb/internal/store"
	"github.com/hupe1980/ledgerdb/model"
	"github.com/hupe1980/ledgerdb/testutil"
)

func tx(ts int64, token, from, to string, vol float64) model.Fields {
	return model.Fields{Timestamp: ts, Token: token, WalletFrom: from, WalletTo: to, Volume: vol}
}

func seed(t *testing.T) (*Manager, []model.ID) {
	t.Helper()
	m := NewManager(0)
	var ids []model.ID
	for _, f := range []model.Fields{
		tx(100, "BTC", "A", "B", 5),
		tx(200, "ETH", "A", "B", 3),
		tx(150, "BTC", "A", "C", 2),
	} {
		id, err := m.Insert(f)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return m, ids
}

func TestManagerQueries(t *testing.T) {
	m, ids := seed(t)

	got, err := m.RangeByTimestamp(100, 200)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{ids[0], ids[2], ids[1]}, got)

	assert.Equal(t, []model.ID{ids[0], ids[2]}, m.ByToken("BTC"))
	assert.Equal(t, []model.ID{ids[1]}, m.ByToken("ETH"))
	assert.Equal(t, ids, m.BySender("A"))
	assert.Empty(t, m.BySender("B"))
	assert.Equal(t, []model.ID{ids[2]}, m.ByTimestamp(150))

	_, err = m.RangeByTimestamp(200, 100)
	assert.ErrorIs(t, err, ErrInvalidRange)

	lo, hi, ok := m.TimeBounds()
	require.True(t, ok)
	assert.Equal(t, int64(100), lo)
	assert.Equal(t, int64(200), hi)
	assert.Equal(t, []string{"BTC", "ETH"}, slices.Collect(m.Tokens()))
}

func TestManagerUpdateToken(t *testing.T) {
	m, ids := seed(t)

	f := tx(100, "ETH", "A", "B", 5)
	old, err := m.Update(ids[0], f)
	require.NoError(t, err)
	assert.Equal(t, "BTC", old.Token)

	assert.Equal(t, []model.ID{ids[2]}, m.ByToken("BTC"))
	assert.Equal(t, []model.ID{ids[1], ids[0]}, m.ByToken("ETH"))

	// Unchanged fields keep their index position.
	assert.Equal(t, []model.ID{ids[0]}, m.ByTimestamp(100))
	assert.Equal(t, ids, m.BySender("A"))

	rec, err := m.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "ETH", rec.Token)
}

func TestManagerDelete(t *testing.T) {
	m, ids := seed(t)

	require.NoError(t, m.Delete(ids[2]))
	assert.Equal(t, []model.ID{ids[0]}, m.ByToken("BTC"))
	assert.Empty(t, m.ByTimestamp(150))

	assert.ErrorIs(t, m.Delete(ids[2]), store.ErrTombstoned)
	assert.ErrorIs(t, m.Delete(99), store.ErrNotFound)
	_, err := m.Update(ids[2], tx(1, "X", "A", "B", 1))
	assert.ErrorIs(t, err, store.ErrTombstoned)

	// Re-inserting identical fields never reuses the deleted id.
	id, err := m.Insert(tx(150, "BTC", "A", "C", 2))
	require.NoError(t, err)
	assert.NotEqual(t, ids[2], id)
	_, err = m.Get(ids[2])
	assert.ErrorIs(t, err, store.ErrTombstoned)

	st := m.Stats()
	assert.Equal(t, 3, st.Live)
	assert.Equal(t, 4, st.Slots)
	assert.Equal(t, 1, st.Tombstones)
	assert.Equal(t, 3, st.TimestampKeys)
	assert.Equal(t, 2, st.TokenKeys)
	assert.Equal(t, 1, st.SenderKeys)
}

func TestManagerValidation(t *testing.T) {
	m := NewManager(0)

	tests := []struct {
		name   string
		fields model.Fields
	}{
		{"empty token", tx(1, "", "A", "B", 1)},
		{"empty sender", tx(1, "BTC", "", "B", 1)},
		{"empty receiver", tx(1, "BTC", "A", "", 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Insert(tc.fields)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}

	// Nothing was stored.
	assert.Zero(t, m.Stats().Slots)
	assert.Zero(t, m.Stats().TimestampKeys)

	id, err := m.Insert(tx(1, "BTC", "A", "B", 1))
	require.NoError(t, err)
	_, err = m.Update(id, tx(2, "", "A", "B", 1))
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, []model.ID{id}, m.ByTimestamp(1), "failed update leaves indexes untouched")
}

func TestManagerRandomizedConsistency(t *testing.T) {
	rng := testutil.NewRNG(99)
	gen := testutil.NewGenerator(rng, testutil.GeneratorConfig{Wallets: 8, Tokens: []string{"BTC", "ETH", "SOL"}, MaxStep: 3})
	m := NewManager(0)
	o := testutil.NewOracle()

	for range 3000 {
		live := o.Live()
		switch op := rng.Intn(10); {
		case op < 6 || len(live) == 0:
			f := gen.Next()
			id, err := m.Insert(f)
			require.NoError(t, err)
			o.Insert(id, f)
		case op < 8:
			id := live[rng.Intn(len(live))]
			f, _ := o.Fields(id)
			next := gen.Next()
			// Change a random subset of the indexed fields.
			if rng.Intn(2) == 0 {
				f.Token = next.Token
			}
			if rng.Intn(2) == 0 {
				f.WalletFrom = next.WalletFrom
			}
			if rng.Intn(2) == 0 {
				f.Timestamp = next.Timestamp - rng.Int63n(500)
			}
			_, err := m.Update(id, f)
			require.NoError(t, err)
			o.Update(id, f)
		default:
			id := live[rng.Intn(len(live))]
			require.NoError(t, m.Delete(id))
			o.Delete(id)
		}
	}

	for _, tok := range []string{"BTC", "ETH", "SOL"} {
		assert.ElementsMatch(t, o.ByToken(tok), m.ByToken(tok), "token %s", tok)
	}
	for i := range 8 {
		w := testutil.Wallet(i)
		assert.ElementsMatch(t, o.BySender(w), m.BySender(w), "sender %s", w)
	}
	lo, hi, ok := m.TimeBounds()
	require.True(t, ok)
	for range 50 {
		a := lo + rng.Int63n(hi-lo+1)
		b := a + rng.Int63n(200)
		got, err := m.RangeByTimestamp(a, b)
		require.NoError(t, err)
		assert.Equal(t, o.RangeByTimestamp(a, b), got, "range [%d,%d]", a, b)
	}

	var liveIDs []model.ID
	for rec := range m.Records() {
		liveIDs = append(liveIDs, rec.ID)
	}
	assert.Equal(t, o.Live(), liveIDs)
}
