package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/ledgerdb/model"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(NewRNG(4711), GeneratorConfig{Wallets: 10}).Batch(50)
	b := NewGenerator(NewRNG(4711), GeneratorConfig{Wallets: 10}).Batch(50)
	assert.Equal(t, a, b)
}

func TestGeneratorRecords(t *testing.T) {
	gen := NewGenerator(NewRNG(1), GeneratorConfig{Wallets: 5, Tokens: []string{"BTC"}})

	prev := int64(0)
	for _, f := range gen.Batch(200) {
		assert.NotEqual(t, f.WalletFrom, f.WalletTo)
		assert.Equal(t, "BTC", f.Token)
		assert.GreaterOrEqual(t, f.Timestamp, prev)
		assert.GreaterOrEqual(t, f.Price, 0.0)
		assert.GreaterOrEqual(t, f.Volume, 0.0)
		prev = f.Timestamp
	}
}

func TestRNGReset(t *testing.T) {
	rng := NewRNG(7)
	first := rng.Intn(1 << 30)
	rng.Reset()
	assert.Equal(t, first, rng.Intn(1<<30))
	assert.Equal(t, int64(7), rng.Seed())
}

func TestWallet(t *testing.T) {
	assert.Equal(t, "W0001", Wallet(0))
	assert.Equal(t, "W0042", Wallet(41))
}

func TestOracleRangeOrder(t *testing.T) {
	o := NewOracle()
	o.Insert(0, model.Fields{Timestamp: 200})
	o.Insert(1, model.Fields{Timestamp: 100})
	o.Insert(2, model.Fields{Timestamp: 300})
	// Moving record 2 onto 200 puts it after record 0 within that timestamp.
	o.Update(2, model.Fields{Timestamp: 200})

	assert.Equal(t, []model.ID{1, 0, 2}, o.RangeByTimestamp(0, 1000))
	o.Delete(0)
	assert.Equal(t, []model.ID{2}, o.RangeByTimestamp(150, 250))
	assert.False(t, o.IsLive(0))
}
