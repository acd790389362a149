package graph

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ledgerdb/model"
	"github.com/hupe1980/ledgerdb/testutil"
)

// sample builds the graph of the three-record example:
// A->B BTC 5, A->B ETH 3, A->C BTC 2.
func sample() *Graph {
	g := New()
	g.AddTransaction("A", "B", "BTC", 5)
	g.AddTransaction("A", "B", "ETH", 3)
	g.AddTransaction("A", "C", "BTC", 2)
	return g
}

func TestAddTransaction(t *testing.T) {
	g := sample()

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, 3, g.TxCount())
	assert.True(t, g.HasWallet("C"), "destination-only wallets are nodes")
	assert.Equal(t, []string{"A", "B", "C"}, slices.Collect(g.Wallets()))

	e, ok := g.Edge("A", "B")
	require.True(t, ok)
	assert.Equal(t, 2, e.TxCount)
	assert.InDelta(t, 8, e.TotalVolume, 1e-9)
	assert.Equal(t, []TokenStat{{"BTC", 1, 5}, {"ETH", 1, 3}}, e.Tokens)

	_, ok = g.Edge("B", "A")
	assert.False(t, ok, "edges are directed")
	_, ok = g.Edge("X", "A")
	assert.False(t, ok)
}

func TestNeighbors(t *testing.T) {
	g := sample()

	nb := g.Neighbors("A")
	require.Len(t, nb, 2)
	assert.Equal(t, "B", nb[0].Wallet)
	assert.Equal(t, "C", nb[1].Wallet)
	assert.Equal(t, 1, nb[1].Stats.TxCount)

	assert.Empty(t, g.Neighbors("B"))
	assert.Empty(t, g.Neighbors("nobody"))

	// Snapshots do not alias graph state.
	nb[0].Stats.Tokens[0].Volume = 1000
	e, _ := g.Edge("A", "B")
	assert.InDelta(t, 5, e.Tokens[0].Volume, 1e-9)
}

func TestEdgeVolumeInvariant(t *testing.T) {
	rng := testutil.NewRNG(3)
	gen := testutil.NewGenerator(rng, testutil.GeneratorConfig{Wallets: 6})
	g := New()
	edges := make(map[[2]string]int)
	for _, f := range gen.Batch(2000) {
		g.AddRecord(f)
		edges[[2]string{f.WalletFrom, f.WalletTo}]++
	}

	assert.Equal(t, len(edges), g.EdgeCount())
	for pair, n := range edges {
		e, ok := g.Edge(pair[0], pair[1])
		require.True(t, ok)
		assert.Equal(t, n, e.TxCount)

		sumVol, sumTx := 0.0, 0
		for _, ts := range e.Tokens {
			sumVol += ts.Volume
			sumTx += ts.TxCount
		}
		assert.InDelta(t, e.TotalVolume, sumVol, 1e-6)
		assert.Equal(t, e.TxCount, sumTx)
	}
}

func TestFromRecords(t *testing.T) {
	recs := []model.Record{
		{ID: 0, Fields: model.Fields{WalletFrom: "A", WalletTo: "B", Token: "BTC", Volume: 1}},
		{ID: 1, Fields: model.Fields{WalletFrom: "B", WalletTo: "C", Token: "ETH", Volume: 2}},
	}
	g := FromRecords(slices.Values(recs))
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
}

func TestAddRecordSkipsMissingWallets(t *testing.T) {
	g := New()
	g.AddRecord(model.Fields{WalletFrom: "A", WalletTo: model.Missing, Token: "BTC", Volume: 1})
	g.AddRecord(model.Fields{WalletFrom: model.Missing, WalletTo: "B", Token: "BTC", Volume: 1})
	g.AddRecord(model.Fields{WalletFrom: "A", WalletTo: "", Token: "BTC", Volume: 1})
	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.TxCount())

	g.AddRecord(model.Fields{WalletFrom: "A", WalletTo: "B", Token: "BTC", Volume: 1})
	assert.Equal(t, 2, g.NodeCount())
	assert.False(t, g.HasWallet(model.Missing))
}
