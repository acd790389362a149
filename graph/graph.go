package graph

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/ledgerdb/model"
)

// ErrNotFound is returned when a wallet, path or token is unknown.
var ErrNotFound = errors.New("graph: not found")

// TokenStat aggregates the transactions of one token.
type TokenStat struct {
	Token   string
	TxCount int
	Volume  float64
}

// EdgeStats is a snapshot of a directed edge.
type EdgeStats struct {
	TxCount     int
	TotalVolume float64
	// Tokens is ordered by the first transaction of each token on the edge.
	Tokens []TokenStat
}

// Neighbor is an outgoing edge seen from its source wallet.
type Neighbor struct {
	Wallet string
	Stats  EdgeStats
}

type edge struct {
	from, to int32
	txCount  int
	volume   float64
	tokens   []TokenStat
	tokenPos map[string]int
}

func (e *edge) stats() EdgeStats {
	return EdgeStats{
		TxCount:     e.txCount,
		TotalVolume: e.volume,
		Tokens:      slices.Clone(e.tokens),
	}
}

type node struct {
	wallet string
	// out and in hold edge indices in creation order.
	out   []int32
	in    []int32
	outTo map[int32]int32
}

// Graph is a directed multigraph of wallets. It is not safe for concurrent
// mutation.
type Graph struct {
	nodes      []node
	byWallet   map[string]int32
	edges      []edge
	tokenOrder map[string]int
	txCount    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byWallet:   make(map[string]int32),
		tokenOrder: make(map[string]int),
	}
}

// FromRecords builds a graph from every record of seq.
func FromRecords(seq iter.Seq[model.Record]) *Graph {
	g := New()
	for rec := range seq {
		g.AddRecord(rec.Fields)
	}
	return g
}

// AddRecord adds the transaction described by f. Records without both a
// sender and a receiver wallet are not part of the graph.
func (g *Graph) AddRecord(f model.Fields) {
	if !f.HasWallets() {
		return
	}
	g.AddTransaction(f.WalletFrom, f.WalletTo, f.Token, f.Volume)
}

// AddTransaction records a transfer of volume units of token from one wallet
// to another, creating nodes and the edge as needed.
func (g *Graph) AddTransaction(from, to, token string, volume float64) {
	u := g.ensureNode(from)
	v := g.ensureNode(to)

	ei, ok := g.nodes[u].outTo[v]
	if !ok {
		ei = int32(len(g.edges)) //nolint:gosec // bounded by int32 refs
		g.edges = append(g.edges, edge{from: u, to: v, tokenPos: make(map[string]int)})
		g.nodes[u].out = append(g.nodes[u].out, ei)
		g.nodes[u].outTo[v] = ei
		g.nodes[v].in = append(g.nodes[v].in, ei)
	}

	if _, seen := g.tokenOrder[token]; !seen {
		g.tokenOrder[token] = len(g.tokenOrder)
	}

	e := &g.edges[ei]
	e.txCount++
	e.volume += volume
	ti, ok := e.tokenPos[token]
	if !ok {
		ti = len(e.tokens)
		e.tokens = append(e.tokens, TokenStat{Token: token})
		e.tokenPos[token] = ti
	}
	e.tokens[ti].TxCount++
	e.tokens[ti].Volume += volume
	g.txCount++
}

func (g *Graph) ensureNode(wallet string) int32 {
	if i, ok := g.byWallet[wallet]; ok {
		return i
	}
	i := int32(len(g.nodes)) //nolint:gosec // bounded by int32 refs
	g.nodes = append(g.nodes, node{wallet: wallet, outTo: make(map[int32]int32)})
	g.byWallet[wallet] = i
	return i
}

func (g *Graph) lookup(wallet string) (int32, error) {
	i, ok := g.byWallet[wallet]
	if !ok {
		return 0, fmt.Errorf("%w: wallet %q", ErrNotFound, wallet)
	}
	return i, nil
}

// HasWallet reports whether wallet is a node.
func (g *Graph) HasWallet(wallet string) bool {
	_, ok := g.byWallet[wallet]
	return ok
}

// NodeCount returns the number of wallets.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct (from, to) pairs.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// TxCount returns the number of transactions added.
func (g *Graph) TxCount() int {
	return g.txCount
}

// Wallets yields every wallet in the order it was first seen.
func (g *Graph) Wallets() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range g.nodes {
			if !yield(g.nodes[i].wallet) {
				return
			}
		}
	}
}

// Neighbors returns the outgoing edges of wallet in creation order. Unknown
// wallets have no neighbors.
func (g *Graph) Neighbors(wallet string) []Neighbor {
	u, ok := g.byWallet[wallet]
	if !ok {
		return nil
	}
	out := make([]Neighbor, 0, len(g.nodes[u].out))
	for _, ei := range g.nodes[u].out {
		e := &g.edges[ei]
		out = append(out, Neighbor{Wallet: g.nodes[e.to].wallet, Stats: e.stats()})
	}
	return out
}

// Edge returns the stats of the edge from -> to.
func (g *Graph) Edge(from, to string) (EdgeStats, bool) {
	u, ok := g.byWallet[from]
	if !ok {
		return EdgeStats{}, false
	}
	v, ok := g.byWallet[to]
	if !ok {
		return EdgeStats{}, false
	}
	ei, ok := g.nodes[u].outTo[v]
	if !ok {
		return EdgeStats{}, false
	}
	return g.edges[ei].stats(), true
}
