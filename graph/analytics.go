package graph

import (
	"cmp"
	"fmt"
	"slices"
)

// Metric selects the ranking key of an aggregate query.
type Metric string

const (
	// ByCount ranks by number of transactions.
	ByCount Metric = "count"
	// ByVolume ranks by summed volume.
	ByVolume Metric = "volume"
	// ByAverage ranks by mean volume per transaction.
	ByAverage Metric = "avg"
)

// ParseMetric accepts the canonical names plus the aliases used by the query
// API ("total_amt", "avg_amt").
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "count":
		return ByCount, nil
	case "volume", "total_amt", "total_volume":
		return ByVolume, nil
	case "avg", "avg_amt", "average":
		return ByAverage, nil
	default:
		return "", fmt.Errorf("graph: unknown metric %q", s)
	}
}

// Direction selects which edges of a wallet an aggregate considers.
type Direction string

const (
	// Outgoing considers edges leaving the wallet.
	Outgoing Direction = "out"
	// Incoming considers edges entering the wallet.
	Incoming Direction = "in"
	// Both considers edges in either direction.
	Both Direction = "both"
)

// ParseDirection parses "out", "in" or "both".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Outgoing, Incoming, Both:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("graph: unknown direction %q", s)
	}
}

// TokenVolume is one row of a top-tokens query.
type TokenVolume struct {
	Token  string
	Volume float64
}

// TopTokens sums the per-token volume over all outgoing edges of wallet and
// returns the k largest, descending. Ties keep the order in which tokens were
// first seen by the graph. Unknown wallets and k <= 0 yield nothing.
func (g *Graph) TopTokens(wallet string, k int) []TokenVolume {
	u, ok := g.byWallet[wallet]
	if !ok || k <= 0 {
		return nil
	}
	sums := make(map[string]float64)
	for _, ei := range g.nodes[u].out {
		for _, ts := range g.edges[ei].tokens {
			sums[ts.Token] += ts.Volume
		}
	}
	rows := make([]TokenVolume, 0, len(sums))
	for tok, vol := range sums {
		rows = append(rows, TokenVolume{Token: tok, Volume: vol})
	}
	slices.SortFunc(rows, func(a, b TokenVolume) int {
		if c := cmp.Compare(b.Volume, a.Volume); c != 0 {
			return c
		}
		return cmp.Compare(g.tokenOrder[a.Token], g.tokenOrder[b.Token])
	})
	return rows[:min(k, len(rows))]
}

// Counterparty aggregates the transactions between a wallet and one peer.
type Counterparty struct {
	Wallet    string
	TxCount   int
	Volume    float64
	AvgVolume float64
}

func (c Counterparty) metric(m Metric) float64 {
	switch m {
	case ByCount:
		return float64(c.TxCount)
	case ByAverage:
		return c.AvgVolume
	default:
		return c.Volume
	}
}

// TopCounterparties ranks the peers of wallet by metric over the edges in dir
// and returns the k best. Ties keep the order in which peers were first seen.
func (g *Graph) TopCounterparties(wallet string, k int, by Metric, dir Direction) []Counterparty {
	u, ok := g.byWallet[wallet]
	if !ok || k <= 0 {
		return nil
	}
	agg := make(map[int32]*Counterparty)
	var order []int32
	add := func(peer int32, e *edge) {
		c, ok := agg[peer]
		if !ok {
			c = &Counterparty{Wallet: g.nodes[peer].wallet}
			agg[peer] = c
			order = append(order, peer)
		}
		c.TxCount += e.txCount
		c.Volume += e.volume
	}
	if dir == Outgoing || dir == Both {
		for _, ei := range g.nodes[u].out {
			add(g.edges[ei].to, &g.edges[ei])
		}
	}
	if dir == Incoming || dir == Both {
		for _, ei := range g.nodes[u].in {
			e := &g.edges[ei]
			if dir == Both && e.from == e.to {
				continue
			}
			add(e.from, e)
		}
	}

	rows := make([]Counterparty, 0, len(order))
	for _, peer := range order {
		c := agg[peer]
		if c.TxCount > 0 {
			c.AvgVolume = c.Volume / float64(c.TxCount)
		}
		rows = append(rows, *c)
	}
	slices.SortStableFunc(rows, func(a, b Counterparty) int {
		return cmp.Compare(b.metric(by), a.metric(by))
	})
	return rows[:min(k, len(rows))]
}

// Pair aggregates the transactions between two wallets.
type Pair struct {
	TxCount   int
	Volume    float64
	AvgVolume float64
	// Tokens merges the per-token stats of the included edges.
	Tokens []TokenStat
}

// PairStats returns the stats of a -> b, or of a -> b and b -> a combined when
// directed is false. It fails with ErrNotFound when no included edge exists.
func (g *Graph) PairStats(a, b string, directed bool) (Pair, error) {
	var p Pair
	found := false
	merge := func(e EdgeStats) {
		found = true
		p.TxCount += e.TxCount
		p.Volume += e.TotalVolume
		for _, ts := range e.Tokens {
			i := slices.IndexFunc(p.Tokens, func(x TokenStat) bool { return x.Token == ts.Token })
			if i < 0 {
				p.Tokens = append(p.Tokens, ts)
				continue
			}
			p.Tokens[i].TxCount += ts.TxCount
			p.Tokens[i].Volume += ts.Volume
		}
	}
	if e, ok := g.Edge(a, b); ok {
		merge(e)
	}
	if !directed && a != b {
		if e, ok := g.Edge(b, a); ok {
			merge(e)
		}
	}
	if !found {
		return Pair{}, fmt.Errorf("%w: no relationship between %q and %q", ErrNotFound, a, b)
	}
	if p.TxCount > 0 {
		p.AvgVolume = p.Volume / float64(p.TxCount)
	}
	return p, nil
}

// Summary describes the activity of one wallet.
type Summary struct {
	Wallet     string
	Known      bool
	OutDegree  int
	InDegree   int
	OutTxCount int
	InTxCount  int
	OutVolume  float64
	InVolume   float64
	// Tokens is the number of distinct tokens on any touching edge.
	Tokens int
}

// WalletSummary summarizes wallet. Unknown wallets yield a zero summary with
// Known set to false.
func (g *Graph) WalletSummary(wallet string) Summary {
	s := Summary{Wallet: wallet}
	u, ok := g.byWallet[wallet]
	if !ok {
		return s
	}
	s.Known = true
	n := &g.nodes[u]
	s.OutDegree = len(n.out)
	s.InDegree = len(n.in)
	tokens := make(map[string]struct{})
	for _, ei := range n.out {
		e := &g.edges[ei]
		s.OutTxCount += e.txCount
		s.OutVolume += e.volume
		for _, ts := range e.tokens {
			tokens[ts.Token] = struct{}{}
		}
	}
	for _, ei := range n.in {
		e := &g.edges[ei]
		s.InTxCount += e.txCount
		s.InVolume += e.volume
		for _, ts := range e.tokens {
			tokens[ts.Token] = struct{}{}
		}
	}
	s.Tokens = len(tokens)
	return s
}

// touching yields each edge incident to u once; self-loops are not repeated.
func (g *Graph) touching(u int32, visit func(e *edge)) {
	for _, ei := range g.nodes[u].out {
		visit(&g.edges[ei])
	}
	for _, ei := range g.nodes[u].in {
		if e := &g.edges[ei]; e.from != e.to {
			visit(e)
		}
	}
}

// CurrencyBreakdown returns per-token counts and volumes over every edge that
// touches wallet, sorted by volume descending.
func (g *Graph) CurrencyBreakdown(wallet string) []TokenStat {
	u, ok := g.byWallet[wallet]
	if !ok {
		return nil
	}
	agg := make(map[string]*TokenStat)
	g.touching(u, func(e *edge) {
		for _, ts := range e.tokens {
			a, ok := agg[ts.Token]
			if !ok {
				a = &TokenStat{Token: ts.Token}
				agg[ts.Token] = a
			}
			a.TxCount += ts.TxCount
			a.Volume += ts.Volume
		}
	})
	rows := make([]TokenStat, 0, len(agg))
	for _, a := range agg {
		rows = append(rows, *a)
	}
	slices.SortFunc(rows, func(a, b TokenStat) int {
		if c := cmp.Compare(b.Volume, a.Volume); c != 0 {
			return c
		}
		return cmp.Compare(g.tokenOrder[a.Token], g.tokenOrder[b.Token])
	})
	return rows
}

// WalletActivity is the participation of one wallet in one token.
type WalletActivity struct {
	Wallet  string
	Token   string
	TxCount int
	Volume  float64
}

// TopWalletByCurrency returns the wallet with the highest count or volume of
// token transactions in either direction. Ties go to the wallet seen first.
// It fails with ErrNotFound when the token never appeared.
func (g *Graph) TopWalletByCurrency(token string, by Metric) (WalletActivity, error) {
	if _, ok := g.tokenOrder[token]; !ok {
		return WalletActivity{}, fmt.Errorf("%w: token %q", ErrNotFound, token)
	}
	counts := make([]int, len(g.nodes))
	volumes := make([]float64, len(g.nodes))
	for i := range g.edges {
		e := &g.edges[i]
		ti, ok := e.tokenPos[token]
		if !ok {
			continue
		}
		ts := e.tokens[ti]
		counts[e.from] += ts.TxCount
		volumes[e.from] += ts.Volume
		if e.to != e.from {
			counts[e.to] += ts.TxCount
			volumes[e.to] += ts.Volume
		}
	}
	score := func(i int) float64 {
		switch by {
		case ByCount:
			return float64(counts[i])
		case ByAverage:
			if counts[i] == 0 {
				return 0
			}
			return volumes[i] / float64(counts[i])
		default:
			return volumes[i]
		}
	}
	best := -1
	for i := range g.nodes {
		if counts[i] == 0 {
			continue
		}
		if best < 0 || score(i) > score(best) {
			best = i
		}
	}
	if best < 0 {
		return WalletActivity{}, fmt.Errorf("%w: token %q", ErrNotFound, token)
	}
	return WalletActivity{
		Wallet:  g.nodes[best].wallet,
		Token:   token,
		TxCount: counts[best],
		Volume:  volumes[best],
	}, nil
}
