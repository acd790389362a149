package httpapi

import (
	"github.com/hupe1980/ledgerdb/graph"
	"github.com/hupe1980/ledgerdb/model"
	"github.com/hupe1980/ledgerdb/stats"
)

type recordJSON struct {
	ID           uint64            `json:"id"`
	Timestamp    int64             `json:"timestamp"`
	TimestampStr string            `json:"timestamp_str"`
	TimestampRaw string            `json:"timestamp_raw,omitempty"`
	Token        string            `json:"token"`
	Price        float64           `json:"price"`
	Volume       float64           `json:"volume"`
	WalletFrom   string            `json:"wallet_from"`
	WalletTo     string            `json:"wallet_to"`
	Status       string            `json:"status"`
	Extra        map[string]string `json:"extra,omitempty"`
}

func (s *Server) record(rec model.Record) recordJSON {
	return recordJSON{
		ID:           uint64(rec.ID),
		Timestamp:    rec.Timestamp,
		TimestampStr: s.formatDateTime(rec.Timestamp),
		TimestampRaw: rec.TimestampRaw,
		Token:        rec.Token,
		Price:        rec.Price,
		Volume:       rec.Volume,
		WalletFrom:   rec.WalletFrom,
		WalletTo:     rec.WalletTo,
		Status:       rec.Status,
		Extra:        rec.Extra,
	}
}

type rowsJSON struct {
	CountReturned int          `json:"count_returned"`
	Total         int          `json:"total"`
	Rows          []recordJSON `json:"rows"`
}

func (s *Server) rows(recs []model.Record, total int) rowsJSON {
	out := rowsJSON{CountReturned: len(recs), Total: total, Rows: make([]recordJSON, 0, len(recs))}
	for _, rec := range recs {
		out.Rows = append(out.Rows, s.record(rec))
	}
	return out
}

// insertRequest uses pointers so missing keys can be told from zero values.
type insertRequest struct {
	TxID           *string  `json:"tx_id"`
	TimestampStr   *string  `json:"timestamp_str"`
	CryptoSymbol   *string  `json:"crypto_symbol"`
	AmountUSD      *float64 `json:"amount_usd"`
	FeeUSD         *float64 `json:"fee_usd"`
	SenderWallet   *string  `json:"sender_wallet"`
	ReceiverWallet *string  `json:"receiver_wallet"`
	Status         *string  `json:"status"`
}

func (r insertRequest) missing() []string {
	var out []string
	check := func(name string, set bool) {
		if !set {
			out = append(out, name)
		}
	}
	check("tx_id", r.TxID != nil)
	check("timestamp_str", r.TimestampStr != nil)
	check("crypto_symbol", r.CryptoSymbol != nil)
	check("amount_usd", r.AmountUSD != nil)
	check("fee_usd", r.FeeUSD != nil)
	check("sender_wallet", r.SenderWallet != nil)
	check("receiver_wallet", r.ReceiverWallet != nil)
	check("status", r.Status != nil)
	return out
}

func (r insertRequest) fields(ts int64) model.Fields {
	return model.Fields{
		Timestamp:    ts,
		TimestampRaw: *r.TimestampStr,
		Token:        *r.CryptoSymbol,
		Price:        *r.AmountUSD,
		Volume:       *r.FeeUSD,
		WalletFrom:   *r.SenderWallet,
		WalletTo:     *r.ReceiverWallet,
		Status:       *r.Status,
		Extra:        map[string]string{"tx_id": *r.TxID},
	}
}

// updateRequest accepts the insert keys; absent keys stay unchanged.
type updateRequest insertRequest

func (r updateRequest) empty() bool {
	return r.TxID == nil && r.TimestampStr == nil && r.CryptoSymbol == nil &&
		r.AmountUSD == nil && r.FeeUSD == nil && r.SenderWallet == nil &&
		r.ReceiverWallet == nil && r.Status == nil
}

func (r updateRequest) patch(ts *int64) model.Patch {
	var p model.Patch
	if ts != nil {
		p.Timestamp = ts
		p.TimestampRaw = r.TimestampStr
	}
	p.Token = r.CryptoSymbol
	p.Price = r.AmountUSD
	p.Volume = r.FeeUSD
	p.WalletFrom = r.SenderWallet
	p.WalletTo = r.ReceiverWallet
	p.Status = r.Status
	if r.TxID != nil {
		p.Extra = map[string]string{"tx_id": *r.TxID}
	}
	return p
}

type statusJSON struct {
	Source        string `json:"source"`
	Records       int    `json:"records_in_store"`
	Slots         int    `json:"slots"`
	Tombstones    int    `json:"tombstones"`
	TimestampKeys int    `json:"timestamp_keys"`
	TokenKeys     int    `json:"token_keys"`
	SenderKeys    int    `json:"sender_keys"`
	GraphNodes    int    `json:"graph_nodes"`
	GraphEdges    int    `json:"graph_edges"`
	GraphStale    bool   `json:"graph_stale"`
}

type tokenStatJSON struct {
	Token  string  `json:"token"`
	Count  int     `json:"count"`
	Volume float64 `json:"volume"`
}

func tokenStats(in []graph.TokenStat) []tokenStatJSON {
	out := make([]tokenStatJSON, 0, len(in))
	for _, ts := range in {
		out = append(out, tokenStatJSON{Token: ts.Token, Count: ts.TxCount, Volume: ts.Volume})
	}
	return out
}

type edgeJSON struct {
	Count       int             `json:"count"`
	TotalVolume float64         `json:"total_volume"`
	Tokens      []tokenStatJSON `json:"tokens"`
}

type neighborJSON struct {
	Neighbor string   `json:"neighbor"`
	Stats    edgeJSON `json:"stats"`
}

type neighborsJSON struct {
	Wallet  string         `json:"wallet"`
	Count   int            `json:"neighbors_count"`
	Preview []neighborJSON `json:"neighbors_preview"`
}

type traversalJSON struct {
	Wallet string   `json:"wallet"`
	Count  int      `json:"count"`
	Order  []string `json:"order"`
}

type tokenVolumeJSON struct {
	Token  string  `json:"token"`
	Volume float64 `json:"volume"`
}

type topTokensJSON struct {
	Wallet string            `json:"wallet"`
	Rows   []tokenVolumeJSON `json:"rows"`
}

type walletSummaryJSON struct {
	Wallet         string  `json:"wallet"`
	Known          bool    `json:"known"`
	OutDegree      int     `json:"out_degree"`
	InDegree       int     `json:"in_degree"`
	OutTxCount     int     `json:"out_tx_count"`
	InTxCount      int     `json:"in_tx_count"`
	OutVolume      float64 `json:"out_volume"`
	InVolume       float64 `json:"in_volume"`
	DistinctTokens int     `json:"distinct_tokens"`
}

type counterpartyJSON struct {
	Wallet   string  `json:"wallet"`
	Count    int     `json:"count"`
	TotalAmt float64 `json:"total_amt"`
	AvgAmt   float64 `json:"avg_amt"`
}

type counterpartiesJSON struct {
	Wallet    string             `json:"wallet"`
	By        graph.Metric       `json:"by"`
	Direction graph.Direction    `json:"direction"`
	Rows      []counterpartyJSON `json:"rows"`
}

type pathJSON struct {
	Length int      `json:"length"`
	Path   []string `json:"path"`
}

type pairJSON struct {
	Directed bool            `json:"directed"`
	Count    int             `json:"count"`
	TotalAmt float64         `json:"total_amt"`
	AvgAmt   float64         `json:"avg_amt"`
	Tokens   []tokenStatJSON `json:"tokens"`
}

type breakdownJSON struct {
	Wallet string          `json:"wallet"`
	Rows   []tokenStatJSON `json:"rows"`
}

type walletActivityJSON struct {
	Wallet   string       `json:"wallet"`
	Symbol   string       `json:"symbol"`
	By       graph.Metric `json:"by"`
	Count    int          `json:"count"`
	TotalAmt float64      `json:"total_amt"`
}

type filtersJSON struct {
	CryptoSymbol   string `json:"crypto_symbol"`
	Status         string `json:"status"`
	SenderWallet   string `json:"sender_wallet"`
	ReceiverWallet string `json:"receiver_wallet"`
}

type analyticsJSON struct {
	stats.Summary
	ApproxNote string      `json:"approx_note"`
	Filters    filtersJSON `json:"filters"`
}
