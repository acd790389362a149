package httpapi

import (
	"net/http"

	"github.com/hupe1980/ledgerdb/graph"
)

const msgWalletNotFound = "wallet not in graph"

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	wallet := pathParam(r, "wallet")
	nb := s.db.Neighbors(wallet)
	preview := nb[:min(limitParam(r), len(nb))]
	out := neighborsJSON{Wallet: wallet, Count: len(nb), Preview: make([]neighborJSON, 0, len(preview))}
	for _, n := range preview {
		out.Preview = append(out.Preview, neighborJSON{
			Neighbor: n.Wallet,
			Stats: edgeJSON{
				Count:       n.Stats.TxCount,
				TotalVolume: n.Stats.TotalVolume,
				Tokens:      tokenStats(n.Stats.Tokens),
			},
		})
	}
	s.writeOK(w, out)
}

func (s *Server) traversal(w http.ResponseWriter, r *http.Request, walk func(string) ([]string, error)) {
	wallet := pathParam(r, "wallet")
	order, err := walk(wallet)
	if err != nil {
		s.writeEngineError(w, err, msgWalletNotFound)
		return
	}
	s.writeOK(w, traversalJSON{Wallet: wallet, Count: len(order), Order: order})
}

func (s *Server) handleBFS(w http.ResponseWriter, r *http.Request) { s.traversal(w, r, s.db.BFS) }

func (s *Server) handleDFS(w http.ResponseWriter, r *http.Request) { s.traversal(w, r, s.db.DFS) }

func (s *Server) handleTopTokens(w http.ResponseWriter, r *http.Request) {
	wallet := pathParam(r, "wallet")
	rows, err := s.db.TopTokens(wallet, clampedInt(r, "k", 3, 1, maxK))
	if err != nil {
		s.writeEngineError(w, err, msgWalletNotFound)
		return
	}
	out := topTokensJSON{Wallet: wallet, Rows: make([]tokenVolumeJSON, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, tokenVolumeJSON{Token: row.Token, Volume: row.Volume})
	}
	s.writeOK(w, out)
}

func (s *Server) handleWalletSummary(w http.ResponseWriter, r *http.Request) {
	sum := s.db.Graph().WalletSummary(pathParam(r, "wallet"))
	s.writeOK(w, walletSummaryJSON{
		Wallet:         sum.Wallet,
		Known:          sum.Known,
		OutDegree:      sum.OutDegree,
		InDegree:       sum.InDegree,
		OutTxCount:     sum.OutTxCount,
		InTxCount:      sum.InTxCount,
		OutVolume:      sum.OutVolume,
		InVolume:       sum.InVolume,
		DistinctTokens: sum.Tokens,
	})
}

func (s *Server) handleTopCounterparties(w http.ResponseWriter, r *http.Request) {
	wallet := pathParam(r, "wallet")
	by, err := graph.ParseMetric(defaulted(queryParam(r, "by"), "total_amt"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := graph.ParseDirection(defaulted(queryParam(r, "direction"), "both"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	k := clampedInt(r, "k", 10, 1, maxK)
	rows := s.db.Graph().TopCounterparties(wallet, k, by, dir)
	out := counterpartiesJSON{Wallet: wallet, By: by, Direction: dir, Rows: make([]counterpartyJSON, 0, len(rows))}
	for _, c := range rows {
		out.Rows = append(out.Rows, counterpartyJSON{
			Wallet:   c.Wallet,
			Count:    c.TxCount,
			TotalAmt: c.Volume,
			AvgAmt:   c.AvgVolume,
		})
	}
	s.writeOK(w, out)
}

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	src, dst := queryParam(r, "src"), queryParam(r, "dst")
	if src == "" || dst == "" {
		s.writeError(w, http.StatusBadRequest, "src and dst required: /api/graph/shortest_path?src=...&dst=...")
		return
	}
	path, err := s.db.Graph().ShortestPath(src, dst)
	if err != nil {
		s.writeEngineError(w, err, "no path found (or src not in graph)")
		return
	}
	s.writeOK(w, pathJSON{Length: len(path) - 1, Path: path})
}

func defaulted(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
