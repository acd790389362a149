package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hupe1980/ledgerdb"
	"github.com/hupe1980/ledgerdb/graph"
)

func (s *Server) handlePairStats(w http.ResponseWriter, r *http.Request) {
	a, b := queryParam(r, "a"), queryParam(r, "b")
	if a == "" || b == "" {
		s.writeError(w, http.StatusBadRequest, "a and b required: /api/stats/pair_stats?a=W0001&b=W0002&directed=false")
		return
	}
	directed := truthy(queryParam(r, "directed"))
	p, err := s.db.Graph().PairStats(a, b, directed)
	if err != nil {
		s.writeEngineError(w, err, "no relationship found for these wallets")
		return
	}
	s.writeOK(w, pairJSON{
		Directed: directed,
		Count:    p.TxCount,
		TotalAmt: p.Volume,
		AvgAmt:   p.AvgVolume,
		Tokens:   tokenStats(p.Tokens),
	})
}

func (s *Server) handleCurrencyBreakdown(w http.ResponseWriter, r *http.Request) {
	wallet := pathParam(r, "wallet")
	s.writeOK(w, breakdownJSON{Wallet: wallet, Rows: tokenStats(s.db.Graph().CurrencyBreakdown(wallet))})
}

func (s *Server) handleTopWalletByCurrency(w http.ResponseWriter, r *http.Request) {
	symbol := queryParam(r, "symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol required: /api/stats/top_wallet_by_currency?symbol=BTC&by=count")
		return
	}
	by, err := graph.ParseMetric(defaulted(strings.ToLower(queryParam(r, "by")), "count"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	act, err := s.db.Graph().TopWalletByCurrency(symbol, by)
	if err != nil {
		s.writeEngineError(w, err, "no wallet found for this symbol (or symbol not present)")
		return
	}
	s.writeOK(w, walletActivityJSON{
		Wallet:   act.Wallet,
		Symbol:   act.Token,
		By:       by,
		Count:    act.TxCount,
		TotalAmt: act.Volume,
	})
}

func (s *Server) handleAmountAnalytics(w http.ResponseWriter, r *http.Request) {
	filter := ledgerdb.AmountFilter{
		Token:    queryParam(r, "symbol"),
		Status:   queryParam(r, "status"),
		Sender:   queryParam(r, "sender_wallet"),
		Receiver: queryParam(r, "receiver_wallet"),
	}
	sum := s.db.AmountAnalytics(filter)
	s.writeOK(w, analyticsJSON{
		Summary:    sum,
		ApproxNote: fmt.Sprintf("Percentiles are estimated from a reservoir sample (size=%d)", sum.SampleSize),
		Filters: filtersJSON{
			CryptoSymbol:   filter.Token,
			Status:         filter.Status,
			SenderWallet:   filter.Sender,
			ReceiverWallet: filter.Receiver,
		},
	})
}
