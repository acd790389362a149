package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/ledgerdb"
	"github.com/hupe1980/ledgerdb/graph"
	"github.com/hupe1980/ledgerdb/ingest"
)

const (
	defaultLimit = 50
	maxLimit     = 200
	maxK         = 50

	msgTimestampFormat = "timestamp must be 'YYYY-MM-DD HH:MM:SS'"
)

type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := s.codec.Encode(w, body); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeOK(w http.ResponseWriter, data any) {
	s.write(w, http.StatusOK, envelope{OK: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.write(w, status, envelope{Error: msg})
}

// writeEngineError maps engine sentinels to statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, ledgerdb.ErrNotFound), errors.Is(err, graph.ErrNotFound):
		s.writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, ledgerdb.ErrInvalidRange), errors.Is(err, ledgerdb.ErrInvalidRecord),
		errors.Is(err, ledgerdb.ErrInvalidK):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("engine error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// clampedInt parses a query parameter, falling back to def when it is
// missing or malformed, and clamps the result to [lo, hi].
func clampedInt(r *http.Request, key string, def, lo, hi int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return min(max(n, lo), hi)
}

func limitParam(r *http.Request) int {
	return clampedInt(r, "limit", defaultLimit, 1, maxLimit)
}

func queryParam(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// pathTimestamp parses the {ts} path parameter.
func (s *Server) pathTimestamp(r *http.Request) (int64, bool) {
	return s.parseDateTime(pathParam(r, "ts"))
}

func (s *Server) parseDateTime(raw string) (int64, bool) {
	t, err := ingest.ParseDateTime(raw, s.loc)
	if err != nil {
		return 0, false
	}
	return t, true
}

func (s *Server) formatDateTime(ts int64) string {
	return ingest.FormatDateTime(ts, s.loc)
}

