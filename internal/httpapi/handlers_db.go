package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hupe1980/ledgerdb/model"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.db.Stats()
	s.writeOK(w, statusJSON{
		Source:        s.source,
		Records:       st.Live,
		Slots:         st.Slots,
		Tombstones:    st.Tombstones,
		TimestampKeys: st.TimestampKeys,
		TokenKeys:     st.TokenKeys,
		SenderKeys:    st.SenderKeys,
		GraphNodes:    st.GraphNodes,
		GraphEdges:    st.GraphEdges,
		GraphStale:    st.GraphStale,
	})
}

func (s *Server) handleByTimestamp(w http.ResponseWriter, r *http.Request) {
	ts, ok := s.pathTimestamp(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, msgTimestampFormat)
		return
	}
	rec, err := s.db.FirstByTimestamp(ts)
	if err != nil {
		s.writeEngineError(w, err, "record not found")
		return
	}
	s.writeOK(w, s.record(rec))
}

func (s *Server) writeIDs(w http.ResponseWriter, r *http.Request, ids []model.ID) {
	limit := limitParam(r)
	s.writeOK(w, s.rows(s.db.Resolve(ids[:min(limit, len(ids))]), len(ids)))
}

func (s *Server) handleByToken(w http.ResponseWriter, r *http.Request) {
	s.writeIDs(w, r, s.db.ByToken(pathParam(r, "symbol")))
}

func (s *Server) handleBySender(w http.ResponseWriter, r *http.Request) {
	s.writeIDs(w, r, s.db.BySender(pathParam(r, "wallet")))
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	rawStart, rawEnd := queryParam(r, "start"), queryParam(r, "end")
	if rawStart == "" || rawEnd == "" {
		s.writeError(w, http.StatusBadRequest, "start and end are required: /api/db/range?start=...&end=...")
		return
	}
	start, ok1 := s.parseDateTime(rawStart)
	end, ok2 := s.parseDateTime(rawEnd)
	if !ok1 || !ok2 {
		s.writeError(w, http.StatusBadRequest, "start/end must be 'YYYY-MM-DD HH:MM:SS'")
		return
	}
	if start > end {
		s.writeError(w, http.StatusBadRequest, "start must not be after end")
		return
	}

	limit := limitParam(r)
	ids := make([]model.ID, 0, limit)
	for id := range s.db.ScanTimestamp(start, end) {
		ids = append(ids, id)
		if len(ids) >= limit {
			break
		}
	}
	recs := s.db.Resolve(ids)
	s.writeOK(w, s.rows(recs, len(recs)))
}

// decodeBody decodes a JSON object. An empty body leaves v untouched.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := s.codec.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if missing := req.missing(); len(missing) > 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("missing fields: %v", missing))
		return
	}
	ts, ok := s.parseDateTime(*req.TimestampStr)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "timestamp_str must be 'YYYY-MM-DD HH:MM:SS' (unix not allowed)")
		return
	}
	if len(s.db.ByTimestamp(ts)) > 0 {
		s.writeError(w, http.StatusConflict, "insert rejected (timestamp already exists)")
		return
	}
	id, err := s.db.Insert(r.Context(), req.fields(ts))
	if err != nil {
		s.writeEngineError(w, err, "record not found")
		return
	}
	rec, err := s.db.Get(id)
	if err != nil {
		s.writeEngineError(w, err, "record not found")
		return
	}
	s.writeOK(w, map[string]any{"record_id": uint64(id), "record": s.record(rec)})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ts, ok := s.pathTimestamp(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, msgTimestampFormat)
		return
	}
	var req updateRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.empty() {
		s.writeError(w, http.StatusBadRequest, "updates JSON body required")
		return
	}
	var newTS *int64
	if req.TimestampStr != nil {
		parsed, ok := s.parseDateTime(*req.TimestampStr)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "timestamp_str must be 'YYYY-MM-DD HH:MM:SS'")
			return
		}
		newTS = &parsed
	}

	id, err := s.db.UpdateByTimestamp(r.Context(), ts, req.patch(newTS))
	if err != nil {
		s.writeEngineError(w, err, "record not found / deleted")
		return
	}
	rec, err := s.db.Get(id)
	if err != nil {
		s.writeEngineError(w, err, "record not found / deleted")
		return
	}
	s.writeOK(w, map[string]any{"updated": true, "record": s.record(rec)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ts, ok := s.pathTimestamp(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, msgTimestampFormat)
		return
	}
	id, err := s.db.DeleteByTimestamp(r.Context(), ts)
	if err != nil {
		s.writeEngineError(w, err, "record not found / deleted")
		return
	}
	s.writeOK(w, map[string]any{"deleted": true, "record_id": uint64(id), "timestamp": ts})
}
