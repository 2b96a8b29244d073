package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleHealth responds to liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStats returns dataset statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

// handleCorrelate runs a single correlation query. Lookup misses are normal
// results carrying a status field, so the HTTP status is 200 either way.
func (s *Server) handleCorrelate(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "searchID")
	if searchID == "" {
		writeError(w, http.StatusBadRequest, "missing search id")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Resolve(searchID))
}

// batchRequest is the POST /correlate body.
type batchRequest struct {
	SearchIDs []string `json:"search_ids"`
}

// handleCorrelateBatch runs a batch of correlation queries.
func (s *Server) handleCorrelateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.SearchIDs) == 0 {
		writeError(w, http.StatusBadRequest, "search_ids is empty")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.ResolveBatch(req.SearchIDs))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
