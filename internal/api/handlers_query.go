package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mrafey292/smartpdf-sub000/internal/rag"
)

type queryRequest struct {
	FileID   string     `json:"file_id"`
	Question string     `json:"question"`
	History  []rag.Turn `json:"history"`
	TopK     int        `json:"top_k"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.FileID == "" {
		jsonError(w, "file_id is required", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.QueryTimeout)
	defer cancel()

	result, err := s.engine.Query(ctx, req.FileID, req.Question, req.History, req.TopK)
	if err != nil {
		s.log.Error("query failed", "file_id", req.FileID, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
