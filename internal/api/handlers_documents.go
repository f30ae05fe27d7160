package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mrafey292/smartpdf-sub000/internal/extract"
	"github.com/mrafey292/smartpdf-sub000/internal/pipeline"
)

// handleIngest accepts a document upload and runs the ingestion pipeline
// synchronously. Large documents take minutes; progress is pollable at
// the status endpoint while this request is in flight.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !extract.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	fileID := r.FormValue("file_id")
	if fileID == "" {
		fileID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.IngestTimeout)
	defer cancel()

	result, err := s.pipeline.Ingest(ctx, pipeline.IngestRequest{
		FileID:   fileID,
		Filename: filename,
		Data:     data,
		Status:   s.tracker.Begin(fileID, filename),
	})
	if err != nil {
		s.log.Error("ingest failed", "file_id", fileID, "error", err)
		code := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			code = http.StatusGatewayTimeout
		}
		jsonError(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"file_id":            result.FileID,
		"markdown":           result.Markdown,
		"total_pages":        result.TotalPages,
		"total_chunks":       result.TotalChunks,
		"failed_batches":     result.FailedBatches,
		"processing_time_ms": result.Duration.Milliseconds(),
	})
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	run, ok := s.tracker.Get(fileID)
	if !ok {
		jsonError(w, "unknown file id", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	if err := s.store.DeleteAll(r.Context(), fileID); err != nil {
		s.log.Error("delete document failed", "file_id", fileID, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.tracker.Delete(fileID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"file_id": fileID, "deleted": true})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
