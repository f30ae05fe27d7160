package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrafey292/smartpdf-sub000/internal/config"
	"github.com/mrafey292/smartpdf-sub000/internal/llm"
	"github.com/mrafey292/smartpdf-sub000/internal/pipeline"
	"github.com/mrafey292/smartpdf-sub000/internal/rag"
	"github.com/mrafey292/smartpdf-sub000/internal/vectorstore"
)

// Server is the HTTP API for smartpdf.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	engine   *rag.Engine
	store    vectorstore.Store
	tracker  *pipeline.Tracker
	llmc     *llm.Client
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(p *pipeline.Pipeline, engine *rag.Engine, store vectorstore.Store, tracker *pipeline.Tracker, llmc *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipeline: p,
		engine:   engine,
		store:    store,
		tracker:  tracker,
		llmc:     llmc,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleIngest)
		r.Get("/api/documents/{fileID}/status", s.handleIngestStatus)
		r.Delete("/api/documents/{fileID}", s.handleDeleteDocument)

		r.Post("/api/query", s.handleQuery)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
