package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrafey292/smartpdf-sub000/internal/api"
	"github.com/mrafey292/smartpdf-sub000/internal/config"
	"github.com/mrafey292/smartpdf-sub000/internal/index"
	"github.com/mrafey292/smartpdf-sub000/internal/llm"
	"github.com/mrafey292/smartpdf-sub000/internal/pipeline"
	"github.com/mrafey292/smartpdf-sub000/internal/rag"
	"github.com/mrafey292/smartpdf-sub000/internal/vectorstore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	llmc, err := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	if err != nil {
		log.Error("failed to init llm client", "error", err)
		os.Exit(1)
	}
	llmc.Stats = llm.NewStats(time.Hour)

	embedder, err := index.NewLangchainEmbedder(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Error("failed to init embedder", "error", err)
		os.Exit(1)
	}

	store, err := vectorstore.NewChromemStore(cfg.VectorDBPath)
	if err != nil {
		log.Error("failed to open vector store", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline and query engine.
	indexer := index.NewIndexer(embedder, store, cfg.EmbedBatchSize, cfg.UpsertBatchSize, log)
	p := pipeline.New(llmc, indexer, pipeline.Options{
		PagesPerBatch:        cfg.PagesPerBatch,
		ConcurrencyLimit:     cfg.ConcurrencyLimit,
		MaxRequestsPerMinute: cfg.MaxRequestsPerMinute,
		ConvertTimeout:       cfg.ConvertTimeout,
		MaxChunkSize:         cfg.MaxChunkSize,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log)
	engine := rag.NewEngine(llmc, embedder, store, cfg.TopK, log)

	tracker := pipeline.NewTracker(cfg.StatusTTL)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tracker.Cleanup()
			}
		}
	}()

	// Initialize HTTP server.
	srv := api.NewServer(p, engine, store, tracker, llmc, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.IngestTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting smartpdf", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
