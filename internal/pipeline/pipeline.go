package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrafey292/smartpdf-sub000/internal/chunker"
	"github.com/mrafey292/smartpdf-sub000/internal/extract"
	"github.com/mrafey292/smartpdf-sub000/internal/index"
	"github.com/mrafey292/smartpdf-sub000/internal/llm"
)

// Options configures one Pipeline.
type Options struct {
	PagesPerBatch        int
	ConcurrencyLimit     int
	MaxRequestsPerMinute int
	ConvertTimeout       time.Duration
	MaxChunkSize         int
	PDFFallbackPdftotext bool
}

// Pipeline runs the full ingestion path: extract, split, convert, stitch,
// chunk, attribute pages, embed, index.
type Pipeline struct {
	gen     llm.Generator
	indexer *index.Indexer
	opts    Options
	log     *slog.Logger
}

func New(gen llm.Generator, indexer *index.Indexer, opts Options, log *slog.Logger) *Pipeline {
	return &Pipeline{gen: gen, indexer: indexer, opts: opts, log: log}
}

// IngestRequest is one document to ingest.
type IngestRequest struct {
	FileID   string
	Filename string
	Data     []byte
	Status   StatusFunc
}

// IngestResult summarizes a completed ingestion run. All intermediate
// entities are discarded; the vector index is the durable artifact.
type IngestResult struct {
	FileID        string
	Markdown      string
	TotalPages    int
	TotalChunks   int
	FailedBatches []int
	Duration      time.Duration
}

// Ingest processes one document end to end. Extraction, embedding, and
// indexing failures are fatal and abort the run; per-batch conversion
// failures degrade to the batch's raw text and are reported in
// FailedBatches.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	start := time.Now()
	log := p.log.With("file_id", req.FileID, "filename", req.Filename)
	report := func(s Status) {
		if req.Status != nil {
			req.Status(s)
		}
	}

	report(Status{Stage: StageExtracting, Message: "extracting text"})
	ext, err := extract.ForFile(req.Filename, p.opts.PDFFallbackPdftotext)
	if err != nil {
		report(Status{Stage: StageFailed, Message: err.Error()})
		return nil, err
	}
	text, pages, err := ext.Extract(req.Data)
	if err != nil {
		report(Status{Stage: StageFailed, Message: err.Error()})
		return nil, fmt.Errorf("extract %s: %w", req.Filename, err)
	}
	log.Info("extracted document", "pages", pages, "chars", len(text))

	batches := SplitBatches(text, pages, p.opts.PagesPerBatch)

	limiter := NewRateLimiter(p.opts.MaxRequestsPerMinute, time.Minute)
	conv := NewConverter(p.gen, limiter, p.opts.ConcurrencyLimit, p.opts.ConvertTimeout, log)
	failed := conv.ConvertAll(ctx, batches, req.Status)
	if err := ctx.Err(); err != nil {
		report(Status{Stage: StageFailed, Message: err.Error()})
		return nil, fmt.Errorf("conversion aborted: %w", err)
	}
	log.Info("converted batches", "total", len(batches), "failed", len(failed))

	doc := Stitch(batches)

	report(Status{Stage: StageChunking, Message: "chunking document"})
	chunks := chunker.Split(doc, p.opts.MaxChunkSize)

	records := make([]index.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = index.ChunkRecord{
			Index:   i,
			Text:    c.Text,
			Page:    chunker.PageForOffset(doc, c.StartChar),
			Heading: c.Heading,
		}
	}

	report(Status{Stage: StageIndexing, Message: fmt.Sprintf("indexing %d chunks", len(records))})
	if err := p.indexer.IndexChunks(ctx, req.FileID, records); err != nil {
		report(Status{Stage: StageFailed, Message: err.Error()})
		return nil, fmt.Errorf("index %s: %w", req.FileID, err)
	}

	report(Status{Stage: StageCompleted, Progress: 1, Message: "done"})
	return &IngestResult{
		FileID:        req.FileID,
		Markdown:      doc,
		TotalPages:    pages,
		TotalChunks:   len(chunks),
		FailedBatches: failed,
		Duration:      time.Since(start),
	}, nil
}
