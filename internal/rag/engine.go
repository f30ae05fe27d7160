package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mrafey292/smartpdf-sub000/internal/index"
	"github.com/mrafey292/smartpdf-sub000/internal/llm"
	"github.com/mrafey292/smartpdf-sub000/internal/vectorstore"
)

// DefaultTopK is the similarity-search result count.
const DefaultTopK = 5

// NoContextAnswer is returned verbatim when retrieval finds nothing
// relevant; the answer generator is not called in that case.
const NoContextAnswer = "I couldn't find relevant information about that in this document."

// Turn is one conversation turn. The history is append-only and is
// consumed, never mutated, here.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// RetrievedChunk is one retrieved context chunk with its page attribution.
type RetrievedChunk struct {
	Text       string  `json:"text"`
	PageNumber int     `json:"page_number"`
	Score      float32 `json:"score"`
}

// QueryResult is the full answer to one question.
type QueryResult struct {
	Answer              string           `json:"answer"`
	Chunks              []RetrievedChunk `json:"retrieved_chunks"`
	ContextualizedQuery string           `json:"contextualized_query"`
}

// Engine answers questions grounded in one document's vector namespace.
type Engine struct {
	gen      llm.Generator
	embedder index.Embedder
	store    vectorstore.Store
	topK     int
	log      *slog.Logger
}

func NewEngine(gen llm.Generator, embedder index.Embedder, store vectorstore.Store, topK int, log *slog.Logger) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{gen: gen, embedder: embedder, store: store, topK: topK, log: log}
}

// Contextualize rewrites a follow-up question into a standalone query
// using prior turns. An empty history short-circuits: the question comes
// back unchanged with no generation call. A rewrite failure falls back to
// the original question and must never block retrieval.
func (e *Engine) Contextualize(ctx context.Context, question string, history []Turn) string {
	if len(history) == 0 {
		return question
	}
	out, err := e.gen.Generate(ctx, buildContextualizePrompt(question, history))
	if err != nil {
		e.log.Warn("contextualization failed, using original question", "error", err)
		return question
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return question
	}
	return out
}

// Retrieve embeds a standalone query and runs a top-K similarity search
// scoped to the document's namespace. The store's descending-score
// ordering is taken as authoritative. An empty result set is a valid
// outcome, not an error.
func (e *Engine) Retrieve(ctx context.Context, fileID, query string, topK int) ([]vectorstore.Result, error) {
	if topK <= 0 {
		topK = e.topK
	}
	embs, err := e.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	results, err := e.store.Query(ctx, fileID, embs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search namespace %s: %w", fileID, err)
	}
	return results, nil
}

// Answer generates a grounded answer from retrieved chunks, the
// conversation history, and the original (not contextualized) question.
// A generation failure here is terminal for the request.
func (e *Engine) Answer(ctx context.Context, question string, history []Turn, chunks []RetrievedChunk) (string, error) {
	out, err := e.gen.Generate(ctx, buildAnswerPrompt(question, history, chunks))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Query runs the full query path: contextualize, retrieve, answer.
func (e *Engine) Query(ctx context.Context, fileID, question string, history []Turn, topK int) (*QueryResult, error) {
	contextualized := e.Contextualize(ctx, question, history)

	results, err := e.Retrieve(ctx, fileID, contextualized, topK)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &QueryResult{
			Answer:              NoContextAnswer,
			Chunks:              []RetrievedChunk{},
			ContextualizedQuery: contextualized,
		}, nil
	}

	chunks := make([]RetrievedChunk, len(results))
	for i, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page_number"])
		if page <= 0 {
			page = 1
		}
		chunks[i] = RetrievedChunk{
			Text:       r.Metadata["text"],
			PageNumber: page,
			Score:      r.Score,
		}
	}

	answer, err := e.Answer(ctx, question, history, chunks)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Answer:              answer,
		Chunks:              chunks,
		ContextualizedQuery: contextualized,
	}, nil
}
