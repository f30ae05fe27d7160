package index

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder turns texts into fixed-length vectors, preserving input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LangchainEmbedder is an Embedder backed by an OpenAI-compatible
// embedding endpoint.
type LangchainEmbedder struct {
	impl *embeddings.EmbedderImpl
}

func NewLangchainEmbedder(baseURL, apiKey, model string) (*LangchainEmbedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	return &LangchainEmbedder{impl: impl}, nil
}

func (e *LangchainEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.impl.EmbedDocuments(ctx, texts)
}
