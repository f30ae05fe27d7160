package vectorstore

import "context"

// Vector is one embedded chunk with its metadata.
type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Result is one similarity-search hit. Score is a similarity measure,
// higher is more relevant.
type Result struct {
	ID       string
	Score    float32
	Metadata map[string]string
}

// Store is a namespaced vector index. Namespacing by file ID is the sole
// isolation mechanism between documents.
type Store interface {
	// Upsert writes vectors into a namespace. Re-writing an existing ID
	// replaces the previous vector.
	Upsert(ctx context.Context, namespace string, vectors []Vector) error

	// Query returns up to topK results by descending similarity. A missing
	// or empty namespace yields zero results, not an error.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Result, error)

	// DeleteAll removes an entire namespace.
	DeleteAll(ctx context.Context, namespace string) error
}
