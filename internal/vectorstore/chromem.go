package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
)

// ChromemStore is a Store backed by the embedded chromem-go database.
// Each namespace maps to one collection.
type ChromemStore struct {
	db *chromem.DB
}

// NewChromemStore opens a persistent store at path, or an in-memory store
// when path is empty.
func NewChromemStore(path string) (*ChromemStore, error) {
	if path == "" {
		return &ChromemStore{db: chromem.NewDB()}, nil
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	return &ChromemStore{db: db}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, namespace string, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	col, err := s.db.GetOrCreateCollection(namespace, nil, nil)
	if err != nil {
		return fmt.Errorf("get collection %s: %w", namespace, err)
	}

	docs := make([]chromem.Document, len(vectors))
	for i, v := range vectors {
		docs[i] = chromem.Document{
			ID:        v.ID,
			Content:   v.Metadata["text"],
			Metadata:  v.Metadata,
			Embedding: v.Values,
		}
	}
	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents to %s: %w", namespace, err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Result, error) {
	col := s.db.GetCollection(namespace, nil)
	if col == nil {
		return nil, nil
	}

	n := topK
	if count := col.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	hits, err := col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", namespace, err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			ID:       h.ID,
			Score:    h.Similarity,
			Metadata: h.Metadata,
		}
	}
	return results, nil
}

func (s *ChromemStore) DeleteAll(ctx context.Context, namespace string) error {
	if s.db.GetCollection(namespace, nil) == nil {
		return nil
	}
	if err := s.db.DeleteCollection(namespace); err != nil {
		return fmt.Errorf("delete collection %s: %w", namespace, err)
	}
	return nil
}
