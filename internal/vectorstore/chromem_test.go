package vectorstore

import (
	"context"
	"testing"
)

func inMemoryStore(t *testing.T) *ChromemStore {
	t.Helper()
	s, err := NewChromemStore("")
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	return s
}

func sampleVectors() []Vector {
	return []Vector{
		{ID: "f_chunk_0", Values: []float32{1, 0, 0}, Metadata: map[string]string{"text": "alpha", "page_number": "1"}},
		{ID: "f_chunk_1", Values: []float32{0, 1, 0}, Metadata: map[string]string{"text": "beta", "page_number": "2"}},
		{ID: "f_chunk_2", Values: []float32{0, 0, 1}, Metadata: map[string]string{"text": "gamma", "page_number": "3"}},
	}
}

func TestChromemStore_UpsertAndQuery(t *testing.T) {
	s := inMemoryStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "ns", sampleVectors()); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := s.Query(ctx, "ns", []float32{0, 1, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "f_chunk_1" {
		t.Errorf("top result = %q, want the aligned vector f_chunk_1", results[0].ID)
	}
	if results[0].Metadata["text"] != "beta" {
		t.Errorf("metadata not round-tripped: %v", results[0].Metadata)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not ordered by descending score")
	}
}

func TestChromemStore_QueryClampsTopK(t *testing.T) {
	s := inMemoryStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "ns", sampleVectors()); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Asking for more results than stored must not error.
	results, err := s.Query(ctx, "ns", []float32{1, 0, 0}, 50)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want all 3", len(results))
	}
}

func TestChromemStore_QueryUnknownNamespace(t *testing.T) {
	s := inMemoryStore(t)

	results, err := s.Query(context.Background(), "never-created", []float32{1}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from an unknown namespace, want 0", len(results))
	}
}

func TestChromemStore_UpsertOverwritesSameID(t *testing.T) {
	s := inMemoryStore(t)
	ctx := context.Background()

	first := []Vector{{ID: "f_chunk_0", Values: []float32{1, 0}, Metadata: map[string]string{"text": "old"}}}
	second := []Vector{{ID: "f_chunk_0", Values: []float32{0, 1}, Metadata: map[string]string{"text": "new"}}}

	if err := s.Upsert(ctx, "ns", first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.Upsert(ctx, "ns", second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	results, err := s.Query(ctx, "ns", []float32{0, 1}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (same ID overwritten)", len(results))
	}
	if results[0].Metadata["text"] != "new" {
		t.Errorf("metadata = %q, want overwritten value", results[0].Metadata["text"])
	}
}

func TestChromemStore_DeleteAll(t *testing.T) {
	s := inMemoryStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "ns", sampleVectors()); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.DeleteAll(ctx, "ns"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}

	results, err := s.Query(ctx, "ns", []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Query after delete: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("namespace still has %d vectors after DeleteAll", len(results))
	}

	// Deleting a namespace that never existed is a no-op.
	if err := s.DeleteAll(ctx, "absent"); err != nil {
		t.Errorf("DeleteAll on absent namespace: %v", err)
	}
}

func TestChromemStore_NamespaceIsolation(t *testing.T) {
	s := inMemoryStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "doc-a", sampleVectors()[:1]); err != nil {
		t.Fatalf("Upsert doc-a: %v", err)
	}
	if err := s.Upsert(ctx, "doc-b", sampleVectors()[1:]); err != nil {
		t.Fatalf("Upsert doc-b: %v", err)
	}

	results, err := s.Query(ctx, "doc-a", []float32{0, 1, 0}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, r := range results {
		if r.ID != "f_chunk_0" {
			t.Errorf("vector %q from another namespace leaked into doc-a", r.ID)
		}
	}
}
