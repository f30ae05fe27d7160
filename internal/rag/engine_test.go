package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mrafey292/smartpdf-sub000/internal/vectorstore"
)

type stubGenerator struct {
	calls   int
	prompts []string
	fn      func(prompt string) (string, error)
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.fn(prompt)
}

type stubEmbedder struct {
	calls int
	err   error
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

type stubStore struct {
	results []vectorstore.Result
	err     error
	queries int
}

func (s *stubStore) Upsert(context.Context, string, []vectorstore.Vector) error { return nil }

func (s *stubStore) Query(context.Context, string, []float32, int) ([]vectorstore.Result, error) {
	s.queries++
	return s.results, s.err
}

func (s *stubStore) DeleteAll(context.Context, string) error { return nil }

func newTestEngine(gen *stubGenerator, store *stubStore) (*Engine, *stubEmbedder) {
	emb := &stubEmbedder{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(gen, emb, store, 5, log), emb
}

func TestContextualize_EmptyHistorySkipsGeneration(t *testing.T) {
	gen := &stubGenerator{fn: func(string) (string, error) {
		t.Fatal("generator must not be called with empty history")
		return "", nil
	}}
	e, _ := newTestEngine(gen, &stubStore{})

	got := e.Contextualize(context.Background(), "What is the warranty period?", nil)
	if got != "What is the warranty period?" {
		t.Errorf("question changed without history: %q", got)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestContextualize_RewritesWithHistory(t *testing.T) {
	gen := &stubGenerator{fn: func(string) (string, error) {
		return "  What is the warranty period of the X200 drill?  ", nil
	}}
	e, _ := newTestEngine(gen, &stubStore{})

	history := []Turn{
		{Role: "user", Text: "Tell me about the X200 drill."},
		{Role: "assistant", Text: "It is a cordless drill."},
	}
	got := e.Contextualize(context.Background(), "What about its warranty?", history)
	if got != "What is the warranty period of the X200 drill?" {
		t.Errorf("contextualized = %q", got)
	}
	if !strings.Contains(gen.prompts[0], "X200 drill") {
		t.Errorf("history missing from prompt")
	}
	if !strings.Contains(gen.prompts[0], "What about its warranty?") {
		t.Errorf("question missing from prompt")
	}
}

func TestContextualize_FailureFallsBackToOriginal(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) (string, error)
	}{
		{"generation error", func(string) (string, error) { return "", errors.New("llm down") }},
		{"blank output", func(string) (string, error) { return "   \n", nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestEngine(&stubGenerator{fn: tc.fn}, &stubStore{})
			got := e.Contextualize(context.Background(), "original question", []Turn{{Text: "hi"}})
			if got != "original question" {
				t.Errorf("got %q, want the original question", got)
			}
		})
	}
}

func TestQuery_EmptyRetrievalReturnsFixedAnswer(t *testing.T) {
	gen := &stubGenerator{fn: func(string) (string, error) {
		t.Fatal("generator must not run when nothing was retrieved")
		return "", nil
	}}
	e, _ := newTestEngine(gen, &stubStore{})

	res, err := e.Query(context.Background(), "file-1", "anything relevant?", nil, 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Answer != NoContextAnswer {
		t.Errorf("answer = %q, want the fixed no-context answer", res.Answer)
	}
	if res.Chunks == nil || len(res.Chunks) != 0 {
		t.Errorf("chunks = %v, want empty non-nil slice", res.Chunks)
	}
	if res.ContextualizedQuery != "anything relevant?" {
		t.Errorf("contextualized query = %q", res.ContextualizedQuery)
	}
}

func TestQuery_FullPath(t *testing.T) {
	store := &stubStore{results: []vectorstore.Result{
		{ID: "f_chunk_0", Score: 0.92, Metadata: map[string]string{"text": "warranty lasts two years", "page_number": "12"}},
		{ID: "f_chunk_3", Score: 0.55, Metadata: map[string]string{"text": "register within 30 days", "page_number": "13"}},
	}}
	gen := &stubGenerator{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "standalone search query") {
			return "warranty period of the X200", nil
		}
		return "Two years, per page 12.", nil
	}}
	e, _ := newTestEngine(gen, store)

	history := []Turn{{Role: "user", Text: "about the X200"}}
	res, err := e.Query(context.Background(), "file-1", "how long is the warranty?", history, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if res.ContextualizedQuery != "warranty period of the X200" {
		t.Errorf("contextualized query = %q", res.ContextualizedQuery)
	}
	if res.Answer != "Two years, per page 12." {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(res.Chunks))
	}
	if res.Chunks[0].PageNumber != 12 || res.Chunks[1].PageNumber != 13 {
		t.Errorf("page numbers = %d, %d, want 12, 13", res.Chunks[0].PageNumber, res.Chunks[1].PageNumber)
	}

	// The answer prompt carries page-labeled excerpts and the original,
	// not the contextualized, question.
	answerPrompt := gen.prompts[len(gen.prompts)-1]
	if !strings.Contains(answerPrompt, "[Page 12]") || !strings.Contains(answerPrompt, "[Page 13]") {
		t.Errorf("answer prompt missing page labels")
	}
	if !strings.Contains(answerPrompt, "Question: how long is the warranty?") {
		t.Errorf("answer prompt must use the original question")
	}
}

func TestQuery_MissingPageMetadataDefaultsToOne(t *testing.T) {
	store := &stubStore{results: []vectorstore.Result{
		{ID: "f_chunk_0", Score: 0.5, Metadata: map[string]string{"text": "unattributed"}},
	}}
	gen := &stubGenerator{fn: func(string) (string, error) { return "answer", nil }}
	e, _ := newTestEngine(gen, store)

	res, err := e.Query(context.Background(), "file-1", "q", nil, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Chunks[0].PageNumber != 1 {
		t.Errorf("page = %d, want default 1", res.Chunks[0].PageNumber)
	}
}

func TestQuery_AnswerFailureIsTerminal(t *testing.T) {
	store := &stubStore{results: []vectorstore.Result{
		{ID: "f_chunk_0", Score: 0.5, Metadata: map[string]string{"text": "x", "page_number": "1"}},
	}}
	gen := &stubGenerator{fn: func(string) (string, error) {
		return "", errors.New("llm down")
	}}
	e, _ := newTestEngine(gen, store)

	if _, err := e.Query(context.Background(), "file-1", "q", nil, 1); err == nil {
		t.Fatal("expected terminal error when answer generation fails")
	}
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	e, emb := newTestEngine(&stubGenerator{fn: func(string) (string, error) { return "", nil }}, &stubStore{})
	emb.err = errors.New("embedder down")

	if _, err := e.Retrieve(context.Background(), "file-1", "q", 5); err == nil {
		t.Fatal("expected error")
	}
}
