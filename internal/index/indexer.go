package index

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mrafey292/smartpdf-sub000/internal/vectorstore"
)

// DefaultBatchSize bounds embedding and upsert request payloads.
const DefaultBatchSize = 100

// ChunkRecord is one chunk ready for embedding, with its page attribution.
type ChunkRecord struct {
	Index   int
	Text    string
	Page    int
	Heading string
}

// Indexer embeds chunk texts and writes them into the vector store under
// the document's namespace. Any failure here is fatal to the ingestion
// run: a partially written index is not considered usable.
type Indexer struct {
	embedder        Embedder
	store           vectorstore.Store
	embedBatchSize  int
	upsertBatchSize int
	log             *slog.Logger
}

func NewIndexer(embedder Embedder, store vectorstore.Store, embedBatchSize, upsertBatchSize int, log *slog.Logger) *Indexer {
	if embedBatchSize <= 0 {
		embedBatchSize = DefaultBatchSize
	}
	if upsertBatchSize <= 0 {
		upsertBatchSize = DefaultBatchSize
	}
	return &Indexer{
		embedder:        embedder,
		store:           store,
		embedBatchSize:  embedBatchSize,
		upsertBatchSize: upsertBatchSize,
		log:             log,
	}
}

// VectorID builds the deterministic vector ID for a chunk, so that
// re-ingesting the same file overwrites prior vectors instead of
// duplicating them.
func VectorID(fileID string, chunkIndex int) string {
	return fmt.Sprintf("%s_chunk_%d", fileID, chunkIndex)
}

// IndexChunks embeds all chunks in batches and upserts them under the
// fileID namespace. Embedding batches are issued sequentially.
func (ix *Indexer) IndexChunks(ctx context.Context, fileID string, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors := make([]vectorstore.Vector, 0, len(chunks))
	for start := 0; start < len(chunks); start += ix.embedBatchSize {
		end := start + ix.embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Text
		}

		embs, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(embs) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(embs), len(texts))
		}

		for i, emb := range embs {
			c := chunks[start+i]
			vectors = append(vectors, vectorstore.Vector{
				ID:       VectorID(fileID, c.Index),
				Values:   emb,
				Metadata: chunkMetadata(fileID, c),
			})
		}
	}

	for start := 0; start < len(vectors); start += ix.upsertBatchSize {
		end := start + ix.upsertBatchSize
		if end > len(vectors) {
			end = len(vectors)
		}
		if err := ix.store.Upsert(ctx, fileID, vectors[start:end]); err != nil {
			return fmt.Errorf("upsert vectors %d-%d: %w", start, end-1, err)
		}
	}

	ix.log.Info("indexed chunks", "file_id", fileID, "chunks", len(chunks))
	return nil
}

func chunkMetadata(fileID string, c ChunkRecord) map[string]string {
	md := map[string]string{
		"file_id":     fileID,
		"text":        c.Text,
		"chunk_index": strconv.Itoa(c.Index),
		"page_number": strconv.Itoa(c.Page),
	}
	if c.Heading != "" {
		md["heading"] = c.Heading
	}
	return md
}
