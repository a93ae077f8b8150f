package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cloo-solutions/linkdigest/internal/domain"
	"github.com/cloo-solutions/linkdigest/internal/telemetry"
)

const (
	// SummaryQuery is the fixed query used to pick chunks for a summary.
	SummaryQuery = "Give me a summary of context."
	DefaultTopK  = 4

	embedBatchSize = 64
)

// Embedder converts texts into vectors, one per input, in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EphemeralIndex is an in-memory vector index that lives for one request.
// It is never shared or updated after construction.
type EphemeralIndex struct {
	embedder Embedder
	entries  []domain.EmbeddedChunk
}

// NewEphemeralIndex embeds every non-blank chunk and returns the populated
// index. Whitespace-only chunks carry nothing to retrieve and are skipped.
func NewEphemeralIndex(ctx context.Context, embedder Embedder, chunks []domain.TextChunk) (*EphemeralIndex, error) {
	chunks = nonBlank(chunks)

	ctx, span := telemetry.StartSpan(ctx, "index.build", telemetry.SpanAttributes{
		Operation: "embed_chunks",
		Count:     len(chunks),
	})
	defer span.End()

	entries := make([]domain.EmbeddedChunk, 0, len(chunks))
	for i := 0; i < len(chunks); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		vectors, err := embedder.EmbedTexts(ctx, domain.ChunkTexts(batch))
		if err != nil {
			span.SetError(err)
			return nil, asEmbeddingError("failed to embed content", err)
		}
		if len(vectors) != len(batch) {
			err := fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
			span.SetError(err)
			return nil, domain.NewEmbeddingError("failed to embed content", err)
		}
		for j, c := range batch {
			entries = append(entries, domain.EmbeddedChunk{Chunk: c, Vector: vectors[j]})
		}
	}

	return &EphemeralIndex{embedder: embedder, entries: entries}, nil
}

func nonBlank(chunks []domain.TextChunk) []domain.TextChunk {
	out := make([]domain.TextChunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			out = append(out, c)
		}
	}
	return out
}

func (ix *EphemeralIndex) Len() int {
	return len(ix.entries)
}

// Retrieve embeds query and returns the k most similar chunks, best first.
// Equal scores keep document order.
func (ix *EphemeralIndex) Retrieve(ctx context.Context, query string, k int) ([]domain.TextChunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(ix.entries) == 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, asEmbeddingError("failed to embed query", err)
	}
	if len(vectors) != 1 {
		return nil, domain.NewEmbeddingError("failed to embed query", fmt.Errorf("expected 1 embedding, got %d", len(vectors)))
	}
	queryVec := vectors[0]

	type scored struct {
		chunk domain.TextChunk
		score float64
	}
	results := make([]scored, 0, len(ix.entries))
	for _, e := range ix.entries {
		results = append(results, scored{chunk: e.Chunk, score: cosineSimilarity(queryVec, e.Vector)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}
	out := make([]domain.TextChunk, 0, k)
	for _, r := range results[:k] {
		out = append(out, r.chunk)
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func asEmbeddingError(message string, err error) error {
	if domain.HasCode(err, domain.ErrCodeEmbedding) {
		return err
	}
	return domain.NewEmbeddingError(message, err)
}
