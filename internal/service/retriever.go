package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/askdocs-ai/askdocs/internal/domain"
)

const (
	// DefaultSimilarityThreshold is the relevance gate: candidates
	// below it are dropped. Intentionally strict; the system says
	// "I don't know" rather than answer from weak matches.
	DefaultSimilarityThreshold float32 = 0.7

	// DefaultMaxContextTokens bounds the total token count of chunks
	// fed into a single prompt.
	DefaultMaxContextTokens = 2000

	overFetchFactor   = 3
	minCandidateFetch = 10
)

// QueryEmbedder converts a query into its embedding vector.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkIndex answers nearest-neighbor queries over stored chunk
// vectors, returning cosine similarity per candidate.
type ChunkIndex interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.ScoredChunk, error)
}

// RetrieveInput carries one retrieval request. A SimilarityThreshold
// of exactly 0 means unset and falls back to
// DefaultSimilarityThreshold; pass -1 to admit every candidate.
type RetrieveInput struct {
	Query               string
	MaxChunks           int
	SimilarityThreshold float32
	MaxContextTokens    int
}

// Retriever orchestrates query embedding, nearest-neighbor search,
// threshold filtering and budget enforcement.
type Retriever struct {
	embedder QueryEmbedder
	index    ChunkIndex
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder QueryEmbedder, index ChunkIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve returns the relevant chunks for a query, ordered by
// similarity descending. An empty result is not an error; the caller
// must render a "no relevant documents" answer rather than fabricate
// one.
func (r *Retriever) Retrieve(ctx context.Context, input RetrieveInput) ([]domain.ScoredChunk, error) {
	if input.MaxChunks <= 0 {
		input.MaxChunks = budgetModerate
	}
	if input.SimilarityThreshold == 0 {
		input.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if input.MaxContextTokens <= 0 {
		input.MaxContextTokens = DefaultMaxContextTokens
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, input.Query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrQueryCancelled
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	// Over-fetch so threshold filtering still leaves enough candidates.
	fetch := input.MaxChunks * overFetchFactor
	if fetch < minCandidateFetch {
		fetch = minCandidateFetch
	}

	candidates, err := r.index.SearchByEmbedding(ctx, embedding, fetch)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrQueryCancelled
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if c.Similarity >= input.SimilarityThreshold {
			filtered = append(filtered, c)
		}
	}

	sortCandidates(filtered)

	return selectWithinBudget(filtered, input.MaxChunks, input.MaxContextTokens), nil
}

// sortCandidates orders by similarity descending; ties break by chunk
// index ascending (earlier context preferred), then document ID, so two
// identical queries against an unchanged index always order the same.
func sortCandidates(chunks []domain.ScoredChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Similarity != chunks[j].Similarity {
			return chunks[i].Similarity > chunks[j].Similarity
		}
		if chunks[i].Chunk.ChunkIndex != chunks[j].Chunk.ChunkIndex {
			return chunks[i].Chunk.ChunkIndex < chunks[j].Chunk.ChunkIndex
		}
		return chunks[i].Chunk.DocumentID < chunks[j].Chunk.DocumentID
	})
}

// selectWithinBudget walks the sorted list accumulating token counts.
// A chunk that would blow the budget is skipped, not terminal: a later,
// shorter chunk might still fit.
func selectWithinBudget(sorted []domain.ScoredChunk, maxChunks, maxTokens int) []domain.ScoredChunk {
	selected := make([]domain.ScoredChunk, 0, maxChunks)
	total := 0
	for _, c := range sorted {
		if len(selected) >= maxChunks {
			break
		}
		if total+c.Chunk.TokenCount > maxTokens {
			continue
		}
		selected = append(selected, c)
		total += c.Chunk.TokenCount
	}
	return selected
}
