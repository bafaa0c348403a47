package service

import (
	"context"
	"strings"
	"time"

	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/askdocs-ai/askdocs/internal/telemetry"
)

// QueryOptions carries per-request overrides. Zero values fall back to
// the documented defaults (threshold 0.7, context budget 2000 tokens,
// chunk budget from the query analyzer). A threshold of exactly 0 is
// indistinguishable from unset; to disable the similarity gate pass -1,
// which admits every candidate.
type QueryOptions struct {
	MaxChunks           int
	SimilarityThreshold float32
	MaxContextTokens    int
}

// QueryDefaults are deployment-level retrieval settings applied when a
// request leaves the corresponding option unset.
type QueryDefaults struct {
	SimilarityThreshold float32
	MaxContextTokens    int
}

// QueryService runs the read path: analyze, retrieve, assemble,
// synthesize. Each query is an independent, stateless pipeline
// instance; nothing is shared across queries beyond the read-only index
// and the embedding cache.
type QueryService struct {
	retriever   *Retriever
	synthesizer *Synthesizer
	defaults    QueryDefaults
}

// NewQueryService creates a new QueryService instance.
func NewQueryService(retriever *Retriever, synthesizer *Synthesizer) *QueryService {
	return &QueryService{retriever: retriever, synthesizer: synthesizer}
}

// NewQueryServiceWithDefaults creates a QueryService with explicit
// deployment defaults for threshold and context budget.
func NewQueryServiceWithDefaults(retriever *Retriever, synthesizer *Synthesizer, defaults QueryDefaults) *QueryService {
	return &QueryService{retriever: retriever, synthesizer: synthesizer, defaults: defaults}
}

// Query answers a natural-language question from the indexed documents.
func (s *QueryService) Query(ctx context.Context, question string, opts QueryOptions) (*domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if opts.SimilarityThreshold < -1 || opts.SimilarityThreshold > 1 {
		return nil, domain.ErrInvalidThreshold
	}

	start := time.Now()

	maxChunks := opts.MaxChunks
	if maxChunks <= 0 {
		maxChunks = ClassifyQuery(question).ChunkBudget
	}
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = s.defaults.SimilarityThreshold
	}
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = s.defaults.MaxContextTokens
	}

	retrieveCtx, span := telemetry.StartSpan(ctx, "query.retrieve", telemetry.SpanAttributes{Operation: "retrieve"})
	chunks, err := s.retriever.Retrieve(retrieveCtx, RetrieveInput{
		Query:               question,
		MaxChunks:           maxChunks,
		SimilarityThreshold: opts.SimilarityThreshold,
		MaxContextTokens:    opts.MaxContextTokens,
	})
	if err != nil {
		span.SetError(err)
		span.End()
		return nil, err
	}
	span.End()

	rc := AssembleContext(chunks)

	generateCtx, span := telemetry.StartSpan(ctx, "query.synthesize", telemetry.SpanAttributes{Operation: "synthesize"})
	result, err := s.synthesizer.Synthesize(generateCtx, question, rc)
	if err != nil {
		span.SetError(err)
		span.End()
		return nil, err
	}
	span.End()

	result.ElapsedMS = time.Since(start).Milliseconds()
	return result, nil
}
