package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/askdocs-ai/askdocs/internal/domain"
)

const (
	// NoContextAnswer is returned without calling the language model
	// when retrieval produced nothing above the similarity threshold.
	NoContextAnswer = "I could not find any relevant documents for this question. Try rephrasing it or adding the missing documents first."

	primaryWeight   = 0.6
	secondaryWeight = 0.4
)

// CompletionClient sends a prompt to the language-model service.
type CompletionClient interface {
	CreateCompletion(ctx context.Context, system, user string) (string, error)
}

// SynthesizerConfig controls generation timeout and retry behavior.
type SynthesizerConfig struct {
	Timeout      time.Duration
	RetryBackoff time.Duration
}

// DefaultSynthesizerConfig returns the default generation settings.
func DefaultSynthesizerConfig() SynthesizerConfig {
	return SynthesizerConfig{
		Timeout:      30 * time.Second,
		RetryBackoff: 2 * time.Second,
	}
}

// Synthesizer builds the final prompt, calls the language model and
// packages the answer with sources and a confidence score.
type Synthesizer struct {
	llm CompletionClient
	cfg SynthesizerConfig
}

// NewSynthesizer creates a new Synthesizer instance.
func NewSynthesizer(llm CompletionClient) *Synthesizer {
	return NewSynthesizerWithConfig(llm, DefaultSynthesizerConfig())
}

// NewSynthesizerWithConfig creates a Synthesizer with explicit settings.
func NewSynthesizerWithConfig(llm CompletionClient, cfg SynthesizerConfig) *Synthesizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSynthesizerConfig().Timeout
	}
	return &Synthesizer{llm: llm, cfg: cfg}
}

// Synthesize answers the question from the supplied context. An empty
// context short-circuits to a templated answer with confidence zero and
// never reaches the language model.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, rc domain.RetrievalContext) (*domain.AnswerResult, error) {
	if rc.Empty() {
		return &domain.AnswerResult{
			Answer:     NoContextAnswer,
			Sources:    []domain.Source{},
			Confidence: 0,
		}, nil
	}

	system, user := buildPrompt(question, rc)

	answer, err := s.generateWithRetry(ctx, system, user)
	if err != nil {
		return nil, err
	}

	return &domain.AnswerResult{
		Answer:     answer,
		Sources:    collectSources(rc),
		Confidence: computeConfidence(rc),
	}, nil
}

// generateWithRetry performs the model call with a bounded timeout and
// a single retry on timeout or transient failure. A second failure
// surfaces to the caller. Cancellation from the parent context and
// permanent API rejections are never retried.
func (s *Synthesizer) generateWithRetry(ctx context.Context, system, user string) (string, error) {
	answer, err := s.generateOnce(ctx, system, user)
	if err == nil {
		return answer, nil
	}
	if ctx.Err() != nil {
		return "", domain.ErrQueryCancelled
	}
	if errors.Is(err, domain.ErrGenerationRejected) {
		return "", err
	}

	timedOut := errors.Is(err, context.DeadlineExceeded)

	select {
	case <-ctx.Done():
		return "", domain.ErrQueryCancelled
	case <-time.After(s.cfg.RetryBackoff):
	}

	answer, err = s.generateOnce(ctx, system, user)
	if err == nil {
		return answer, nil
	}
	if ctx.Err() != nil {
		return "", domain.ErrQueryCancelled
	}
	if errors.Is(err, domain.ErrGenerationRejected) {
		return "", err
	}
	if timedOut || errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
	}
	return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
}

func (s *Synthesizer) generateOnce(ctx context.Context, system, user string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.llm.CreateCompletion(attemptCtx, system, user)
}

// buildPrompt assembles the structured prompt: grounding instruction,
// the primary chunk labeled as main source, the secondary bullets as
// supporting context, then the question.
func buildPrompt(question string, rc domain.RetrievalContext) (system, user string) {
	system = "You answer questions strictly from the supplied context. " +
		"If the context does not contain the answer, say so explicitly instead of guessing."

	var b strings.Builder
	b.WriteString("Main source (")
	b.WriteString(rc.Primary.Chunk.DocumentTitle)
	b.WriteString("):\n")
	b.WriteString(rc.Primary.Chunk.Text)
	b.WriteString("\n")

	if len(rc.Secondary) > 0 {
		b.WriteString("\nSupporting context:\n")
		for _, c := range rc.Secondary {
			b.WriteString("- ")
			if c.Chunk.DocumentTitle != "" {
				b.WriteString(c.Chunk.DocumentTitle)
				b.WriteString(": ")
			}
			b.WriteString(c.Chunk.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)

	return system, b.String()
}

func collectSources(rc domain.RetrievalContext) []domain.Source {
	sources := make([]domain.Source, 0, 1+len(rc.Secondary))
	sources = append(sources, sourceFromChunk(*rc.Primary))
	for _, c := range rc.Secondary {
		sources = append(sources, sourceFromChunk(c))
	}
	return sources
}

func sourceFromChunk(c domain.ScoredChunk) domain.Source {
	return domain.Source{
		DocumentID: c.Chunk.DocumentID,
		Title:      c.Chunk.DocumentTitle,
		ChunkID:    c.Chunk.ID,
		Similarity: c.Similarity,
	}
}

// computeConfidence weights the primary chunk's similarity at 0.6 and
// spreads 0.4 across the secondaries. With no secondaries the primary
// similarity stands alone. Clamped to [0, 1].
func computeConfidence(rc domain.RetrievalContext) float32 {
	if rc.Primary == nil {
		return 0
	}
	confidence := rc.Primary.Similarity
	if len(rc.Secondary) > 0 {
		var sum float32
		for _, c := range rc.Secondary {
			sum += c.Similarity
		}
		mean := sum / float32(len(rc.Secondary))
		confidence = primaryWeight*rc.Primary.Similarity + secondaryWeight*mean
	}
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
