package service

import (
	"strings"

	"github.com/askdocs-ai/askdocs/internal/domain"
)

const summaryMaxChars = 150

// AssembleContext converts a ranked chunk list into a hierarchical
// prompt context: the highest-similarity chunk verbatim, the rest
// compressed into short bullets. Hierarchical one-detailed plus
// many-summarized context bounds prompt growth linearly in chunk count
// rather than in chunk size.
func AssembleContext(chunks []domain.ScoredChunk) domain.RetrievalContext {
	if len(chunks) == 0 {
		return domain.RetrievalContext{}
	}

	primary := chunks[0]
	total := primary.Chunk.TokenCount

	secondary := make([]domain.ScoredChunk, 0, len(chunks)-1)
	for _, c := range chunks[1:] {
		total += c.Chunk.TokenCount
		compressed := c
		compressed.Chunk.Text = summarizeChunk(c.Chunk.Text)
		secondary = append(secondary, compressed)
	}

	return domain.RetrievalContext{
		Primary:     &primary,
		Secondary:   secondary,
		TotalTokens: total,
	}
}

// summarizeChunk reduces a chunk to its leading key sentence, falling
// back to a truncated prefix with an ellipsis marker.
func summarizeChunk(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	if clean == "" {
		return ""
	}

	if sentences := splitSentenceTexts(clean); len(sentences) > 0 {
		first := sentences[0]
		if len([]rune(first)) <= summaryMaxChars {
			return first
		}
	}

	runes := []rune(clean)
	if len(runes) <= summaryMaxChars {
		return clean
	}
	return strings.TrimSpace(string(runes[:summaryMaxChars])) + "…"
}
