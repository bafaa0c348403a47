package service

import (
	"strings"

	"github.com/askdocs-ai/askdocs/internal/domain"
)

// ChunkConfig controls how documents are split for embedding.
type ChunkConfig struct {
	TargetTokens  int
	OverlapTokens int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		TargetTokens:  400,
		OverlapTokens: 50,
	}
}

// sentence is a normalized sentence plus the separator that preceded it
// in the normalized document text ("" for the first sentence, " "
// within a paragraph, "\n\n" across paragraphs).
type sentence struct {
	text   string
	sep    string
	tokens int
}

// span is a half-open sentence range [start, end) forming one chunk.
type span struct {
	start int
	end   int
}

// ChunkDocument splits a document's raw text into overlapping chunks.
// Boundaries always fall between sentences; a single sentence longer
// than the target becomes its own chunk unmodified. Empty or
// whitespace-only input yields zero chunks.
func ChunkDocument(doc *domain.Document, cfg ChunkConfig) []domain.Chunk {
	if cfg.TargetTokens <= 0 {
		cfg = DefaultChunkConfig()
	}

	sentences := splitIntoSentences(doc.RawText)
	if len(sentences) == 0 {
		return nil
	}

	spans := chunkSpans(sentences, cfg)

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, sp := range spans {
		text := joinSentences(sentences, sp)
		chunks = append(chunks, domain.Chunk{
			ID:            domain.ChunkID(doc.ID, i),
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
			ChunkIndex:    i,
			TotalChunks:   len(spans),
			Text:          text,
			TokenCount:    estimateTokens(text),
		})
	}
	return chunks
}

// chunkSpans greedily accumulates sentences until adding the next one
// would exceed the target, then re-includes the trailing sentences
// worth of overlap tokens at the start of the following chunk.
func chunkSpans(sentences []sentence, cfg ChunkConfig) []span {
	var spans []span
	start := 0
	for start < len(sentences) {
		end := start
		tokens := 0
		for end < len(sentences) {
			st := sentences[end].tokens
			if end > start && tokens+st > cfg.TargetTokens {
				break
			}
			tokens += st
			end++
		}

		spans = append(spans, span{start: start, end: end})
		if end >= len(sentences) {
			break
		}

		next := end
		if cfg.OverlapTokens > 0 {
			overlap := 0
			// Walk back sentence by sentence; never consume the whole
			// chunk so the next span always makes forward progress.
			for next > start+1 {
				st := sentences[next-1].tokens
				if overlap+st > cfg.OverlapTokens {
					break
				}
				overlap += st
				next--
			}
		}
		start = next
	}
	return spans
}

func joinSentences(sentences []sentence, sp span) string {
	var b strings.Builder
	for i := sp.start; i < sp.end; i++ {
		if i > sp.start {
			b.WriteString(sentences[i].sep)
		}
		b.WriteString(sentences[i].text)
	}
	return b.String()
}

// splitIntoSentences normalizes whitespace and splits text into
// sentences: paragraphs on blank lines, sentences within paragraphs on
// terminal punctuation followed by whitespace.
func splitIntoSentences(raw string) []sentence {
	var out []sentence
	for pi, para := range splitParagraphs(raw) {
		sep := " "
		if pi > 0 {
			sep = "\n\n"
		}
		for si, text := range splitSentenceTexts(para) {
			s := sentence{text: text, sep: " ", tokens: estimateTokens(text)}
			if si == 0 {
				s.sep = sep
			}
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		out[0].sep = ""
	}
	return out
}

// splitParagraphs splits on blank lines and collapses internal
// whitespace runs to single spaces.
func splitParagraphs(raw string) []string {
	var paras []string
	for _, block := range strings.Split(raw, "\n\n") {
		clean := strings.Join(strings.Fields(block), " ")
		if clean != "" {
			paras = append(paras, clean)
		}
	}
	return paras
}

// splitSentenceTexts splits a normalized paragraph on '.', '!' or '?'
// followed by a space. Punctuation stays with its sentence.
func splitSentenceTexts(para string) []string {
	var sentences []string
	runes := []rune(para)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		// Consume a run of terminal punctuation ("?!", "...").
		j := i
		for j+1 < len(runes) && isTerminal(runes[j+1]) {
			j++
		}
		if j+1 < len(runes) && runes[j+1] != ' ' {
			i = j
			continue
		}
		text := strings.TrimSpace(string(runes[start : j+1]))
		if text != "" {
			sentences = append(sentences, text)
		}
		start = j + 2
		i = j + 1
	}
	if start < len(runes) {
		text := strings.TrimSpace(string(runes[start:]))
		if text != "" {
			sentences = append(sentences, text)
		}
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
