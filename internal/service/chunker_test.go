package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(text string) *domain.Document {
	return &domain.Document{
		ID:      "doc-1",
		Title:   "Test Document",
		RawText: text,
	}
}

func TestChunkDocument_EmptyText(t *testing.T) {
	chunks := ChunkDocument(testDoc(""), DefaultChunkConfig())
	assert.Empty(t, chunks)

	chunks = ChunkDocument(testDoc("   \n\n  \t "), DefaultChunkConfig())
	assert.Empty(t, chunks)
}

func TestChunkDocument_SingleChunk(t *testing.T) {
	text := "Go is a statically typed language. It compiles to native code."
	chunks := ChunkDocument(testDoc(text), DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "doc-1#0", chunks[0].ID)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, "Test Document", chunks[0].DocumentTitle)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[0].TotalChunks)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, estimateTokens(text), chunks[0].TokenCount)
}

func TestChunkDocument_DeterministicIDs(t *testing.T) {
	text := strings.Repeat("This sentence has exactly six words. ", 40)
	cfg := ChunkConfig{TargetTokens: 40, OverlapTokens: 8}

	first := ChunkDocument(testDoc(text), cfg)
	second := ChunkDocument(testDoc(text), cfg)

	require.Equal(t, len(first), len(second))
	require.Greater(t, len(first), 1)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, domain.ChunkID("doc-1", i), first[i].ID)
		assert.Equal(t, i, first[i].ChunkIndex)
		assert.Equal(t, len(first), first[i].TotalChunks)
	}
}

func TestChunkDocument_LongDocumentPacksToTargetBudget(t *testing.T) {
	// 100 sentences of nine words each, 12 estimated tokens apiece,
	// roughly 1200 tokens in total. With the default 400/50 config a
	// chunk packs 33 sentences (396 tokens) and the overlap walks back
	// the trailing four (48 tokens).
	sentences := make([]string, 100)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("Sentence number %d carries exactly nine words of text.", i)
	}
	text := strings.Join(sentences, " ")

	chunks := ChunkDocument(testDoc(text), DefaultChunkConfig())
	require.Len(t, chunks, 4)

	tokenCounts := make([]int, len(chunks))
	for i, c := range chunks {
		tokenCounts[i] = c.TokenCount
	}
	assert.Equal(t, []int{396, 396, 396, 156}, tokenCounts)

	for i, c := range chunks {
		assert.Equal(t, domain.ChunkID("doc-1", i), c.ID)
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, 4, c.TotalChunks)
		// Chunks break only on sentence boundaries.
		for _, s := range splitSentenceTexts(c.Text) {
			assert.Contains(t, sentences, s)
		}
	}

	// Each chunk starts with the trailing four sentences of the
	// previous one.
	for i := 1; i < len(chunks); i++ {
		prev := splitSentenceTexts(chunks[i-1].Text)
		cur := splitSentenceTexts(chunks[i].Text)
		require.GreaterOrEqual(t, len(prev), 4)
		require.GreaterOrEqual(t, len(cur), 4)
		assert.Equal(t, prev[len(prev)-4:], cur[:4])
	}

	again := ChunkDocument(testDoc(text), DefaultChunkConfig())
	assert.Equal(t, chunks, again)
}

func TestChunkDocument_OverlapSharesSentences(t *testing.T) {
	// Five sentences of six words each, eight estimated tokens apiece.
	// With a target of 20 tokens a chunk holds two sentences and the
	// overlap of eight tokens re-includes the trailing one.
	sentences := []string{
		"Alpha alpha alpha alpha alpha one.",
		"Bravo bravo bravo bravo bravo two.",
		"Charlie charlie charlie charlie charlie three.",
		"Delta delta delta delta delta four.",
		"Echo echo echo echo echo five.",
	}
	text := strings.Join(sentences, " ")
	cfg := ChunkConfig{TargetTokens: 20, OverlapTokens: 8}

	chunks := ChunkDocument(testDoc(text), cfg)
	require.Len(t, chunks, 4)

	assert.Equal(t, sentences[0]+" "+sentences[1], chunks[0].Text)
	assert.Equal(t, sentences[1]+" "+sentences[2], chunks[1].Text)
	assert.Equal(t, sentences[2]+" "+sentences[3], chunks[2].Text)
	assert.Equal(t, sentences[3]+" "+sentences[4], chunks[3].Text)
}

func TestChunkDocument_NoMidSentenceSplits(t *testing.T) {
	sentences := []string{
		"The scheduler assigns goroutines to operating system threads.",
		"Channels synchronize goroutines without explicit locks.",
		"The garbage collector runs concurrently with the program.",
		"Interfaces are satisfied implicitly by method sets.",
		"Deferred calls run when the surrounding function returns.",
		"Slices share backing arrays until one of them grows.",
	}
	text := strings.Join(sentences, " ")
	cfg := ChunkConfig{TargetTokens: 25, OverlapTokens: 5}

	chunks := ChunkDocument(testDoc(text), cfg)
	require.NotEmpty(t, chunks)

	// Every sentence must appear intact in at least one chunk, and every
	// chunk must be a concatenation of whole sentences.
	joined := ""
	for _, c := range chunks {
		joined += c.Text + " "
		for _, part := range splitSentenceTexts(c.Text) {
			assert.Contains(t, sentences, part)
		}
	}
	for _, s := range sentences {
		assert.Contains(t, joined, s)
	}
}

func TestChunkDocument_OversizedSentenceStandsAlone(t *testing.T) {
	long := "word " + strings.Repeat("word ", 28) + "word."
	long = strings.TrimSpace(long)
	text := "Short one. " + long + " Short two."
	cfg := ChunkConfig{TargetTokens: 10, OverlapTokens: 0}

	chunks := ChunkDocument(testDoc(text), cfg)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Short one.", chunks[0].Text)
	assert.Equal(t, long, chunks[1].Text)
	assert.Equal(t, "Short two.", chunks[2].Text)
	assert.Greater(t, chunks[1].TokenCount, cfg.TargetTokens)
}

func TestChunkDocument_ParagraphBoundariesPreserved(t *testing.T) {
	text := "First paragraph sentence one. First paragraph sentence two.\n\nSecond paragraph sentence."
	chunks := ChunkDocument(testDoc(text), DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "First paragraph sentence one. First paragraph sentence two.\n\nSecond paragraph sentence.", chunks[0].Text)
}

func TestChunkDocument_ZeroConfigFallsBackToDefaults(t *testing.T) {
	text := "A single sentence."
	chunks := ChunkDocument(testDoc(text), ChunkConfig{})

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplitSentenceTexts(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "terminal punctuation",
			input:    "One. Two! Three?",
			expected: []string{"One.", "Two!", "Three?"},
		},
		{
			name:     "punctuation run stays together",
			input:    "Really?! Yes... maybe.",
			expected: []string{"Really?!", "Yes...", "maybe."},
		},
		{
			name:     "decimal point does not split",
			input:    "Version 1.5 shipped today. It works.",
			expected: []string{"Version 1.5 shipped today.", "It works."},
		},
		{
			name:     "no trailing punctuation",
			input:    "First part. trailing fragment",
			expected: []string{"First part.", "trailing fragment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitSentenceTexts(tt.input))
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 0, estimateTokens("   "))
	assert.Equal(t, 2, estimateTokens("one"))
	assert.Equal(t, 8, estimateTokens("one two three four five six"))
}
