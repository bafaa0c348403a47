package domain

// RetrievalContext is the hierarchical prompt context built per query:
// one full-text primary chunk plus compressed supporting summaries.
type RetrievalContext struct {
	Primary     *ScoredChunk
	Secondary   []ScoredChunk
	TotalTokens int
}

// Empty reports whether retrieval found no usable context.
func (c RetrievalContext) Empty() bool {
	return c.Primary == nil
}

// Source identifies a chunk that contributed to an answer.
type Source struct {
	DocumentID string
	Title      string
	ChunkID    string
	Similarity float32
}

// AnswerResult is the final output of the query pipeline.
type AnswerResult struct {
	Answer     string
	Sources    []Source
	Confidence float32
	ElapsedMS  int64
}
