package domain

import "fmt"

// Chunk is a bounded span of a document's text, independently
// embeddable and retrievable. Chunk IDs are a deterministic function of
// (document ID, chunk index) so re-ingestion overwrites cleanly.
type Chunk struct {
	ID            string
	DocumentID    string
	DocumentTitle string
	ChunkIndex    int
	TotalChunks   int
	Text          string
	TokenCount    int
	Embedding     []float32
}

// ChunkID derives the stable identifier for a chunk position.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s#%d", documentID, index)
}

// ScoredChunk pairs a chunk with its cosine similarity to a query.
// Similarity is in [-1, 1].
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float32
}
