package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/askdocs-ai/askdocs/internal/domain"
)

// ChunkEmbedder generates embeddings for a batch of chunk texts.
type ChunkEmbedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore persists chunk vectors with their metadata.
type ChunkStore interface {
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
}

// DocumentStore persists document records for the core's read side.
type DocumentStore interface {
	Upsert(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	MarkDeleted(ctx context.Context, id string) error
}

// IngestResult reports the outcome of an ingestion.
type IngestResult struct {
	ChunksCreated int
}

// RemoveResult reports the outcome of a document removal.
type RemoveResult struct {
	ChunksRemoved int
}

// IngestService runs the write path: chunk, embed, index. Ingestion is
// idempotent per document: chunk IDs are deterministic, so re-ingesting
// identical content overwrites prior chunks cleanly.
type IngestService struct {
	embedder ChunkEmbedder
	chunks   ChunkStore
	docs     DocumentStore
	chunkCfg ChunkConfig
	tx       TxRunner
}

// NewIngestService creates a new IngestService instance.
func NewIngestService(embedder ChunkEmbedder, chunks ChunkStore, docs DocumentStore) *IngestService {
	return NewIngestServiceWithConfig(embedder, chunks, docs, DefaultChunkConfig())
}

// NewIngestServiceWithConfig creates an IngestService with explicit
// chunking settings.
func NewIngestServiceWithConfig(embedder ChunkEmbedder, chunks ChunkStore, docs DocumentStore, cfg ChunkConfig) *IngestService {
	return &IngestService{
		embedder: embedder,
		chunks:   chunks,
		docs:     docs,
		chunkCfg: cfg,
	}
}

// NewIngestServiceWithTx creates an IngestService whose document and
// chunk writes run in a single transaction.
func NewIngestServiceWithTx(embedder ChunkEmbedder, chunks ChunkStore, docs DocumentStore, cfg ChunkConfig, tx TxRunner) *IngestService {
	svc := NewIngestServiceWithConfig(embedder, chunks, docs, cfg)
	svc.tx = tx
	return svc
}

// Ingest chunks a document, embeds the chunks and writes them to the
// vector index. A document with no extractable text indexes zero chunks
// and is not an error. Embeddings are generated before any write, so a
// failed embedding call leaves the previous document version intact.
func (s *IngestService) Ingest(ctx context.Context, doc *domain.Document) (*IngestResult, error) {
	if doc == nil || strings.TrimSpace(doc.ID) == "" {
		return nil, domain.ErrEmptyDocumentID
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	chunks := ChunkDocument(doc, s.chunkCfg)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}

		embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, domain.ErrQueryCancelled
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		if len(embeddings) != len(chunks) {
			return nil, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}
	}

	if s.tx != nil {
		err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
			return persistIngest(ctx, repos.Documents(), repos.Chunks(), doc, chunks)
		})
		if err != nil {
			return nil, err
		}
		return &IngestResult{ChunksCreated: len(chunks)}, nil
	}

	if err := persistIngest(ctx, s.docs, s.chunks, doc, chunks); err != nil {
		return nil, err
	}
	return &IngestResult{ChunksCreated: len(chunks)}, nil
}

// persistIngest writes the document record and replaces its chunks.
// An empty chunk slice clears any chunks from a prior version.
func persistIngest(ctx context.Context, docs DocumentStore, chunkStore ChunkStore, doc *domain.Document, chunks []domain.Chunk) error {
	if err := docs.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	if err := chunkStore.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}
	return nil
}

// Reingest re-chunks and re-embeds a stored document. Called by the
// background worker for re-index jobs.
func (s *IngestService) Reingest(ctx context.Context, documentID string) error {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	_, err = s.Ingest(ctx, doc)
	return err
}

// Remove deletes all chunks for a document. An unknown document ID is
// tolerated and reports zero removed chunks.
func (s *IngestService) Remove(ctx context.Context, documentID string) (*RemoveResult, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, domain.ErrEmptyDocumentID
	}

	if s.tx != nil {
		var removed int
		err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
			var err error
			removed, err = persistRemove(ctx, repos.Documents(), repos.Chunks(), documentID)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &RemoveResult{ChunksRemoved: removed}, nil
	}

	removed, err := persistRemove(ctx, s.docs, s.chunks, documentID)
	if err != nil {
		return nil, err
	}
	return &RemoveResult{ChunksRemoved: removed}, nil
}

// persistRemove tombstones the document and drops its chunks. An
// unknown document ID is tolerated.
func persistRemove(ctx context.Context, docs DocumentStore, chunkStore ChunkStore, documentID string) (int, error) {
	if err := docs.MarkDeleted(ctx, documentID); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		return 0, fmt.Errorf("failed to mark document deleted: %w", err)
	}

	removed, err := chunkStore.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}
	return removed, nil
}
