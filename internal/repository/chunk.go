package repository

import (
	"context"

	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository stores chunk vectors and answers nearest-neighbor
// queries over them.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a document and inserts the
// new set. Chunk IDs are deterministic per (document, index), so this
// is safe to repeat.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		_, err := r.db.Exec(ctx,
			`INSERT INTO document_chunks
				(id, document_id, document_title, chunk_index, total_chunks, content, token_count, embedding)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID,
			c.DocumentID,
			c.DocumentTitle,
			c.ChunkIndex,
			c.TotalChunks,
			c.Text,
			c.TokenCount,
			pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// SearchByEmbedding returns the nearest chunks to the query vector with
// cosine similarity scores. Soft-deleted documents are excluded.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.document_id, c.document_title, c.chunk_index, c.total_chunks,
		        c.content, c.token_count,
		        1 - (c.embedding <=> $1) AS similarity
		 FROM document_chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE NOT d.deleted
		 ORDER BY c.embedding <=> $1
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.ScoredChunk, 0, limit)
	for rows.Next() {
		var sc domain.ScoredChunk
		if err := rows.Scan(
			&sc.Chunk.ID,
			&sc.Chunk.DocumentID,
			&sc.Chunk.DocumentTitle,
			&sc.Chunk.ChunkIndex,
			&sc.Chunk.TotalChunks,
			&sc.Chunk.Text,
			&sc.Chunk.TokenCount,
			&sc.Similarity,
		); err != nil {
			return nil, err
		}
		results = append(results, sc)
	}

	return results, rows.Err()
}

// DeleteByDocument removes all chunks for a document and reports how
// many were deleted. An unknown document yields zero, not an error.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
