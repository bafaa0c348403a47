package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChunkEmbedder mocks batch embedding generation
type MockChunkEmbedder struct {
	mock.Mock
}

func (m *MockChunkEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockChunkStore mocks the chunk repository
type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	args := m.Called(ctx, documentID, chunks)
	return args.Error(0)
}

func (m *MockChunkStore) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

// MockDocumentStore mocks the document repository
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Upsert(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentStore) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) MarkDeleted(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func embeddingsFor(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i), 0.5}
	}
	return out
}

func TestIngestService_Ingest_Success(t *testing.T) {
	mockEmbedder := new(MockChunkEmbedder)
	mockChunks := new(MockChunkStore)
	mockDocs := new(MockDocumentStore)
	svc := NewIngestService(mockEmbedder, mockChunks, mockDocs)

	ctx := context.Background()
	doc := &domain.Document{
		ID:      "doc-1",
		Title:   "Guide",
		RawText: "First sentence of the guide. Second sentence with more words.",
	}

	mockDocs.On("Upsert", ctx, doc).Return(nil)
	mockEmbedder.On("GenerateEmbeddings", ctx, mock.Anything).Return(embeddingsFor(1), nil)
	mockChunks.On("ReplaceChunks", ctx, "doc-1", mock.MatchedBy(func(chunks []domain.Chunk) bool {
		return len(chunks) == 1 &&
			chunks[0].ID == "doc-1#0" &&
			len(chunks[0].Embedding) == 2
	})).Return(nil)

	result, err := svc.Ingest(ctx, doc)

	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksCreated)
	mockDocs.AssertExpectations(t)
	mockEmbedder.AssertExpectations(t)
	mockChunks.AssertExpectations(t)
}

func TestIngestService_Ingest_EmptyDocumentID(t *testing.T) {
	svc := NewIngestService(new(MockChunkEmbedder), new(MockChunkStore), new(MockDocumentStore))

	_, err := svc.Ingest(context.Background(), &domain.Document{ID: "  ", RawText: "text"})

	assert.ErrorIs(t, err, domain.ErrEmptyDocumentID)

	_, err = svc.Ingest(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyDocumentID)
}

func TestIngestService_Ingest_NoTextClearsChunks(t *testing.T) {
	mockEmbedder := new(MockChunkEmbedder)
	mockChunks := new(MockChunkStore)
	mockDocs := new(MockDocumentStore)
	svc := NewIngestService(mockEmbedder, mockChunks, mockDocs)

	ctx := context.Background()
	doc := &domain.Document{ID: "doc-1", Title: "Empty", RawText: "   "}

	mockDocs.On("Upsert", ctx, doc).Return(nil)
	mockChunks.On("ReplaceChunks", ctx, "doc-1", []domain.Chunk(nil)).Return(nil)

	result, err := svc.Ingest(ctx, doc)

	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunksCreated)
	mockEmbedder.AssertNotCalled(t, "GenerateEmbeddings")
	mockChunks.AssertExpectations(t)
}

func TestIngestService_Ingest_EmbeddingUnavailable(t *testing.T) {
	mockEmbedder := new(MockChunkEmbedder)
	mockChunks := new(MockChunkStore)
	mockDocs := new(MockDocumentStore)
	svc := NewIngestService(mockEmbedder, mockChunks, mockDocs)

	ctx := context.Background()
	doc := &domain.Document{ID: "doc-1", Title: "Guide", RawText: "Some text to embed."}

	mockDocs.On("Upsert", ctx, doc).Return(nil)
	mockEmbedder.On("GenerateEmbeddings", ctx, mock.Anything).Return(nil, errors.New("api down"))

	_, err := svc.Ingest(ctx, doc)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	mockChunks.AssertNotCalled(t, "ReplaceChunks")
}

func TestIngestService_Ingest_ReingestIsIdempotent(t *testing.T) {
	mockEmbedder := new(MockChunkEmbedder)
	mockChunks := new(MockChunkStore)
	mockDocs := new(MockDocumentStore)
	svc := NewIngestServiceWithConfig(mockEmbedder, mockChunks, mockDocs, ChunkConfig{TargetTokens: 20, OverlapTokens: 0})

	ctx := context.Background()
	text := strings.Repeat("Same content every single time here. ", 6)
	doc := &domain.Document{ID: "doc-1", Title: "Stable", RawText: text}

	var calls [][]string
	mockDocs.On("Upsert", ctx, doc).Return(nil).Twice()
	mockEmbedder.On("GenerateEmbeddings", ctx, mock.Anything).Return(embeddingsFor(3), nil).Twice()
	mockChunks.On("ReplaceChunks", ctx, "doc-1", mock.Anything).
		Run(func(args mock.Arguments) {
			var ids []string
			for _, c := range args.Get(2).([]domain.Chunk) {
				ids = append(ids, c.ID)
			}
			calls = append(calls, ids)
		}).
		Return(nil).Twice()

	first, err := svc.Ingest(ctx, doc)
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, first.ChunksCreated, second.ChunksCreated)
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
	assert.Equal(t, []string{"doc-1#0", "doc-1#1", "doc-1#2"}, calls[0])
}

func TestIngestService_Remove_Success(t *testing.T) {
	mockChunks := new(MockChunkStore)
	mockDocs := new(MockDocumentStore)
	svc := NewIngestService(new(MockChunkEmbedder), mockChunks, mockDocs)

	ctx := context.Background()
	mockDocs.On("MarkDeleted", ctx, "doc-1").Return(nil)
	mockChunks.On("DeleteByDocument", ctx, "doc-1").Return(4, nil)

	result, err := svc.Remove(ctx, "doc-1")

	require.NoError(t, err)
	assert.Equal(t, 4, result.ChunksRemoved)
}

func TestIngestService_Remove_UnknownDocumentTolerated(t *testing.T) {
	mockChunks := new(MockChunkStore)
	mockDocs := new(MockDocumentStore)
	svc := NewIngestService(new(MockChunkEmbedder), mockChunks, mockDocs)

	ctx := context.Background()
	mockDocs.On("MarkDeleted", ctx, "ghost").Return(domain.ErrDocumentNotFound)
	mockChunks.On("DeleteByDocument", ctx, "ghost").Return(0, nil)

	result, err := svc.Remove(ctx, "ghost")

	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunksRemoved)
}

func TestIngestService_Remove_EmptyID(t *testing.T) {
	svc := NewIngestService(new(MockChunkEmbedder), new(MockChunkStore), new(MockDocumentStore))

	_, err := svc.Remove(context.Background(), "  ")

	assert.ErrorIs(t, err, domain.ErrEmptyDocumentID)
}

func TestIngestService_Reingest(t *testing.T) {
	mockEmbedder := new(MockChunkEmbedder)
	mockChunks := new(MockChunkStore)
	mockDocs := new(MockDocumentStore)
	svc := NewIngestService(mockEmbedder, mockChunks, mockDocs)

	ctx := context.Background()
	doc := &domain.Document{ID: "doc-1", Title: "Stored", RawText: "Stored text to re-embed."}

	mockDocs.On("GetByID", ctx, "doc-1").Return(doc, nil)
	mockDocs.On("Upsert", ctx, doc).Return(nil)
	mockEmbedder.On("GenerateEmbeddings", ctx, mock.Anything).Return(embeddingsFor(1), nil)
	mockChunks.On("ReplaceChunks", ctx, "doc-1", mock.Anything).Return(nil)

	err := svc.Reingest(ctx, "doc-1")

	require.NoError(t, err)
	mockDocs.AssertExpectations(t)
}

func TestIngestService_Reingest_DocumentNotFound(t *testing.T) {
	mockDocs := new(MockDocumentStore)
	svc := NewIngestService(new(MockChunkEmbedder), new(MockChunkStore), mockDocs)

	ctx := context.Background()
	mockDocs.On("GetByID", ctx, "ghost").Return(nil, domain.ErrDocumentNotFound)

	err := svc.Reingest(ctx, "ghost")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
