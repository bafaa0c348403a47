package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/askdocs-ai/askdocs/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, doc *domain.Document) (*service.IngestResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func (m *MockIngestService) Remove(ctx context.Context, documentID string) (*service.RemoveResult, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RemoveResult), args.Error(1)
}

type MockIngestJobQueue struct {
	mock.Mock
}

func (m *MockIngestJobQueue) Create(ctx context.Context, job *domain.IngestJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func requestWithURLParam(method, url, key, value string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentHandler_Ingest_Success(t *testing.T) {
	mockSvc := new(MockIngestService)
	mockJobs := new(MockIngestJobQueue)
	handler := NewDocumentHandler(mockSvc, mockJobs)

	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(doc *domain.Document) bool {
		return doc.ID == "doc-1" && doc.Title == "Guide" && doc.RawText == "Some document text."
	})).Return(&service.IngestResult{ChunksCreated: 3}, nil)

	body := `{"id":"doc-1","title":"Guide","text":"Some document text."}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "doc-1", data["document_id"])
	assert.Equal(t, float64(3), data["chunks_created"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Ingest_GeneratesID(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewDocumentHandler(mockSvc, new(MockIngestJobQueue))

	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(doc *domain.Document) bool {
		return doc.ID != ""
	})).Return(&service.IngestResult{ChunksCreated: 1}, nil)

	body := `{"title":"No ID","text":"text"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Ingest_InvalidJSON(t *testing.T) {
	handler := NewDocumentHandler(new(MockIngestService), new(MockIngestJobQueue))

	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(`{invalid`)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestDocumentHandler_Ingest_MissingTitle(t *testing.T) {
	handler := NewDocumentHandler(new(MockIngestService), new(MockIngestJobQueue))

	body := `{"text":"text without title"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
}

func TestDocumentHandler_Ingest_ServiceUnavailable(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewDocumentHandler(mockSvc, new(MockIngestJobQueue))

	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrEmbeddingUnavailable)

	body := `{"id":"doc-1","title":"Guide","text":"text"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDocumentHandler_Remove_Success(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewDocumentHandler(mockSvc, new(MockIngestJobQueue))

	mockSvc.On("Remove", mock.Anything, "doc-1").Return(&service.RemoveResult{ChunksRemoved: 4}, nil)

	req := requestWithURLParam(http.MethodDelete, "/documents/doc-1", "id", "doc-1", nil)
	w := httptest.NewRecorder()

	handler.Remove(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["chunks_removed"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Remove_UnknownDocument(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewDocumentHandler(mockSvc, new(MockIngestJobQueue))

	mockSvc.On("Remove", mock.Anything, "ghost").Return(&service.RemoveResult{ChunksRemoved: 0}, nil)

	req := requestWithURLParam(http.MethodDelete, "/documents/ghost", "id", "ghost", nil)
	w := httptest.NewRecorder()

	handler.Remove(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["chunks_removed"])
}

func TestDocumentHandler_Reindex_EnqueuesJob(t *testing.T) {
	mockJobs := new(MockIngestJobQueue)
	handler := NewDocumentHandler(new(MockIngestService), mockJobs)

	mockJobs.On("Create", mock.Anything, mock.MatchedBy(func(job *domain.IngestJob) bool {
		return job.DocumentID == "doc-1" && job.Status == domain.IngestJobStatusPending && job.ID != ""
	})).Return(nil)

	req := requestWithURLParam(http.MethodPost, "/documents/doc-1/reindex", "id", "doc-1", nil)
	w := httptest.NewRecorder()

	handler.Reindex(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["job_id"])
	mockJobs.AssertExpectations(t)
}
