package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/askdocs-ai/askdocs/internal/api"
	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/askdocs-ai/askdocs/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// IngestService defines the document write path used by the handler
type IngestService interface {
	Ingest(ctx context.Context, doc *domain.Document) (*service.IngestResult, error)
	Remove(ctx context.Context, documentID string) (*service.RemoveResult, error)
}

// IngestJobQueue enqueues background re-index jobs
type IngestJobQueue interface {
	Create(ctx context.Context, job *domain.IngestJob) error
}

type DocumentHandler struct {
	svc  IngestService
	jobs IngestJobQueue
}

func NewDocumentHandler(svc IngestService, jobs IngestJobQueue) *DocumentHandler {
	return &DocumentHandler{svc: svc, jobs: jobs}
}

type IngestRequest struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

type IngestResponse struct {
	DocumentID    string `json:"document_id"`
	ChunksCreated int    `json:"chunks_created"`
}

type RemoveResponse struct {
	DocumentID    string `json:"document_id"`
	ChunksRemoved int    `json:"chunks_removed"`
}

type ReindexResponse struct {
	JobID string `json:"job_id"`
}

// Ingest handles POST /documents
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	docID := strings.TrimSpace(req.ID)
	if docID == "" {
		docID = uuid.NewString()
	}

	doc := &domain.Document{
		ID:        docID,
		Title:     req.Title,
		Source:    req.Source,
		RawText:   req.Text,
		CreatedAt: time.Now().UTC(),
	}

	result, err := h.svc.Ingest(r.Context(), doc)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{
		DocumentID:    docID,
		ChunksCreated: result.ChunksCreated,
	})
}

// Remove handles DELETE /documents/{id}
func (h *DocumentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	if docID == "" {
		api.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	result, err := h.svc.Remove(r.Context(), docID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, RemoveResponse{
		DocumentID:    docID,
		ChunksRemoved: result.ChunksRemoved,
	})
}

// Reindex handles POST /documents/{id}/reindex by enqueueing a
// background job rather than re-embedding inline.
func (h *DocumentHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	if docID == "" {
		api.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	job := &domain.IngestJob{
		ID:         uuid.NewString(),
		DocumentID: docID,
		Status:     domain.IngestJobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.jobs.Create(r.Context(), job); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, ReindexResponse{JobID: job.ID})
}
