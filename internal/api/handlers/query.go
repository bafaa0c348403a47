package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/askdocs-ai/askdocs/internal/api"
	"github.com/askdocs-ai/askdocs/internal/domain"
	"github.com/askdocs-ai/askdocs/internal/service"
)

// QueryService defines the question-answering pipeline used by the handler
type QueryService interface {
	Query(ctx context.Context, question string, opts service.QueryOptions) (*domain.AnswerResult, error)
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

// QueryRequest is the body of POST /query. An omitted or zero
// similarity_threshold uses the server default; -1 disables the
// similarity gate.
type QueryRequest struct {
	Question            string  `json:"question"`
	MaxChunks           int     `json:"max_chunks,omitempty"`
	SimilarityThreshold float32 `json:"similarity_threshold,omitempty"`
	MaxContextTokens    int     `json:"max_context_tokens,omitempty"`
}

type SourceResponse struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	ChunkID    string  `json:"chunk_id"`
	Similarity float32 `json:"similarity"`
}

type QueryResponse struct {
	Answer     string           `json:"answer"`
	Sources    []SourceResponse `json:"sources"`
	Confidence float32          `json:"confidence"`
	ElapsedMS  int64            `json:"elapsed_ms"`
}

// Query handles POST /query
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := h.svc.Query(r.Context(), req.Question, service.QueryOptions{
		MaxChunks:           req.MaxChunks,
		SimilarityThreshold: req.SimilarityThreshold,
		MaxContextTokens:    req.MaxContextTokens,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := make([]SourceResponse, len(result.Sources))
	for i, s := range result.Sources {
		sources[i] = SourceResponse{
			DocumentID: s.DocumentID,
			Title:      s.Title,
			ChunkID:    s.ChunkID,
			Similarity: s.Similarity,
		}
	}

	api.Success(w, http.StatusOK, QueryResponse{
		Answer:     result.Answer,
		Sources:    sources,
		Confidence: result.Confidence,
		ElapsedMS:  result.ElapsedMS,
	})
}
