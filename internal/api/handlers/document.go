package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orbital-research/bioastra/internal/api"
	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/service"
)

type DocumentHandler struct {
	documents service.DocumentReader
	queue     service.IngestQueue
}

func NewDocumentHandler(documents service.DocumentReader, queue service.IngestQueue) *DocumentHandler {
	return &DocumentHandler{documents: documents, queue: queue}
}

type IngestDocumentRequest struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

type IngestAcceptedResponse struct {
	JobID  string `json:"job_id"`
	Source string `json:"source"`
	Status string `json:"status"`
}

type DocumentResponse struct {
	Source     string `json:"source"`
	Title      string `json:"title"`
	CharCount  int    `json:"char_count"`
	ChunkCount int    `json:"chunk_count"`
	ImageCount int    `json:"image_count"`
	TableCount int    `json:"table_count"`
	IngestedAt string `json:"ingested_at"`
}

type DocumentListResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func documentToResponse(doc *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		Source:     doc.Source,
		Title:      doc.Title,
		CharCount:  doc.CharCount,
		ChunkCount: doc.ChunkCount,
		ImageCount: doc.ImageCount,
		TableCount: doc.TableCount,
		IngestedAt: doc.IngestedAt.UTC().Format(time.RFC3339),
	}
}

// Ingest enqueues a document for background ingestion and returns 202.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Source) == "" {
		api.Error(w, http.StatusBadRequest, "source is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	job := &domain.IngestJob{
		ID:     uuid.NewString(),
		Source: req.Source,
		Title:  req.Title,
		Text:   req.Text,
		Status: domain.IngestJobStatusPending,
	}

	if err := h.queue.Create(r.Context(), job); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, IngestAcceptedResponse{
		JobID:  job.ID,
		Source: job.Source,
		Status: string(job.Status),
	})
}

// List returns ingested documents newest first with cursor pagination.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.documents.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := DocumentListResponse{
		Items:   make([]*DocumentResponse, 0, len(page.Items)),
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}
	for _, doc := range page.Items {
		resp.Items = append(resp.Items, documentToResponse(doc))
	}

	api.Success(w, http.StatusOK, resp)
}

// Get returns ingestion stats for one document.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	if source == "" {
		api.Error(w, http.StatusBadRequest, "source is required")
		return
	}

	doc, err := h.documents.GetBySource(r.Context(), source)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

// GetJob returns the state of one ingest job.
func (h *DocumentHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.queue.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"job_id":  job.ID,
		"source":  job.Source,
		"status":  string(job.Status),
		"retries": job.Retries,
		"error":   job.Error,
	})
}
