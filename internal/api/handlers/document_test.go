package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/service"
)

type MockDocumentReader struct {
	mock.Mock
}

func (m *MockDocumentReader) GetBySource(ctx context.Context, source string) (*domain.Document, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentReader) List(ctx context.Context, limit int, cursor string) (*service.DocumentPage, error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentPage), args.Error(1)
}

type MockIngestQueue struct {
	mock.Mock
}

func (m *MockIngestQueue) Create(ctx context.Context, job *domain.IngestJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockIngestQueue) GetByID(ctx context.Context, id string) (*domain.IngestJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestJob), args.Error(1)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentHandler_Ingest_Accepted(t *testing.T) {
	mockQueue := new(MockIngestQueue)
	handler := NewDocumentHandler(new(MockDocumentReader), mockQueue)

	mockQueue.On("Create", mock.Anything, mock.MatchedBy(func(job *domain.IngestJob) bool {
		return job.ID != "" && job.Source == "paper-a" && job.Status == domain.IngestJobStatusPending
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"source":"paper-a","title":"Paper A","text":"body"}`))
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Data IngestAcceptedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "paper-a", resp.Data.Source)
	assert.Equal(t, "pending", resp.Data.Status)
	assert.NotEmpty(t, resp.Data.JobID)
	mockQueue.AssertExpectations(t)
}

func TestDocumentHandler_Ingest_MissingSource(t *testing.T) {
	mockQueue := new(MockIngestQueue)
	handler := NewDocumentHandler(new(MockDocumentReader), mockQueue)

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"text":"body"}`))
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockQueue.AssertNotCalled(t, "Create")
}

func TestDocumentHandler_Ingest_MissingText(t *testing.T) {
	mockQueue := new(MockIngestQueue)
	handler := NewDocumentHandler(new(MockDocumentReader), mockQueue)

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"source":"paper-a"}`))
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockQueue.AssertNotCalled(t, "Create")
}

func TestDocumentHandler_List_Success(t *testing.T) {
	mockReader := new(MockDocumentReader)
	handler := NewDocumentHandler(mockReader, new(MockIngestQueue))

	page := &service.DocumentPage{
		Items: []*domain.Document{
			{Source: "paper-a", Title: "Paper A", ChunkCount: 4, IngestedAt: time.Now()},
		},
		NextCursor: "abc",
		HasMore:    true,
	}
	mockReader.On("List", mock.Anything, 20, "").Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data DocumentListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "paper-a", resp.Data.Items[0].Source)
	assert.Equal(t, "abc", resp.Data.Cursor)
	assert.True(t, resp.Data.HasMore)
}

func TestDocumentHandler_List_InvalidLimit(t *testing.T) {
	mockReader := new(MockDocumentReader)
	handler := NewDocumentHandler(mockReader, new(MockIngestQueue))

	for _, raw := range []string{"0", "-5", "101", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit="+raw, nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", raw)
	}
	mockReader.AssertNotCalled(t, "List")
}

func TestDocumentHandler_List_PassesLimitAndCursor(t *testing.T) {
	mockReader := new(MockDocumentReader)
	handler := NewDocumentHandler(mockReader, new(MockIngestQueue))

	mockReader.On("List", mock.Anything, 50, "cursor123").Return(&service.DocumentPage{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents?limit=50&cursor=cursor123", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockReader.AssertExpectations(t)
}

func TestDocumentHandler_Get_Success(t *testing.T) {
	mockReader := new(MockDocumentReader)
	handler := NewDocumentHandler(mockReader, new(MockIngestQueue))

	doc := &domain.Document{Source: "paper-a", Title: "Paper A", ImageCount: 2, IngestedAt: time.Now()}
	mockReader.On("GetBySource", mock.Anything, "paper-a").Return(doc, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/documents/paper-a", nil), "source", "paper-a")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"paper-a"`)
	assert.Contains(t, rec.Body.String(), `"image_count":2`)
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	mockReader := new(MockDocumentReader)
	handler := NewDocumentHandler(mockReader, new(MockIngestQueue))

	mockReader.On("GetBySource", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/documents/missing", nil), "source", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_GetJob_Success(t *testing.T) {
	mockQueue := new(MockIngestQueue)
	handler := NewDocumentHandler(new(MockDocumentReader), mockQueue)

	job := &domain.IngestJob{ID: "job-1", Source: "paper-a", Status: domain.IngestJobStatusProcessing, Retries: 1}
	mockQueue.On("GetByID", mock.Anything, "job-1").Return(job, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil), "id", "job-1")
	rec := httptest.NewRecorder()

	handler.GetJob(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"job_id":"job-1"`)
	assert.Contains(t, rec.Body.String(), `"status":"processing"`)
}

func TestDocumentHandler_GetJob_NotFound(t *testing.T) {
	mockQueue := new(MockIngestQueue)
	handler := NewDocumentHandler(new(MockDocumentReader), mockQueue)

	mockQueue.On("GetByID", mock.Anything, "nope").Return(nil, domain.ErrIngestJobNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/jobs/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()

	handler.GetJob(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
