package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMediaURLSigner struct {
	mock.Mock
}

func (m *MockMediaURLSigner) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func TestMediaHandler_GetURL_Success(t *testing.T) {
	mockSigner := new(MockMediaURLSigner)
	handler := NewMediaHandler(mockSigner)

	mockSigner.On("GenerateDownloadURL", mock.Anything, "paper-a/img-001").Return("https://s3.example/presigned", nil)

	req := httptest.NewRequest(http.MethodGet, "/media/url?key=paper-a/img-001", nil)
	rec := httptest.NewRecorder()

	handler.GetURL(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://s3.example/presigned")
	mockSigner.AssertExpectations(t)
}

func TestMediaHandler_GetURL_MissingKey(t *testing.T) {
	handler := NewMediaHandler(new(MockMediaURLSigner))

	req := httptest.NewRequest(http.MethodGet, "/media/url", nil)
	rec := httptest.NewRecorder()

	handler.GetURL(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMediaHandler_GetURL_StorageNotConfigured(t *testing.T) {
	handler := NewMediaHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/media/url?key=paper-a/img-001", nil)
	rec := httptest.NewRecorder()

	handler.GetURL(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "media storage is not configured")
}

func TestMediaHandler_GetURL_SignerFailure(t *testing.T) {
	mockSigner := new(MockMediaURLSigner)
	handler := NewMediaHandler(mockSigner)

	mockSigner.On("GenerateDownloadURL", mock.Anything, "k").Return("", errors.New("s3 unreachable"))

	req := httptest.NewRequest(http.MethodGet, "/media/url?key=k", nil)
	rec := httptest.NewRecorder()

	handler.GetURL(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
