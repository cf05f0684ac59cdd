package handlers

import (
	"context"
	"net/http"

	"github.com/orbital-research/bioastra/internal/api"
)

// MediaURLSigner issues presigned download URLs for stored media assets.
type MediaURLSigner interface {
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

type MediaHandler struct {
	signer MediaURLSigner
}

// NewMediaHandler accepts a nil signer; requests then answer 501 until
// object storage is configured.
func NewMediaHandler(signer MediaURLSigner) *MediaHandler {
	return &MediaHandler{signer: signer}
}

// GetURL returns a presigned download URL for a media asset key, which is
// "<source>/<mediaID>".
func (h *MediaHandler) GetURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		api.Error(w, http.StatusBadRequest, "key is required")
		return
	}

	if h.signer == nil {
		api.Error(w, http.StatusNotImplemented, "media storage is not configured")
		return
	}

	url, err := h.signer.GenerateDownloadURL(r.Context(), key)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to generate download URL")
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"url": url})
}
