package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/orbital-research/bioastra/internal/api"
	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/stream"
)

type AskService interface {
	Ask(ctx context.Context, query string, role domain.Role) <-chan stream.Event
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Query string `json:"query"`
	Role  string `json:"role"`
}

// Ask streams the answer pipeline as server-sent events. The response is
// always a complete stream ending in a done event; pipeline failures
// surface as an error event, not as an HTTP error status.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	role := domain.ParseRole(req.Role)
	events := h.svc.Ask(r.Context(), req.Query, role)
	for ev := range events {
		writeEvent(w, ev)
		flusher.Flush()
	}
}

func writeEvent(w io.Writer, ev stream.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		data = []byte(`{"type":"error","content":{"code":"INTERNAL_ERROR","message":"event encoding failed"}}`)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}
