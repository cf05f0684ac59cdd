package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/stream"
)

// fakeAskService replays a canned event sequence.
type fakeAskService struct {
	events   []stream.Event
	query    string
	role     domain.Role
	askCalls int
}

func (f *fakeAskService) Ask(ctx context.Context, query string, role domain.Role) <-chan stream.Event {
	f.askCalls++
	f.query = query
	f.role = role
	ch := make(chan stream.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func TestAskHandler_Ask_StreamsEvents(t *testing.T) {
	svc := &fakeAskService{events: []stream.Event{
		{Type: stream.EventThinking, Content: "working"},
		{Type: stream.EventTitle, Content: "Scientist Briefing: bone loss"},
		{Type: stream.EventParagraph, Content: stream.SectionPayload{Index: 0, Title: "Research Context", Body: "text"}},
		{Type: stream.EventMetadata, Content: stream.MetadataPayload{Role: "scientist", SectionCount: 6}},
		{Type: stream.EventDone},
	}}
	handler := NewAskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"bone loss","role":"scientist"}`))
	rec := httptest.NewRecorder()

	handler.Ask(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: thinking\n")
	assert.Contains(t, body, "event: title\n")
	assert.Contains(t, body, "event: paragraph\n")
	assert.Contains(t, body, `"index":0`)
	assert.Contains(t, body, "event: metadata\n")
	assert.True(t, strings.HasSuffix(body, "event: done\ndata: {\"type\":\"done\"}\n\n"))

	assert.Equal(t, "bone loss", svc.query)
	assert.Equal(t, domain.RoleScientist, svc.role)
}

func TestAskHandler_Ask_InvalidBody(t *testing.T) {
	svc := &fakeAskService{}
	handler := NewAskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.askCalls)
}

func TestAskHandler_Ask_EmptyQuery(t *testing.T) {
	svc := &fakeAskService{}
	handler := NewAskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()

	handler.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query is required")
	assert.Equal(t, 0, svc.askCalls)
}

func TestAskHandler_Ask_UnknownRoleDefaultsToScientist(t *testing.T) {
	svc := &fakeAskService{events: []stream.Event{{Type: stream.EventDone}}}
	handler := NewAskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"q","role":"ceo"}`))
	rec := httptest.NewRecorder()

	handler.Ask(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoleScientist, svc.role)
}

func TestAskHandler_Ask_ErrorEventsKeepHTTPStatusOK(t *testing.T) {
	// Failures after the stream has started surface as error events, never
	// as an HTTP error status.
	svc := &fakeAskService{events: []stream.Event{
		{Type: stream.EventThinking, Content: "working"},
		{Type: stream.EventError, Content: stream.ErrorPayload{Code: "RETRIEVAL_UNAVAILABLE", Message: "search down"}},
		{Type: stream.EventDone},
	}}
	handler := NewAskHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()

	handler.Ask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error\n")
	assert.Contains(t, rec.Body.String(), "RETRIEVAL_UNAVAILABLE")
	assert.Contains(t, rec.Body.String(), "event: done\n")
}
