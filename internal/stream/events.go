// Package stream defines the typed event sequence produced by the answer
// pipeline and consumed by the transport layer. Events are emitted in a
// fixed order: thinking steps, then title, paragraphs, metadata, and a
// terminal done marker. A failed pipeline emits exactly one error event
// before done; the stream is never left without a terminal marker.
package stream

import "context"

// EventType identifies one kind of stream event.
type EventType string

const (
	EventThinking  EventType = "thinking"
	EventTitle     EventType = "title"
	EventParagraph EventType = "paragraph"
	EventMetadata  EventType = "metadata"
	EventError     EventType = "error"
	EventDone      EventType = "done"
)

// Event is one element of the answer stream.
type Event struct {
	Type    EventType `json:"type"`
	Content any       `json:"content,omitempty"`
}

// SectionPayload is the content of a paragraph event.
type SectionPayload struct {
	Index  int      `json:"index"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Images []string `json:"images,omitempty"`
	Tables []string `json:"tables,omitempty"`
}

// MetadataPayload is the content of the metadata event.
type MetadataPayload struct {
	Role         string `json:"role"`
	SectionCount int    `json:"section_count"`
	ImagesUsed   int    `json:"images_used"`
	TablesUsed   int    `json:"tables_used"`
	SourceCount  int    `json:"source_count"`
}

// ErrorPayload is the content of an error event.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Emit delivers an event unless the context has been cancelled. It reports
// whether the event was delivered; producers stop emitting on false.
func Emit(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- ev:
		return true
	}
}
