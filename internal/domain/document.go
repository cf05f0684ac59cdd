package domain

import "time"

// MediaKind distinguishes the two asset types a document can reference inline.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindTable MediaKind = "table"
)

// MediaReference is an inline marker in document text denoting a figure or
// table asset. Start and End are byte offsets of the marker in the owning
// document's text, [Start, End).
type MediaReference struct {
	ID    string
	Kind  MediaKind
	Start int
	End   int
}

// Document represents one ingested source paper. Documents are immutable
// once ingested; re-ingesting a source replaces its chunks wholesale.
type Document struct {
	Source     string
	Title      string
	CharCount  int
	ChunkCount int
	ImageCount int
	TableCount int
	IngestedAt time.Time
}
