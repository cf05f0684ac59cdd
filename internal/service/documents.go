package service

import (
	"context"

	"github.com/orbital-research/bioastra/internal/domain"
)

// DocumentPage is one page of a document listing.
type DocumentPage struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// DocumentReader exposes stored documents to the API layer.
type DocumentReader interface {
	GetBySource(ctx context.Context, source string) (*domain.Document, error)
	List(ctx context.Context, limit int, cursor string) (*DocumentPage, error)
}

// IngestQueue enqueues and inspects ingest jobs.
type IngestQueue interface {
	Create(ctx context.Context, job *domain.IngestJob) error
	GetByID(ctx context.Context, id string) (*domain.IngestJob, error)
}
