package domain

import "time"

// IngestJobStatus tracks the lifecycle of a queued document ingestion.
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob is a queued request to ingest one document. Jobs are claimed
// and processed by the background worker; a failed document never aborts
// the rest of the batch.
type IngestJob struct {
	ID        string
	Source    string
	Title     string
	Text      string
	Status    IngestJobStatus
	Retries   int
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateIngestJob checks required fields and status membership.
func ValidateIngestJob(job *IngestJob) error {
	if job.ID == "" || job.Source == "" {
		return ErrMissingRequiredField
	}
	switch job.Status {
	case IngestJobStatusPending, IngestJobStatusProcessing, IngestJobStatusCompleted, IngestJobStatusFailed:
		return nil
	default:
		return ErrInvalidIngestStatus
	}
}
