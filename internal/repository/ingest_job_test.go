//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/testutil"
)

func newJob(source string) *domain.IngestJob {
	return &domain.IngestJob{
		ID:     uuid.NewString(),
		Source: source,
		Title:  "Title " + source,
		Text:   "document text for " + source,
		Status: domain.IngestJobStatusPending,
	}
}

func TestIngestJobRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	t.Run("create and get by id", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		job := newJob("paper-a")
		require.NoError(t, repo.Create(ctx, job))

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.Source, got.Source)
		assert.Equal(t, job.Title, got.Title)
		assert.Equal(t, job.Text, got.Text)
		assert.Equal(t, domain.IngestJobStatusPending, got.Status)
		assert.Equal(t, 0, got.Retries)
		assert.Empty(t, got.Error)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("create rejects invalid job", func(t *testing.T) {
		err := repo.Create(ctx, &domain.IngestJob{Source: "no-id", Status: domain.IngestJobStatusPending})
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("get missing job", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrIngestJobNotFound)
	})

	t.Run("pending jobs come back oldest first", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		first := newJob("paper-a")
		require.NoError(t, repo.Create(ctx, first))
		second := newJob("paper-b")
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		second.UpdatedAt = second.CreatedAt
		require.NoError(t, repo.Create(ctx, second))

		done := newJob("paper-c")
		done.Status = domain.IngestJobStatusCompleted
		require.NoError(t, repo.Create(ctx, done))

		jobs, err := repo.GetPendingJobs(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, first.ID, jobs[0].ID)
		assert.Equal(t, second.ID, jobs[1].ID)
	})

	t.Run("status and retry lifecycle", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))

		job := newJob("paper-a")
		require.NoError(t, repo.Create(ctx, job))

		require.NoError(t, repo.UpdateJobStatus(ctx, job.ID, domain.IngestJobStatusProcessing, ""))
		require.NoError(t, repo.IncrementRetries(ctx, job.ID))
		require.NoError(t, repo.UpdateJobStatus(ctx, job.ID, domain.IngestJobStatusFailed, "max retries exceeded: boom"))

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.IngestJobStatusFailed, got.Status)
		assert.Equal(t, 1, got.Retries)
		assert.Equal(t, "max retries exceeded: boom", got.Error)
	})

	t.Run("updates on missing job report not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdateJobStatus(ctx, uuid.NewString(), domain.IngestJobStatusFailed, ""), domain.ErrIngestJobNotFound)
		assert.ErrorIs(t, repo.IncrementRetries(ctx, uuid.NewString()), domain.ErrIngestJobNotFound)
	})
}
