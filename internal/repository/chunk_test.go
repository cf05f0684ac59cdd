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

// axisEmbedding returns a 1536-dim unit vector along one axis, giving
// deterministic cosine distances for similarity assertions.
func axisEmbedding(axis int) []float32 {
	embedding := make([]float32, 1536)
	embedding[axis] = 1
	return embedding
}

func storedChunk(source string, index int, content string, embedding []float32) *domain.Chunk {
	return &domain.Chunk{
		ID:        uuid.NewString(),
		Source:    source,
		Index:     index,
		Start:     index * 800,
		End:       index*800 + 1000,
		Content:   content,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}
}

func TestChunkRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docs := NewDocumentRepository(pool)
	repo := NewChunkRepository(pool)

	seedDocument := func(source string) {
		require.NoError(t, docs.Upsert(ctx, &domain.Document{
			Source:     source,
			Title:      source,
			IngestedAt: time.Now().UTC(),
		}))
	}

	t.Run("replace and read back chunks with media links", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		seedDocument("paper-a")

		chunk := storedChunk("paper-a", 0, "bone loss shown in img-001", axisEmbedding(0))
		chunk.Images = []string{"img-001", "img-002"}
		chunk.Tables = []string{"table1"}
		chunk.DirectRefs = []string{"img-001"}
		require.NoError(t, repo.ReplaceChunks(ctx, "paper-a", []*domain.Chunk{chunk}))

		got, err := repo.GetBySource(ctx, "paper-a")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, chunk.ID, got[0].ID)
		assert.Equal(t, chunk.Content, got[0].Content)
		assert.Equal(t, []string{"img-001", "img-002"}, got[0].Images)
		assert.Equal(t, []string{"table1"}, got[0].Tables)
		assert.Equal(t, []string{"img-001"}, got[0].DirectRefs)
		assert.Equal(t, 0, got[0].Start)
		assert.Equal(t, 1000, got[0].End)
	})

	t.Run("replace drops previous chunks", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		seedDocument("paper-a")

		old := []*domain.Chunk{
			storedChunk("paper-a", 0, "old chunk 0", nil),
			storedChunk("paper-a", 1, "old chunk 1", nil),
		}
		require.NoError(t, repo.ReplaceChunks(ctx, "paper-a", old))

		replacement := []*domain.Chunk{storedChunk("paper-a", 0, "new chunk 0", nil)}
		require.NoError(t, repo.ReplaceChunks(ctx, "paper-a", replacement))

		got, err := repo.GetBySource(ctx, "paper-a")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "new chunk 0", got[0].Content)
	})

	t.Run("search ranks by cosine similarity", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		seedDocument("paper-a")
		seedDocument("paper-b")

		require.NoError(t, repo.ReplaceChunks(ctx, "paper-a", []*domain.Chunk{
			storedChunk("paper-a", 0, "about bone loss", axisEmbedding(0)),
		}))
		require.NoError(t, repo.ReplaceChunks(ctx, "paper-b", []*domain.Chunk{
			storedChunk("paper-b", 0, "about plant growth", axisEmbedding(1)),
		}))

		results, err := repo.SearchByEmbedding(ctx, axisEmbedding(0), 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "paper-a", results[0].Source)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("search skips unembedded chunks", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		seedDocument("paper-a")

		require.NoError(t, repo.ReplaceChunks(ctx, "paper-a", []*domain.Chunk{
			storedChunk("paper-a", 0, "embedded", axisEmbedding(0)),
			storedChunk("paper-a", 1, "not embedded", nil),
		}))

		results, err := repo.SearchByEmbedding(ctx, axisEmbedding(0), 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "embedded", results[0].Content)
	})

	t.Run("search limit respected", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		seedDocument("paper-a")

		chunks := make([]*domain.Chunk, 5)
		for i := range chunks {
			chunks[i] = storedChunk("paper-a", i, "chunk", axisEmbedding(i))
		}
		require.NoError(t, repo.ReplaceChunks(ctx, "paper-a", chunks))

		results, err := repo.SearchByEmbedding(ctx, axisEmbedding(0), 3)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})
}
