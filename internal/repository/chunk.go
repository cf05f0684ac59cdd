package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/service"
)

// ChunkRepository handles persistence of document chunks and their
// embeddings.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceChunks deletes existing chunks for a source and inserts new ones.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, source string, chunks []*domain.Chunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE source = $1`, source)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO document_chunks
				(id, source, chunk_index, span_start, span_end, content, images, tables, direct_refs, has_images, has_tables, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			c.ID,
			c.Source,
			c.Index,
			c.Start,
			c.End,
			c.Content,
			strings.Join(c.Images, ","),
			strings.Join(c.Tables, ","),
			strings.Join(c.DirectRefs, ","),
			c.HasImages(),
			c.HasTables(),
			embeddingValue(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// SearchByEmbedding returns the top-k chunks by cosine similarity. Chunks
// without embeddings are never returned.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, k int) ([]*service.RetrievedChunk, error) {
	if k <= 0 {
		k = 8
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT source, chunk_index, content, images, tables, direct_refs,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM document_chunks
		 WHERE embedding IS NOT NULL
		 ORDER BY score DESC
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.RetrievedChunk, 0, k)
	for rows.Next() {
		var chunk service.RetrievedChunk
		if err := rows.Scan(&chunk.Source, &chunk.ChunkIndex, &chunk.Content, &chunk.Images, &chunk.Tables, &chunk.DirectRefs, &chunk.Score); err != nil {
			return nil, err
		}
		results = append(results, &chunk)
	}

	return results, rows.Err()
}

// GetBySource returns all chunks for a document in index order.
func (r *ChunkRepository) GetBySource(ctx context.Context, source string) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source, chunk_index, span_start, span_end, content, images, tables, direct_refs, created_at
		 FROM document_chunks
		 WHERE source = $1
		 ORDER BY chunk_index`,
		source,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var images, tables, directRefs string
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Start, &c.End, &c.Content, &images, &tables, &directRefs, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Images = splitJoined(images)
		c.Tables = splitJoined(tables)
		c.DirectRefs = splitJoined(directRefs)
		chunks = append(chunks, &c)
	}

	return chunks, rows.Err()
}

func embeddingValue(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func splitJoined(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
