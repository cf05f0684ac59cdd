package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/pagination"
	"github.com/orbital-research/bioastra/internal/service"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx dbtx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

// Upsert inserts or replaces the document record for a source.
func (r *DocumentRepository) Upsert(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (source, title, char_count, chunk_count, image_count, table_count, ingested_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (source) DO UPDATE SET
			title = EXCLUDED.title,
			char_count = EXCLUDED.char_count,
			chunk_count = EXCLUDED.chunk_count,
			image_count = EXCLUDED.image_count,
			table_count = EXCLUDED.table_count,
			ingested_at = EXCLUDED.ingested_at`,
		doc.Source, doc.Title, doc.CharCount, doc.ChunkCount, doc.ImageCount, doc.TableCount, doc.IngestedAt,
	)
	return err
}

func (r *DocumentRepository) GetBySource(ctx context.Context, source string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.QueryRow(ctx,
		`SELECT source, title, char_count, chunk_count, image_count, table_count, ingested_at
		 FROM documents WHERE source = $1`,
		source,
	).Scan(&doc.Source, &doc.Title, &doc.CharCount, &doc.ChunkCount, &doc.ImageCount, &doc.TableCount, &doc.IngestedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// List returns documents newest first with cursor pagination.
func (r *DocumentRepository) List(ctx context.Context, limit int, cursor string) (*service.DocumentPage, error) {
	if limit <= 0 {
		limit = 20
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT source, title, char_count, chunk_count, image_count, table_count, ingested_at
		FROM documents`
	args := []any{}

	if decoded != nil {
		query += ` WHERE (ingested_at, source) < ($1, $2) ORDER BY ingested_at DESC, source DESC LIMIT $3`
		args = append(args, decoded.Timestamp, decoded.LastID, limit+1)
	} else {
		query += ` ORDER BY ingested_at DESC, source DESC LIMIT $1`
		args = append(args, limit+1)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.Document, 0, limit)
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.Source, &doc.Title, &doc.CharCount, &doc.ChunkCount, &doc.ImageCount, &doc.TableCount, &doc.IngestedAt); err != nil {
			return nil, err
		}
		items = append(items, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	result := &service.DocumentPage{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		result.NextCursor = pagination.EncodeCursor(last.Source, last.IngestedAt)
	}

	return result, nil
}
