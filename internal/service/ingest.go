package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/telemetry"
)

// EmbeddingClient generates vector embeddings for text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// DocumentStore persists document-level ingestion records.
type DocumentStore interface {
	Upsert(ctx context.Context, doc *domain.Document) error
}

// ChunkStore persists the chunk set for a document. Replacing is wholesale:
// re-ingesting a source drops its previous chunks.
type ChunkStore interface {
	ReplaceChunks(ctx context.Context, source string, chunks []*domain.Chunk) error
}

// TxRepositories exposes the stores participating in one transaction.
type TxRepositories interface {
	Documents() DocumentStore
	Chunks() ChunkStore
}

// TxRunner runs a function within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(TxRepositories) error) error
}

// IngestService turns raw document text into linked, embedded, persisted
// chunks. The pipeline is scan, split, link, embed, store; the document row
// and its chunks commit atomically.
type IngestService struct {
	tx        TxRunner
	embedding EmbeddingClient
	cfg       ChunkConfig
}

func NewIngestService(tx TxRunner, embedding EmbeddingClient, cfg ChunkConfig) *IngestService {
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	return &IngestService{
		tx:        tx,
		embedding: embedding,
		cfg:       cfg,
	}
}

// IngestDocument processes one document end to end and returns the stored
// document record. An embedding failure on any chunk fails the whole
// document; nothing is persisted in that case.
func (s *IngestService) IngestDocument(ctx context.Context, source, title, text string) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "ingest.document", telemetry.SpanAttributes{
		Source:    source,
		Operation: "ingest",
	})
	defer span.End()

	source = strings.TrimSpace(source)
	if source == "" {
		return nil, domain.ErrMissingSource
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	refs := ScanMediaReferences(text)
	pieces := splitText(text, s.cfg)
	chunks := locateChunks(text, source, pieces)
	LinkMedia(chunks, refs, s.cfg)

	now := time.Now().UTC()
	for _, chunk := range chunks {
		chunk.ID = uuid.NewString()
		chunk.CreatedAt = now
		if s.embedding == nil {
			continue
		}
		embedding, err := s.embedding.GenerateEmbedding(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d of %s: %w", chunk.Index, source, err)
		}
		chunk.Embedding = embedding
	}

	imageCount, tableCount := countDistinctMedia(refs)
	doc := &domain.Document{
		Source:     source,
		Title:      documentTitle(title, text),
		CharCount:  len(text),
		ChunkCount: len(chunks),
		ImageCount: imageCount,
		TableCount: tableCount,
		IngestedAt: now,
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Documents().Upsert(ctx, doc); err != nil {
			return fmt.Errorf("storing document %s: %w", source, err)
		}
		if err := repos.Chunks().ReplaceChunks(ctx, source, chunks); err != nil {
			return fmt.Errorf("storing chunks for %s: %w", source, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// IngestDirectory ingests every .txt and .md file under dir, one document
// per file. The file name without extension becomes the source id. A
// failing file is logged and skipped; it never aborts the rest of the batch.
func (s *IngestService) IngestDirectory(ctx context.Context, dir string) (succeeded, failed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		data, readErr := os.ReadFile(filepath.Join(dir, entry.Name()))
		if readErr != nil {
			log.Printf("ingest: skipping %s: %v", entry.Name(), readErr)
			failed++
			continue
		}

		source := strings.TrimSuffix(entry.Name(), ext)
		if _, ingestErr := s.IngestDocument(ctx, source, "", string(data)); ingestErr != nil {
			log.Printf("ingest: failed %s: %v", source, ingestErr)
			failed++
			continue
		}
		succeeded++
	}

	return succeeded, failed, nil
}

// documentTitle prefers the explicit title, then the first non-empty line
// of the text, clipped to a sane length.
func documentTitle(title, text string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(line, "# "))
			if line != "" {
				title = line
				break
			}
		}
	}
	if len(title) > 200 {
		title = title[:200]
	}
	return title
}

func countDistinctMedia(refs []domain.MediaReference) (images, tables int) {
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		if ref.Kind == domain.MediaKindTable {
			tables++
		} else {
			images++
		}
	}
	return images, tables
}
