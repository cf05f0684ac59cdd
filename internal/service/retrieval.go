package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/telemetry"
)

// RetrievedChunk is one similarity-search hit, as read back from storage.
// Media id lists are persisted as comma-joined strings.
type RetrievedChunk struct {
	Source     string
	ChunkIndex int
	Content    string
	Images     string
	Tables     string
	DirectRefs string
	Score      float32
}

// ChunkSearcher performs vector similarity search over stored chunks.
type ChunkSearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, k int) ([]*RetrievedChunk, error)
}

// RetrievalResult aggregates the retrieved chunks into a single prompt
// context plus deduplicated, sorted media id lists.
type RetrievalResult struct {
	Query       string
	Chunks      []*RetrievedChunk
	Images      []string
	Tables      []string
	Context     string
	SourceCount int
}

// ContextAssembler augments queries with role keywords, runs similarity
// search, and assembles the retrieved chunks into generation context.
type ContextAssembler struct {
	embedding EmbeddingClient
	searcher  ChunkSearcher
	topK      int
}

func NewContextAssembler(embedding EmbeddingClient, searcher ChunkSearcher, topK int) *ContextAssembler {
	if topK <= 0 {
		topK = 8
	}
	return &ContextAssembler{
		embedding: embedding,
		searcher:  searcher,
		topK:      topK,
	}
}

// Retrieve embeds the role-augmented query and assembles the top-k hits.
// Zero hits is not an error: the result carries an empty context and the
// caller decides how to degrade. Collaborator failures are wrapped as
// retrieval-unavailable so the stream surfaces a single error event.
func (a *ContextAssembler) Retrieve(ctx context.Context, query string, role domain.Role) (*RetrievalResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "retrieval.assemble", telemetry.SpanAttributes{
		Role:      string(role),
		Operation: "retrieve",
	})
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrMissingQuery
	}

	profile := domain.ProfileFor(role)
	augmented := query + " " + profile.Keywords

	embedding, err := a.embedding.GenerateEmbedding(ctx, augmented)
	if err != nil {
		return nil, domain.NewRetrievalUnavailable(err)
	}

	chunks, err := a.searcher.SearchByEmbedding(ctx, embedding, a.topK)
	if err != nil {
		return nil, domain.NewRetrievalUnavailable(err)
	}

	result := &RetrievalResult{
		Query:  query,
		Chunks: chunks,
	}

	var b strings.Builder
	imageSet := make(map[string]struct{})
	tableSet := make(map[string]struct{})
	sourceSet := make(map[string]struct{})

	for _, chunk := range chunks {
		sourceSet[chunk.Source] = struct{}{}
		images := splitMediaList(chunk.Images)
		tables := splitMediaList(chunk.Tables)
		for _, id := range images {
			imageSet[id] = struct{}{}
		}
		for _, id := range tables {
			tableSet[id] = struct{}{}
		}

		fmt.Fprintf(&b, "Source: %s (chunk %d)\n", chunk.Source, chunk.ChunkIndex)
		if len(images) > 0 || len(tables) > 0 {
			fmt.Fprintf(&b, "Media: %s\n", strings.Join(append(images, tables...), ", "))
		}
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")
	}

	result.Context = strings.TrimSpace(b.String())
	result.Images = sortedKeys(imageSet)
	result.Tables = sortedKeys(tableSet)
	result.SourceCount = len(sourceSet)

	return result, nil
}

// splitMediaList parses a comma-joined media id list, dropping empties.
func splitMediaList(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
