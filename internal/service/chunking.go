package service

import (
	"strings"

	"github.com/orbital-research/bioastra/internal/domain"
)

// ChunkConfig controls document splitting and media linking.
type ChunkConfig struct {
	MaxChars int
	Overlap  int
	Window   int
	MinLinks int
}

// DefaultChunkConfig provides sane defaults for ingestion.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars: 1000,
		Overlap:  200,
		Window:   800,
		MinLinks: 3,
	}
}

// chunkSeparators in preference order: paragraph break, line break,
// sentence break, word break. A raw character cut is the last resort.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

func splitText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	if len(clean) <= cfg.MaxChars {
		return []string{clean}
	}

	chunks := make([]string, 0, 8)
	start := 0
	for start < len(clean) {
		end := start + cfg.MaxChars
		if end >= len(clean) {
			end = len(clean)
		} else {
			end = findCut(clean, start, end)
		}

		chunk := strings.TrimSpace(clean[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(clean) {
			break
		}

		next := end - cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// findCut picks the rightmost preferred boundary in the back half of the
// window. Paragraph breaks win over line breaks, lines over sentences,
// sentences over words; a raw cut is used only when no boundary exists.
func findCut(text string, start, end int) int {
	minCut := start + (end-start)/2
	for _, sep := range chunkSeparators {
		idx := strings.LastIndex(text[minCut:end], sep)
		if idx >= 0 {
			return minCut + idx + len(sep)
		}
	}
	return end
}

// locateChunks resolves each chunk's absolute byte span in the source text.
// The search resumes just past the previous chunk's start so that repeated
// substrings never match an earlier occurrence, while still finding the
// overlapping head of the next chunk.
func locateChunks(text, source string, pieces []string) []*domain.Chunk {
	chunks := make([]*domain.Chunk, 0, len(pieces))
	searchFrom := 0
	for i, piece := range pieces {
		start := searchFrom
		if idx := strings.Index(text[searchFrom:], piece); idx >= 0 {
			start = searchFrom + idx
		}
		chunks = append(chunks, &domain.Chunk{
			Source:  source,
			Index:   i,
			Start:   start,
			End:     start + len(piece),
			Content: piece,
		})
		searchFrom = start + 1
	}
	return chunks
}
