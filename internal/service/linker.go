package service

import (
	"sort"

	"github.com/orbital-research/bioastra/internal/domain"
)

// LinkMedia associates media references with chunks. A reference is linked
// to every chunk whose context window [start-W, end+W] contains the
// reference's start position; references that sit inside the chunk's own
// span are additionally recorded as direct refs. A backfill pass then
// guarantees every reference reaches the configured minimum link count.
func LinkMedia(chunks []*domain.Chunk, refs []domain.MediaReference, cfg ChunkConfig) {
	if len(chunks) == 0 || len(refs) == 0 {
		return
	}

	for _, ref := range refs {
		for _, chunk := range chunks {
			if ref.Start < chunk.Start-cfg.Window || ref.Start > chunk.End+cfg.Window {
				continue
			}
			linkReference(chunk, ref)
			if ref.Start >= chunk.Start && ref.Start < chunk.End {
				chunk.DirectRefs = appendUnique(chunk.DirectRefs, ref.ID)
			}
		}
	}

	backfillLinks(chunks, refs, cfg.MinLinks)
}

func linkReference(chunk *domain.Chunk, ref domain.MediaReference) {
	switch ref.Kind {
	case domain.MediaKindTable:
		chunk.Tables = appendUnique(chunk.Tables, ref.ID)
	default:
		chunk.Images = appendUnique(chunk.Images, ref.ID)
	}
}

// backfillLinks force-links under-connected references to their nearest
// chunks by distance from the reference position to the chunk midpoint,
// ties broken by ascending chunk index. The pass is monotonically additive:
// existing links are never removed or duplicated.
func backfillLinks(chunks []*domain.Chunk, refs []domain.MediaReference, minLinks int) {
	if minLinks <= 0 {
		return
	}

	for _, ref := range refs {
		linked := 0
		for _, chunk := range chunks {
			if chunk.Links(ref.ID) {
				linked++
			}
		}
		if linked >= minLinks {
			continue
		}

		candidates := make([]*domain.Chunk, 0, len(chunks))
		for _, chunk := range chunks {
			if !chunk.Links(ref.ID) {
				candidates = append(candidates, chunk)
			}
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			di := absDistance(ref.Start, candidates[i].Midpoint())
			dj := absDistance(ref.Start, candidates[j].Midpoint())
			if di != dj {
				return di < dj
			}
			return candidates[i].Index < candidates[j].Index
		})

		for _, chunk := range candidates {
			if linked >= minLinks {
				break
			}
			linkReference(chunk, ref)
			linked++
		}
	}
}

func absDistance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}
