package service

import (
	"regexp"
	"strings"

	"github.com/orbital-research/bioastra/internal/domain"
)

// mediaMarkerPattern matches inline media markers such as "img-003" or
// "table007" embedded in document text.
var mediaMarkerPattern = regexp.MustCompile(`\b(img-\d+|table\d+)\b`)

// ScanMediaReferences returns every media marker in text in left-to-right
// document order, with byte-offset spans. Matches never overlap.
func ScanMediaReferences(text string) []domain.MediaReference {
	matches := mediaMarkerPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]domain.MediaReference, 0, len(matches))
	for _, m := range matches {
		id := text[m[0]:m[1]]
		kind := domain.MediaKindImage
		if strings.HasPrefix(id, "table") {
			kind = domain.MediaKindTable
		}
		refs = append(refs, domain.MediaReference{
			ID:    id,
			Kind:  kind,
			Start: m[0],
			End:   m[1],
		})
	}
	return refs
}
