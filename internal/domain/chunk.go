package domain

import "time"

// Chunk is a bounded contiguous slice of a document's text used as the unit
// of retrieval. Start and End are byte offsets into the source text.
//
// Images, Tables, and DirectRefs hold linked media reference ids. DirectRefs
// is always a subset of Images union Tables: it records references that sit
// physically inside the chunk's span rather than merely nearby.
type Chunk struct {
	ID         string
	Source     string
	Index      int
	Start      int
	End        int
	Content    string
	Images     []string
	Tables     []string
	DirectRefs []string
	Embedding  []float32
	CreatedAt  time.Time
}

// Midpoint returns the center offset of the chunk's span, used for
// distance ranking during media backfill.
func (c *Chunk) Midpoint() int {
	return (c.Start + c.End) / 2
}

func (c *Chunk) HasImages() bool {
	return len(c.Images) > 0
}

func (c *Chunk) HasTables() bool {
	return len(c.Tables) > 0
}

// Links reports whether the chunk already links the given media id.
func (c *Chunk) Links(mediaID string) bool {
	for _, id := range c.Images {
		if id == mediaID {
			return true
		}
	}
	for _, id := range c.Tables {
		if id == mediaID {
			return true
		}
	}
	return false
}
