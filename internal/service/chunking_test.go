package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	cfg := DefaultChunkConfig()
	text := "A short abstract about microgravity effects on mice."

	chunks := splitText(text, cfg)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitText_EmptyText(t *testing.T) {
	assert.Nil(t, splitText("", DefaultChunkConfig()))
	assert.Nil(t, splitText("   \n\t  ", DefaultChunkConfig()))
}

func TestSplitText_RespectsMaxChars(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 100, Overlap: 20}
	text := strings.Repeat("spaceflight osteoblast response ", 50)

	chunks := splitText(text, cfg)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), cfg.MaxChars)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplitText_PrefersParagraphBoundary(t *testing.T) {
	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	text := first + "\n\n" + second
	cfg := ChunkConfig{MaxChars: 100, Overlap: 10}

	chunks := splitText(text, cfg)

	require.GreaterOrEqual(t, len(chunks), 2)
	// The first cut lands on the paragraph break, not mid-word.
	assert.Equal(t, first, chunks[0])
}

func TestSplitText_CoversWholeText(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 80, Overlap: 20}
	text := strings.Repeat("radiation dosimetry results were recorded daily. ", 30)

	chunks := splitText(text, cfg)

	// Last chunk must carry the tail of the document.
	tail := strings.TrimSpace(text)
	assert.True(t, strings.HasSuffix(tail, strings.TrimSpace(chunks[len(chunks)-1])))
}

func TestLocateChunks_ByteSpans(t *testing.T) {
	text := "alpha beta gamma delta"
	pieces := []string{"alpha beta", "beta gamma delta"}

	chunks := locateChunks(text, "doc-1", pieces)

	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len("alpha beta"), chunks[0].End)
	assert.Equal(t, text[chunks[1].Start:chunks[1].End], "beta gamma delta")
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestLocateChunks_RepeatedSubstrings(t *testing.T) {
	// Both pieces are identical; the second span must land on the second
	// occurrence, not rematch the first.
	text := "repeat phrase. repeat phrase."
	pieces := []string{"repeat phrase.", "repeat phrase."}

	chunks := locateChunks(text, "doc-1", pieces)

	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 15, chunks[1].Start)
}

func TestLocateChunks_OverlappingChunks(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 60, Overlap: 20}
	text := strings.Repeat("measurement cycle complete. ", 10)

	pieces := splitText(text, cfg)
	chunks := locateChunks(text, "doc-1", pieces)

	for i, chunk := range chunks {
		assert.Equal(t, strings.TrimSpace(text[chunk.Start:chunk.End]), strings.TrimSpace(chunk.Content))
		if i > 0 {
			assert.Greater(t, chunk.Start, chunks[i-1].Start)
		}
	}
}
