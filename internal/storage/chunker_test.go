package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, SplitChunks(""))
		assert.Nil(t, SplitChunks("   "))
	})

	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := SplitChunks("One sentence. Another sentence.")
		require.Len(t, chunks, 1)
		assert.Equal(t, "One sentence. Another sentence.", chunks[0].Text)
		assert.Equal(t, 0, chunks[0].Start)
	})

	t.Run("long text splits with overlap", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 40; i++ {
			b.WriteString("This sentence pads out the transcript with some words. ")
		}
		chunks := SplitChunks(strings.TrimSpace(b.String()))
		require.Greater(t, len(chunks), 1)

		for _, chunk := range chunks {
			assert.NotEmpty(t, chunk.Text)
			assert.LessOrEqual(t, chunk.Start, chunk.End)
		}

		// consecutive chunks share their overlap sentences
		first := chunks[0].Text
		second := chunks[1].Text
		lastSentence := "This sentence pads out the transcript with some words."
		assert.Contains(t, first, lastSentence)
		assert.Contains(t, second, lastSentence)
		assert.Less(t, chunks[1].Start, chunks[0].End)
	})
}
