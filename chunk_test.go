package sift_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/sift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberedWords returns "w0 w1 ... w(n-1)".
func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunker_Chunk(t *testing.T) {
	t.Parallel()

	t.Run("windows overlap by exactly the overlap and cover every word", func(t *testing.T) {
		t.Parallel()

		page := &sift.PageRecord{URL: "https://example.com/a", Content: numberedWords(1000)}
		c := &sift.Chunker{Size: 512, Overlap: 50}

		chunks, err := c.Chunk([]*sift.PageRecord{page})

		require.NoError(t, err)
		require.Len(t, chunks, 3)

		var spans [][]string
		for _, ch := range chunks {
			spans = append(spans, strings.Fields(ch.Content))
		}
		for i := 1; i < len(spans); i++ {
			prev, cur := spans[i-1], spans[i]
			assert.Equal(t, prev[len(prev)-50:], cur[:50], "chunk %d overlap", i)
		}

		covered := make(map[string]bool)
		for _, span := range spans {
			for _, w := range span {
				covered[w] = true
			}
		}
		assert.Len(t, covered, 1000)
		assert.Equal(t, "w0", spans[0][0])
		assert.Equal(t, "w999", spans[2][len(spans[2])-1])
	})

	t.Run("assigns sequential IDs across pages", func(t *testing.T) {
		t.Parallel()

		pages := []*sift.PageRecord{
			{URL: "https://example.com/a", Content: numberedWords(30), Metadata: sift.PageMetadata{Title: "A"}},
			{URL: "https://example.com/b", Content: numberedWords(30)},
		}
		c := &sift.Chunker{Size: 20, Overlap: 5}

		chunks, err := c.Chunk(pages)

		require.NoError(t, err)
		require.Len(t, chunks, 4)
		for i, ch := range chunks {
			assert.Equal(t, i, ch.ID)
		}
		assert.Equal(t, "https://example.com/a", chunks[0].SourceURL)
		assert.Equal(t, "A", chunks[0].SourceTitle)
		assert.Equal(t, "https://example.com/b", chunks[3].SourceURL)
		assert.Equal(t, "Untitled", chunks[3].SourceTitle)
	})

	t.Run("skips short pages", func(t *testing.T) {
		t.Parallel()

		pages := []*sift.PageRecord{{URL: "https://example.com/a", Content: "too short"}}

		chunks, err := sift.NewChunker().Chunk(pages)

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("single window when content fits", func(t *testing.T) {
		t.Parallel()

		pages := []*sift.PageRecord{{URL: "https://example.com/a", Content: numberedWords(512)}}

		chunks, err := sift.NewChunker().Chunk(pages)

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Len(t, strings.Fields(chunks[0].Content), 512)
	})

	t.Run("rejects overlap not smaller than size", func(t *testing.T) {
		t.Parallel()

		for _, c := range []*sift.Chunker{
			{Size: 50, Overlap: 50},
			{Size: 50, Overlap: 80},
			{Size: 0, Overlap: 0},
			{Size: 10, Overlap: -1},
		} {
			_, err := c.Chunk(nil)

			require.Error(t, err)
			assert.Equal(t, sift.EINVALID, sift.ErrorCode(err))
		}
	})
}
