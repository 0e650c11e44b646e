package goquery_test

import (
	"testing"

	"github.com/fwojciec/sift/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataExtractor_ExtractMetadata(t *testing.T) {
	t.Parallel()

	t.Run("reads declared metadata", func(t *testing.T) {
		t.Parallel()

		html := `<html lang="de"><head>
<title> Getting   Started </title>
<meta name="description" content="How to begin">
<meta name="keywords" content="go, crawl, , search ">
</head><body><h1>Heading</h1></body></html>`

		meta, err := goquery.NewMetadataExtractor().ExtractMetadata(html)

		require.NoError(t, err)
		assert.Equal(t, "Getting Started", meta.Title)
		assert.Equal(t, "How to begin", meta.Description)
		assert.Equal(t, []string{"go", "crawl", "search"}, meta.Keywords)
		assert.Equal(t, "de", meta.Language)
	})

	t.Run("falls back to h1 and og description", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><meta property="og:description" content="OG text"></head>
<body><h1>Heading</h1></body></html>`

		meta, err := goquery.NewMetadataExtractor().ExtractMetadata(html)

		require.NoError(t, err)
		assert.Equal(t, "Heading", meta.Title)
		assert.Equal(t, "OG text", meta.Description)
		assert.Empty(t, meta.Keywords)
		assert.Equal(t, "en", meta.Language)
	})

	t.Run("untitled when nothing declares a title", func(t *testing.T) {
		t.Parallel()

		meta, err := goquery.NewMetadataExtractor().ExtractMetadata(`<p>text</p>`)

		require.NoError(t, err)
		assert.Equal(t, "Untitled", meta.Title)
	})
}
