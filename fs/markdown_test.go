package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "simple path", url: "https://example.com/docs/api/users", want: "docs/api/users.md"},
		{name: "trailing slash becomes index", url: "https://example.com/docs/", want: "docs/index.md"},
		{name: "root path becomes index", url: "https://example.com/", want: "index.md"},
		{name: "root without trailing slash", url: "https://example.com", want: "index.md"},
		{name: "ignores query string", url: "https://example.com/docs/api?version=2", want: "docs/api.md"},
		{name: "ignores fragment", url: "https://example.com/docs/api#section", want: "docs/api.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPage(t *testing.T) {
	t.Parallel()

	page := testPages(1)[0]

	got := fs.FormatPage(page)

	assert.Equal(t, "---\nsource: https://example.com/pa\ntitle: Page\ncrawled: 2026-03-14\nlanguage: en\n---\n\none two three four five six seven eight nine ten\n", got)
}

func TestMarkdownExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("writes one file per page", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "export")
		pages := []*sift.PageRecord{
			{URL: "https://example.com", Content: "home"},
			{URL: "https://example.com/guide/intro", Content: "intro"},
		}

		n, err := fs.NewMarkdownExporter(dir).Export(context.Background(), pages)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.FileExists(t, filepath.Join(dir, "index.md"))
		data, err := os.ReadFile(filepath.Join(dir, "guide", "intro.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "title: Untitled")
		assert.NoDirExists(t, dir+".tmp")
	})

	t.Run("replaces an earlier export", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "export")
		e := fs.NewMarkdownExporter(dir)
		_, err := e.Export(context.Background(), []*sift.PageRecord{{URL: "https://example.com/old", Content: "x"}})
		require.NoError(t, err)

		_, err = e.Export(context.Background(), []*sift.PageRecord{{URL: "https://example.com/new", Content: "y"}})

		require.NoError(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "old.md"))
		assert.FileExists(t, filepath.Join(dir, "new.md"))
	})

	t.Run("keeps the earlier export when cancelled", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "export")
		e := fs.NewMarkdownExporter(dir)
		_, err := e.Export(context.Background(), []*sift.PageRecord{{URL: "https://example.com/old", Content: "x"}})
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = e.Export(ctx, []*sift.PageRecord{{URL: "https://example.com/new", Content: "y"}})

		require.ErrorIs(t, err, context.Canceled)
		assert.FileExists(t, filepath.Join(dir, "old.md"))
		assert.NoDirExists(t, dir+".tmp")
	})
}
