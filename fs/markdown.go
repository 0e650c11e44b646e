package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sift"
)

// URLToPath converts a page URL to a relative markdown file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := u.Path
	if path == "" || path == "/" {
		return "index.md", nil
	}
	path = strings.TrimPrefix(path, "/")

	// Trailing slash becomes index.md in that directory
	if strings.HasSuffix(path, "/") {
		return path + "index.md", nil
	}
	return path + ".md", nil
}

// FormatPage formats a page record as markdown with YAML frontmatter.
func FormatPage(page *sift.PageRecord) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(page.Title())
	b.WriteString("\ncrawled: ")
	b.WriteString(page.CrawledAt.Format("2006-01-02"))
	if page.Metadata.Language != "" {
		b.WriteString("\nlanguage: ")
		b.WriteString(page.Metadata.Language)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	b.WriteString("\n")
	return b.String()
}

// MarkdownExporter writes page records as a tree of markdown files. Pages
// are written to dir.tmp and moved to dir only when all of them succeed,
// replacing any earlier export.
type MarkdownExporter struct {
	dir string
}

// NewMarkdownExporter creates an exporter writing into dir.
func NewMarkdownExporter(dir string) *MarkdownExporter {
	return &MarkdownExporter{dir: filepath.Clean(dir)}
}

func (e *MarkdownExporter) tempDir() string {
	return e.dir + ".tmp"
}

// Export writes pages and returns the number of files written.
func (e *MarkdownExporter) Export(ctx context.Context, pages []*sift.PageRecord) (int, error) {
	if err := os.RemoveAll(e.tempDir()); err != nil {
		return 0, err
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			e.abort()
			return 0, err
		}
		if err := e.save(page); err != nil {
			e.abort()
			return 0, err
		}
	}
	if err := os.MkdirAll(e.tempDir(), 0755); err != nil {
		return 0, err
	}

	if err := os.RemoveAll(e.dir); err != nil {
		e.abort()
		return 0, err
	}
	if err := os.Rename(e.tempDir(), e.dir); err != nil {
		e.abort()
		return 0, err
	}
	return len(pages), nil
}

func (e *MarkdownExporter) save(page *sift.PageRecord) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return sift.Errorf(sift.EINVALID, "invalid page URL %q: %v", page.URL, err)
	}
	fullPath := filepath.Join(e.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(FormatPage(page)), 0644)
}

func (e *MarkdownExporter) abort() {
	_ = os.RemoveAll(e.tempDir())
}
