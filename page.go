package sift

import (
	"strings"
	"time"
	"unicode/utf8"
)

// PageMetadata holds document-level metadata extracted from a page.
type PageMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Language    string   `json:"language"`
}

// PageRecord is a successfully extracted page. It is created once per page
// and never modified afterwards.
type PageRecord struct {
	URL        string       `json:"url"`
	Content    string       `json:"content"`
	Metadata   PageMetadata `json:"metadata"`
	WordCount  int          `json:"word_count"`
	CharCount  int          `json:"char_count"`
	CrawlDepth int          `json:"crawl_depth"`
	CrawledAt  time.Time    `json:"crawled_at"`
	Strategy   string       `json:"extraction_strategy,omitempty"`
}

// NewPageRecord builds a record for content extracted from url at depth,
// computing the word and character counts.
func NewPageRecord(url string, depth int, ext *Extraction, now time.Time) *PageRecord {
	return &PageRecord{
		URL:        url,
		Content:    ext.Content,
		Metadata:   ext.Metadata,
		WordCount:  len(strings.Fields(ext.Content)),
		CharCount:  utf8.RuneCountInString(ext.Content),
		CrawlDepth: depth,
		CrawledAt:  now.UTC(),
		Strategy:   ext.Strategy,
	}
}

// Title returns the page title, or "Untitled" when none was extracted.
func (p *PageRecord) Title() string {
	if p.Metadata.Title == "" {
		return UntitledPage
	}
	return p.Metadata.Title
}

// UntitledPage is the title used for pages without one.
const UntitledPage = "Untitled"
