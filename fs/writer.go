// Package fs persists crawl runs as JSON files and finds them again.
//
// A run is stored as two files in one directory:
//
//	{slug}_pages_{20060102_150405}.json
//	{slug}_stats_{20060102_150405}.json
//
// where slug is the crawled domain with dots and colons replaced by
// underscores and the timestamp is the run start in UTC.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/sift"
)

// File naming.
const (
	pagesInfix      = "_pages_"
	statsInfix      = "_stats_"
	fileExt         = ".json"
	timestampLayout = "20060102_150405"
)

// possibleReasons explain an empty run in its diagnostic payload.
var possibleReasons = []string{
	"Content extraction failed (pages had insufficient content)",
	"Robots.txt blocked access",
	"Pages returned non-HTML content",
	"Network/timeout issues",
	"Content was shorter than minimum length requirement",
}

// diagnostic replaces the page array of a run in which no page succeeded.
type diagnostic struct {
	Message         string             `json:"message"`
	PossibleReasons []string           `json:"possible_reasons"`
	FailureReasons  map[string]int     `json:"failure_reasons"`
	ScrapedPages    []*sift.PageRecord `json:"scraped_pages"`
}

// Ensure ResultWriter implements sift.ResultWriter at compile time.
var _ sift.ResultWriter = (*ResultWriter)(nil)

// ResultWriter writes crawl runs into a directory. Files are written to a
// temporary name and renamed into place so readers never see partial JSON.
type ResultWriter struct {
	dir string
}

// NewResultWriter creates a ResultWriter that writes into dir. The
// directory is created on first write.
func NewResultWriter(dir string) *ResultWriter {
	return &ResultWriter{dir: dir}
}

// WriteRun implements sift.ResultWriter.
func (w *ResultWriter) WriteRun(ctx context.Context, stats *sift.CrawlStats, pages []*sift.PageRecord) (*sift.Dataset, error) {
	if stats == nil {
		return nil, sift.Errorf(sift.EINVALID, "stats required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	domain := stats.TargetDomain
	if domain == "" {
		domain = sift.Hostname(stats.StartURL)
	}
	slug := sift.DomainSlug(domain)
	ts := stats.StartTime.UTC().Format(timestampLayout)

	pagesPath := filepath.Join(w.dir, slug+pagesInfix+ts+fileExt)
	statsPath := filepath.Join(w.dir, slug+statsInfix+ts+fileExt)

	var payload any = pages
	if len(pages) == 0 {
		payload = newDiagnostic(stats)
	}
	size, err := writeJSON(pagesPath, payload)
	if err != nil {
		return nil, fmt.Errorf("writing pages: %w", err)
	}
	if _, err := writeJSON(statsPath, stats); err != nil {
		return nil, fmt.Errorf("writing stats: %w", err)
	}

	return &sift.Dataset{
		Domain:     domain,
		Timestamp:  ts,
		PagesFile:  pagesPath,
		StatsFile:  statsPath,
		PagesCount: len(pages),
		WordsCount: stats.TotalWords,
		CrawledAt:  stats.StartTime.UTC(),
		FileSize:   size,
	}, nil
}

func newDiagnostic(stats *sift.CrawlStats) *diagnostic {
	reasons := stats.FailureReasons
	if reasons == nil {
		reasons = map[string]int{}
	}
	return &diagnostic{
		Message:         "No pages were successfully scraped",
		PossibleReasons: possibleReasons,
		FailureReasons:  reasons,
		ScrapedPages:    []*sift.PageRecord{},
	}
}

// writeJSON atomically replaces path with the indented JSON encoding of v
// and returns the size of the written file.
func writeJSON(path string, v any) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return info.Size(), nil
}
