package sift

import (
	"context"
	"time"
)

// Dataset describes one persisted crawl run.
type Dataset struct {
	Domain     string    `json:"domain"`
	Timestamp  string    `json:"timestamp"`
	PagesFile  string    `json:"pages_file"`
	StatsFile  string    `json:"stats_file,omitempty"`
	PagesCount int       `json:"pages_count"`
	WordsCount int       `json:"words_count"`
	CrawledAt  time.Time `json:"crawled_at"`
	FileSize   int64     `json:"file_size"`
}

// FileSizeMB returns the pages file size in megabytes.
func (d *Dataset) FileSizeMB() float64 {
	return float64(d.FileSize) / 1024 / 1024
}

// ResultWriter durably persists the outcome of a crawl run.
type ResultWriter interface {
	// WriteRun persists pages and stats and returns the dataset
	// descriptor for the written files. An empty pages slice is written
	// as a diagnostic payload.
	WriteRun(ctx context.Context, stats *CrawlStats, pages []*PageRecord) (*Dataset, error)
}

// DatasetFilter represents a filter for FindDatasets.
type DatasetFilter struct {
	// Domain restricts results to one domain when non-nil.
	Domain *string

	// Latest keeps only the newest dataset per domain.
	Latest bool
}

// DatasetService discovers and loads persisted crawl runs.
type DatasetService interface {
	// FindDatasets returns datasets matching the filter, newest first.
	FindDatasets(ctx context.Context, filter DatasetFilter) ([]*Dataset, error)

	// LoadPages returns the page records of the given datasets.
	// Diagnostic payloads contribute no pages.
	LoadPages(ctx context.Context, datasets []*Dataset) ([]*PageRecord, error)

	// LoadStats returns the stats recorded for a dataset.
	// Returns ENOTFOUND if the dataset has no stats file.
	LoadStats(ctx context.Context, dataset *Dataset) (*CrawlStats, error)
}
