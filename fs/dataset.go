package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/sift"
	"golang.org/x/sync/errgroup"
)

// loadConcurrency bounds the pages files read at once.
const loadConcurrency = 4

// Ensure DatasetService implements sift.DatasetService at compile time.
var _ sift.DatasetService = (*DatasetService)(nil)

// DatasetService discovers runs written by ResultWriter.
type DatasetService struct {
	dir    string
	logger *slog.Logger
}

// NewDatasetService creates a DatasetService reading from dir. A nil
// logger discards warnings about unreadable files.
func NewDatasetService(dir string, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DatasetService{dir: dir, logger: logger}
}

// FindDatasets implements sift.DatasetService. A missing directory yields
// no datasets.
func (s *DatasetService) FindDatasets(ctx context.Context, filter sift.DatasetFilter) ([]*sift.Dataset, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []*sift.Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset directory: %w", err)
	}

	datasets := []*sift.Dataset{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		ds, ok := s.describe(entry)
		if !ok {
			continue
		}
		if filter.Domain != nil && !strings.EqualFold(ds.Domain, *filter.Domain) {
			continue
		}
		datasets = append(datasets, ds)
	}

	slices.SortFunc(datasets, func(a, b *sift.Dataset) int {
		if c := strings.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.Domain, b.Domain)
	})

	if filter.Latest {
		seen := make(map[string]bool)
		latest := datasets[:0]
		for _, ds := range datasets {
			if seen[ds.Domain] {
				continue
			}
			seen[ds.Domain] = true
			latest = append(latest, ds)
		}
		datasets = latest
	}
	return datasets, nil
}

// describe builds a descriptor for a pages file, pairing it with its stats
// file when one exists.
func (s *DatasetService) describe(entry fs.DirEntry) (*sift.Dataset, bool) {
	name := entry.Name()
	if !strings.HasSuffix(name, fileExt) || strings.HasSuffix(name, ".tmp") {
		return nil, false
	}
	i := strings.LastIndex(name, pagesInfix)
	if i <= 0 {
		return nil, false
	}
	slug := name[:i]
	ts := strings.TrimSuffix(name[i+len(pagesInfix):], fileExt)

	info, err := entry.Info()
	if err != nil {
		return nil, false
	}

	ds := &sift.Dataset{
		Domain:    strings.ReplaceAll(slug, "_", "."),
		Timestamp: ts,
		PagesFile: filepath.Join(s.dir, name),
		FileSize:  info.Size(),
	}
	if t, err := time.Parse(timestampLayout, ts); err == nil {
		ds.CrawledAt = t
	}

	statsPath := filepath.Join(s.dir, slug+statsInfix+ts+fileExt)
	stats, err := readStats(statsPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		s.logger.Warn("unreadable stats file", "path", statsPath, "error", err)
	default:
		ds.StatsFile = statsPath
		if stats.TargetDomain != "" {
			ds.Domain = stats.TargetDomain
		}
		ds.PagesCount = stats.PagesCrawled
		ds.WordsCount = stats.TotalWords
		if !stats.StartTime.IsZero() {
			ds.CrawledAt = stats.StartTime.UTC()
		}
	}
	return ds, true
}

// LoadPages implements sift.DatasetService. Pages files are read
// concurrently; the result keeps the order of datasets. Files that cannot
// be parsed are skipped with a warning.
func (s *DatasetService) LoadPages(ctx context.Context, datasets []*sift.Dataset) ([]*sift.PageRecord, error) {
	results := make([][]*sift.PageRecord, len(datasets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, ds := range datasets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pages, err := readPages(ds.PagesFile)
			if err != nil {
				s.logger.Warn("skipping unreadable pages file", "path", ds.PagesFile, "error", err)
				return nil
			}
			results[i] = pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pages []*sift.PageRecord
	for _, r := range results {
		pages = append(pages, r...)
	}
	return pages, nil
}

// LoadStats implements sift.DatasetService.
func (s *DatasetService) LoadStats(ctx context.Context, dataset *sift.Dataset) (*sift.CrawlStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dataset.StatsFile == "" {
		return nil, sift.Errorf(sift.ENOTFOUND, "no stats recorded for %s", dataset.Domain)
	}
	stats, err := readStats(dataset.StatsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, sift.Errorf(sift.ENOTFOUND, "stats file not found: %s", dataset.StatsFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return stats, nil
}

func readStats(path string) (*sift.CrawlStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stats sift.CrawlStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// readPages decodes a pages file. A diagnostic payload yields no pages.
func readPages(path string) ([]*sift.PageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, sift.Errorf(sift.EINVALID, "empty pages file")
	}
	if data[0] == '{' {
		return nil, nil
	}
	var pages []*sift.PageRecord
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}
