package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/sift"
	main "github.com/fwojciec/sift/cmd/sift"
	"github.com/fwojciec/sift/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func showDatasets(stats *sift.CrawlStats) *mock.DatasetService {
	ds := &sift.Dataset{Domain: "example.com", PagesFile: "data/example_com_pages_20260314_092653.json", FileSize: 4096}
	return &mock.DatasetService{
		FindDatasetsFn: func(_ context.Context, filter sift.DatasetFilter) ([]*sift.Dataset, error) {
			if filter.Domain == nil || *filter.Domain != "example.com" || !filter.Latest {
				return nil, nil
			}
			return []*sift.Dataset{ds}, nil
		},
		LoadStatsFn: func(_ context.Context, got *sift.Dataset) (*sift.CrawlStats, error) {
			if got != ds {
				return nil, sift.Errorf(sift.ENOTFOUND, "no stats")
			}
			return stats, nil
		},
		LoadPagesFn: func(_ context.Context, _ []*sift.Dataset) ([]*sift.PageRecord, error) {
			return testPages(), nil
		},
	}
}

func testStats() *sift.CrawlStats {
	return &sift.CrawlStats{
		RunID:           "run-7",
		StartURL:        "https://example.com",
		TargetDomain:    "example.com",
		PagesCrawled:    40,
		PagesFailed:     3,
		TotalWords:      12000,
		StartTime:       time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		DurationSeconds: 20,
		Strategy:        "small",
		Policy:          sift.PolicySnapshot{MaxPages: 80, MaxDepth: 10, Workers: 4, DelaySeconds: 1, TimeoutSeconds: 45, RespectRobots: true},
		Estimate:        &sift.SiteEstimate{EstimatedPages: 40, PagesSampled: 5, SitemapURLs: 38},
		FailureReasons:  map[string]int{sift.FailStatus: 2, sift.FailRobots: 1},
	}
}

func TestShowCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints stats of the latest dataset", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Datasets: showDatasets(testStats())}

		err := (&main.ShowCmd{Domain: "example.com"}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "run-7")
		assert.Contains(t, output, "2.0 pages/s")
		assert.Contains(t, output, "small")
		assert.Contains(t, output, "4.0 KB")
		assert.Contains(t, output, "Failed: http status")
		assert.Contains(t, output, "Failed: robots disallowed")
		assert.Contains(t, output, "38")
	})

	t.Run("exports pages as markdown", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "export")
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Datasets: showDatasets(testStats())}

		err := (&main.ShowCmd{Domain: "example.com", Export: dir}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Exported 2 pages to "+dir)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries)
	})

	t.Run("unknown domain", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Datasets: showDatasets(testStats())}

		err := (&main.ShowCmd{Domain: "other.org"}).Run(deps)

		assert.Equal(t, sift.ENOTFOUND, sift.ErrorCode(err))
		assert.Contains(t, stderr.String(), "sift list")
	})
}
