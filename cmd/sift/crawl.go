package main

import (
	"fmt"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/crawl"
)

// maxURLWidth bounds URLs printed in progress lines.
const maxURLWidth = 80

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	progress := func(event crawl.ProgressEvent) {
		if deps.Observe != nil {
			deps.Observe(event)
		}
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Crawling %s (up to %d pages)\n", c.URL, event.Total)
		case crawl.ProgressCompleted:
			if c.Verbose {
				fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed, event.Total, crawl.TruncateURL(event.URL, maxURLWidth))
			}
		case crawl.ProgressFailed:
			if c.Verbose {
				fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, maxURLWidth), event.Error)
			}
		}
	}

	report, err := deps.Crawler.Crawl(deps.Ctx, c.URL, c.MaxPages, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}

	stats := report.Stats
	fmt.Fprintf(deps.Stdout, "Crawled %d pages (%d failed) in %.1fs, %s, strategy %s\n",
		stats.PagesCrawled, stats.PagesFailed, stats.DurationSeconds,
		crawl.FormatRate(stats.PagesCrawled, stats.DurationSeconds), stats.Strategy)
	if est := report.Estimate; est != nil {
		fmt.Fprintf(deps.Stdout, "  Estimated %d pages from %d sampled\n", est.EstimatedPages, est.PagesSampled)
	}
	if stats.Resumed {
		fmt.Fprintln(deps.Stdout, "  Resumed from checkpoint")
	}
	if deps.Ctx.Err() != nil {
		fmt.Fprintln(deps.Stdout, "  Interrupted; progress saved for the next run")
	}
	if ds := report.Dataset; ds != nil {
		fmt.Fprintf(deps.Stdout, "  Pages: %s (%s)\n", ds.PagesFile, crawl.FormatBytes(ds.FileSize))
		fmt.Fprintf(deps.Stdout, "  Stats: %s\n", ds.StatsFile)
	}
	return nil
}
