// Package crawl runs adaptive crawls: it samples a site, derives a crawl
// policy from the estimate, drains a bounded frontier with concurrent
// workers, and hands the results to a writer.
package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sift"
	"github.com/google/uuid"
)

// Crawler orchestrates one crawl run from validation to persisted output.
// Estimator may be nil, in which case the base policy is used unchanged.
type Crawler struct {
	Validator sift.URLValidator
	Estimator *Estimator
	Executor  *Executor
	Writer    sift.ResultWriter
	Logger    *slog.Logger

	// Base is the operator policy the optimizer starts from.
	Base sift.CrawlPolicy

	// Tiers classify estimates. Zero value means DefaultTierTable.
	Tiers TierTable

	// Adaptive enables estimation and policy optimization.
	Adaptive bool

	// NewRunID returns a run identifier. Defaults to a random UUID.
	NewRunID func() string
}

// Report is the outcome of a crawl run.
type Report struct {
	Stats    *sift.CrawlStats
	Estimate *sift.SiteEstimate
	Dataset  *sift.Dataset
	Pages    []*sift.PageRecord
}

// Crawl validates startURL, crawls it, and writes the results. maxPages
// caps the run when positive. A run in which nothing succeeds still
// produces stats and a diagnostic dataset.
func (c *Crawler) Crawl(ctx context.Context, startURL string, maxPages int, progress ProgressFunc) (*Report, error) {
	if c.Validator != nil {
		if err := c.Validator.Validate(startURL); err != nil {
			return nil, err
		}
	}

	stats := &sift.CrawlStats{
		RunID:     c.runID(),
		StartTime: c.Executor.now().UTC(),
	}

	policy, est := c.plan(ctx, startURL, maxPages, stats)
	stats.Estimate = est

	c.logger().Info("crawl planned",
		"url", startURL,
		"run_id", stats.RunID,
		"strategy", stats.Strategy,
		"workers", policy.Concurrency,
		"delay", policy.InterRequestDelay,
		"max_pages", policy.MaxPages,
	)

	exec, err := c.Executor.Execute(ctx, startURL, policy, stats, progress)
	if err != nil {
		return nil, err
	}

	report := &Report{Stats: exec.Stats, Estimate: est, Pages: exec.Pages}
	if c.Writer != nil {
		ds, err := c.Writer.WriteRun(context.WithoutCancel(ctx), exec.Stats, exec.Pages)
		if err != nil {
			return report, err
		}
		report.Dataset = ds
	}

	c.logger().Info("crawl finished",
		"url", startURL,
		"run_id", stats.RunID,
		"crawled", exec.Stats.PagesCrawled,
		"failed", exec.Stats.PagesFailed,
		"dropped", exec.Dropped,
		"discovered", exec.Discovered,
		"duration", time.Duration(exec.Stats.DurationSeconds*float64(time.Second)),
	)
	return report, nil
}

// plan estimates the site and derives the run policy.
func (c *Crawler) plan(ctx context.Context, startURL string, maxPages int, stats *sift.CrawlStats) (sift.CrawlPolicy, *sift.SiteEstimate) {
	if !c.Adaptive || c.Estimator == nil {
		policy := c.Base
		if maxPages > 0 {
			policy.MaxPages = maxPages
		}
		stats.Strategy = TierFixed
		return policy, nil
	}

	est := c.Estimator.Estimate(ctx, startURL)
	if est.Err != "" {
		c.logger().Warn("site estimate fell back to default", "url", startURL, "estimate", est.EstimatedPages, "error", est.Err)
	}

	sized := *est
	if maxPages > 0 {
		sized.EstimatedPages = min(sized.EstimatedPages, maxPages)
	}

	tiers := c.Tiers
	if tiers == (TierTable{}) {
		tiers = DefaultTierTable()
	}
	policy, name := Optimize(c.Base, tiers, &sized)
	if maxPages > 0 {
		policy.MaxPages = maxPages
	}
	stats.Strategy = name
	return policy, est
}

func (c *Crawler) runID() string {
	if c.NewRunID != nil {
		return c.NewRunID()
	}
	return uuid.NewString()
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
