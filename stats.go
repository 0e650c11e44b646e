package sift

import "time"

// SiteEstimate is the outcome of sampling a site before a crawl run.
type SiteEstimate struct {
	EstimatedPages   int     `json:"estimated_pages"`
	PagesSampled     int     `json:"pages_sampled"`
	UniqueLinks      int     `json:"unique_links_found"`
	AvgOutDegree     float64 `json:"avg_links_per_page"`
	RobotsAllowed    bool    `json:"robots_allowed"`
	RobotsCrawlDelay float64 `json:"robots_crawl_delay"`
	SitemapURLs      int     `json:"sitemap_urls"`

	// Err describes why estimation fell back to a default, if it did.
	Err string `json:"error,omitempty"`
}

// CrawlStats summarises one crawl run.
type CrawlStats struct {
	RunID           string         `json:"run_id"`
	StartURL        string         `json:"start_url"`
	TargetDomain    string         `json:"target_domain"`
	PagesCrawled    int            `json:"pages_crawled"`
	PagesFailed     int            `json:"pages_failed"`
	TotalWords      int            `json:"total_words"`
	TotalChars      int            `json:"total_chars"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	DurationSeconds float64        `json:"duration_seconds"`
	Strategy        string         `json:"strategy"`
	Policy          PolicySnapshot `json:"policy"`
	Estimate        *SiteEstimate  `json:"estimate,omitempty"`
	FailureReasons  map[string]int `json:"failure_reasons,omitempty"`
	Resumed         bool           `json:"resumed,omitempty"`
}

// Claimed returns the number of frontier entries the run processed.
func (s *CrawlStats) Claimed() int {
	return s.PagesCrawled + s.PagesFailed
}

// Failure reasons recorded in CrawlStats.FailureReasons.
const (
	FailRobots       = "robots disallowed"
	FailFetch        = "fetch error"
	FailStatus       = "http status"
	FailContentType  = "non-html content type"
	FailInsufficient = "insufficient content"
	FailPanic        = "worker panic"
)
