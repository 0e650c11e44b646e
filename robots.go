package sift

import (
	"context"
	"time"
)

// RobotsPolicy answers robots exclusion queries for crawl targets.
// Implementations fail open: an unreachable or broken robots file allows
// everything.
type RobotsPolicy interface {
	// CanFetch reports whether url may be crawled.
	CanFetch(ctx context.Context, url string) bool

	// CrawlDelay returns the delay declared for the host of url.
	// The bool result is false when no delay is declared.
	CrawlDelay(ctx context.Context, url string) (time.Duration, bool)

	// Sitemaps returns sitemap URLs declared for the host of url.
	Sitemaps(ctx context.Context, url string) []string
}

// SitemapService discovers page URLs listed in a site's sitemaps.
type SitemapService interface {
	// DiscoverURLs returns page URLs from the sitemaps at the given
	// locations, or from the conventional /sitemap.xml of baseURL when
	// locations is empty.
	DiscoverURLs(ctx context.Context, baseURL string, locations []string) ([]string, error)
}
