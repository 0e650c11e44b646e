package mock

import (
	"context"
	"time"

	"github.com/fwojciec/sift"
)

var _ sift.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of sift.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, locations []string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, locations []string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, locations)
}

var _ sift.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of sift.RobotsPolicy.
type RobotsPolicy struct {
	CanFetchFn   func(ctx context.Context, url string) bool
	CrawlDelayFn func(ctx context.Context, url string) (time.Duration, bool)
	SitemapsFn   func(ctx context.Context, url string) []string
}

func (p *RobotsPolicy) CanFetch(ctx context.Context, url string) bool {
	return p.CanFetchFn(ctx, url)
}

func (p *RobotsPolicy) CrawlDelay(ctx context.Context, url string) (time.Duration, bool) {
	return p.CrawlDelayFn(ctx, url)
}

func (p *RobotsPolicy) Sitemaps(ctx context.Context, url string) []string {
	return p.SitemapsFn(ctx, url)
}

var _ sift.URLValidator = (*URLValidator)(nil)

// URLValidator is a mock implementation of sift.URLValidator.
type URLValidator struct {
	ValidateFn func(rawURL string) error
}

func (v *URLValidator) Validate(rawURL string) error {
	return v.ValidateFn(rawURL)
}
