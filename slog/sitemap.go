package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sift"
)

var _ sift.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs every sitemap lookup made by the estimator.
type LoggingSitemapService struct {
	next   sift.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService wraps next.
func NewLoggingSitemapService(next sift.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs logs the sitemap lookup for baseURL. locations are the sitemaps
// declared in robots.txt; when there are none the wrapped service falls
// back to /sitemap.xml, which is logged as source=default. Failures are
// logged at WARN since the estimator continues without a sitemap.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, locations []string) (urls []string, err error) {
	defer func(begin time.Time) {
		source := "robots"
		if len(locations) == 0 {
			source = "default"
		}
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "sitemap discovery",
			"url", baseURL,
			"source", source,
			"sitemaps", len(locations),
			"urls", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, locations)
}
