package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sift"
)

// Ensure LoggingSearcher implements sift.Searcher.
var _ sift.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   sift.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next sift.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the query.
func (s *LoggingSearcher) Search(ctx context.Context, query string, mode sift.SearchMode, k int) (results []sift.SearchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"query", query,
			"mode", mode,
			"k", k,
			"results", len(results),
			"duration", time.Since(begin),
		}
		if len(results) > 0 {
			attrs = append(attrs, "top_score", results[0].Score())
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		s.logger.InfoContext(ctx, "search", attrs...)
	}(time.Now())
	return s.next.Search(ctx, query, mode, k)
}
