package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sift"
)

// Ensure LoggingResultWriter implements sift.ResultWriter.
var _ sift.ResultWriter = (*LoggingResultWriter)(nil)

// LoggingResultWriter wraps a ResultWriter with logging. Failed writes are
// logged at error level.
type LoggingResultWriter struct {
	next   sift.ResultWriter
	logger *slog.Logger
}

// NewLoggingResultWriter creates a new LoggingResultWriter.
func NewLoggingResultWriter(next sift.ResultWriter, logger *slog.Logger) *LoggingResultWriter {
	return &LoggingResultWriter{next: next, logger: logger}
}

// WriteRun delegates to the wrapped writer and logs the written files.
func (w *LoggingResultWriter) WriteRun(ctx context.Context, stats *sift.CrawlStats, pages []*sift.PageRecord) (ds *sift.Dataset, err error) {
	defer func(begin time.Time) {
		if err != nil {
			w.logger.ErrorContext(ctx, "write results",
				"pages", len(pages),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		w.logger.InfoContext(ctx, "write results",
			"domain", ds.Domain,
			"pages", len(pages),
			"pages_file", ds.PagesFile,
			"stats_file", ds.StatsFile,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return w.next.WriteRun(ctx, stats, pages)
}
