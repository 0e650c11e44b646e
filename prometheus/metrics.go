// Package prometheus exports crawl and search metrics. Fetcher and Searcher
// wrap the domain interfaces and record every call.
package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/crawl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the collectors registered for one process.
type Metrics struct {
	fetches        *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	fetchBytes     prometheus.Counter
	pages          *prometheus.CounterVec
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	searchResults  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors against reg. A nil reg uses a fresh
// registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sift_fetch_requests_total",
			Help: "Page fetches partitioned by status class.",
		}, []string{"status_class"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sift_fetch_duration_seconds",
			Help:    "Fetch duration partitioned by status class.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"status_class"}),
		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sift_fetch_bytes_total",
			Help: "Body bytes downloaded.",
		}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sift_crawl_pages_total",
			Help: "Crawled pages partitioned by result.",
		}, []string{"result"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sift_search_queries_total",
			Help: "Search queries partitioned by mode and result.",
		}, []string{"mode", "result"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sift_search_duration_seconds",
			Help:    "Search latency partitioned by mode.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"mode"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sift_search_results",
			Help:    "Number of results returned per query.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{
		m.fetches,
		m.fetchDuration,
		m.fetchBytes,
		m.pages,
		m.searches,
		m.searchDuration,
		m.searchResults,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveProgress counts completed and failed pages. It has the shape of
// crawl.ProgressFunc so it can be chained with other progress callbacks.
func (m *Metrics) ObserveProgress(ev crawl.ProgressEvent) {
	switch ev.Type {
	case crawl.ProgressCompleted:
		m.pages.WithLabelValues("success").Inc()
	case crawl.ProgressFailed:
		m.pages.WithLabelValues("failure").Inc()
	}
}

// statusClass buckets a status code into 2xx, 3xx and so on. Transport
// errors are "error".
func statusClass(resp *sift.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	if resp.StatusCode < 100 || resp.StatusCode > 599 {
		return "other"
	}
	return strconv.Itoa(resp.StatusCode/100) + "xx"
}

// Ensure Fetcher implements sift.Fetcher at compile time.
var _ sift.Fetcher = (*Fetcher)(nil)

// Fetcher records every fetch made by the wrapped fetcher.
type Fetcher struct {
	next    sift.Fetcher
	metrics *Metrics
}

// NewFetcher wraps next.
func NewFetcher(next sift.Fetcher, m *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: m}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*sift.Response, error) {
	begin := time.Now()
	resp, err := f.next.Fetch(ctx, url)

	class := statusClass(resp, err)
	f.metrics.fetches.WithLabelValues(class).Inc()
	f.metrics.fetchDuration.WithLabelValues(class).Observe(time.Since(begin).Seconds())
	if err == nil && resp != nil {
		f.metrics.fetchBytes.Add(float64(len(resp.Body)))
	}
	return resp, err
}

func (f *Fetcher) Close() error {
	return f.next.Close()
}

// Ensure Searcher implements sift.Searcher at compile time.
var _ sift.Searcher = (*Searcher)(nil)

// Searcher records every query answered by the wrapped searcher.
type Searcher struct {
	next    sift.Searcher
	metrics *Metrics
}

// NewSearcher wraps next.
func NewSearcher(next sift.Searcher, m *Metrics) *Searcher {
	return &Searcher{next: next, metrics: m}
}

func (s *Searcher) Search(ctx context.Context, query string, mode sift.SearchMode, k int) ([]sift.SearchResult, error) {
	begin := time.Now()
	results, err := s.next.Search(ctx, query, mode, k)

	result := "success"
	if err != nil {
		result = sift.ErrorCode(err)
	}
	s.metrics.searches.WithLabelValues(string(mode), result).Inc()
	s.metrics.searchDuration.WithLabelValues(string(mode)).Observe(time.Since(begin).Seconds())
	if err == nil {
		s.metrics.searchResults.Observe(float64(len(results)))
	}
	return results, err
}
