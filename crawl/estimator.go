package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/sift"
	"golang.org/x/time/rate"
)

// Estimator defaults.
const (
	DefaultSampleSize      = 5
	DefaultSampleQueueCap  = 20
	DefaultSampleInterval  = 500 * time.Millisecond
	DefaultEstimate        = 50
	DefaultFailedEstimate  = 100
	DefaultEstimateTimeout = 30 * time.Second
)

// Estimator guesses the size of a site by sampling a few pages breadth
// first before a crawl. Robots and Sitemaps are optional.
type Estimator struct {
	Fetcher  sift.Fetcher
	Links    sift.LinkExtractor
	Robots   sift.RobotsPolicy
	Sitemaps sift.SitemapService

	// SampleSize is the number of pages to sample. Defaults to DefaultSampleSize.
	SampleSize int

	// QueueCap bounds pending sample URLs. Defaults to DefaultSampleQueueCap.
	QueueCap int

	// Interval paces sample fetches. Defaults to DefaultSampleInterval.
	Interval time.Duration

	// Timeout bounds each sample fetch. Defaults to DefaultEstimateTimeout.
	Timeout time.Duration
}

// Estimate samples the site at startURL. It never fails: problems are
// reported in SiteEstimate.Err together with a default estimate.
func (e *Estimator) Estimate(ctx context.Context, startURL string) *sift.SiteEstimate {
	est := &sift.SiteEstimate{RobotsAllowed: true}

	if e.Robots != nil {
		est.RobotsAllowed = e.Robots.CanFetch(ctx, startURL)
		if d, ok := e.Robots.CrawlDelay(ctx, startURL); ok {
			est.RobotsCrawlDelay = d.Seconds()
		}
	}
	if e.Sitemaps != nil {
		var locations []string
		if e.Robots != nil {
			locations = e.Robots.Sitemaps(ctx, startURL)
		}
		if urls, err := e.Sitemaps.DiscoverURLs(ctx, startURL, locations); err == nil {
			est.SitemapURLs = len(urls)
		}
	}

	start := sift.NormalizeURL(startURL)
	host := sift.Hostname(start)
	limiter := rate.NewLimiter(rate.Every(e.interval()), 1)

	queue := []string{start}
	visited := map[string]bool{}
	unique := map[string]bool{}

	for len(queue) > 0 && est.PagesSampled < e.sampleSize() {
		url := queue[0]
		queue = queue[1:]
		if visited[url] {
			continue
		}
		visited[url] = true

		if err := limiter.Wait(ctx); err != nil {
			est.Err = err.Error()
			break
		}

		resp, err := e.fetch(ctx, url)
		if err != nil {
			if url == start {
				est.EstimatedPages = DefaultFailedEstimate
				est.Err = err.Error()
				return est
			}
			continue
		}
		if resp.StatusCode != 200 || !resp.IsHTML() {
			continue
		}
		est.PagesSampled++

		links, err := e.Links.ExtractLinks(resp.Body, resp.URL, host)
		if err != nil {
			continue
		}
		for _, link := range links {
			if sift.Hostname(link) != host || visited[link] {
				continue
			}
			unique[link] = true
			if len(queue) < e.queueCap() {
				queue = append(queue, link)
			}
		}
	}

	est.UniqueLinks = len(unique)
	if est.PagesSampled == 0 {
		est.EstimatedPages = DefaultEstimate
		if est.Err == "" {
			est.Err = "no pages could be sampled"
		}
		return est
	}

	est.AvgOutDegree = float64(est.UniqueLinks) / float64(est.PagesSampled)
	est.EstimatedPages = min(
		est.UniqueLinks+est.PagesSampled,
		int(est.AvgOutDegree*float64(est.PagesSampled)*2),
	)
	return est
}

func (e *Estimator) fetch(ctx context.Context, url string) (*sift.Response, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultEstimateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.Fetcher.Fetch(ctx, url)
}

func (e *Estimator) sampleSize() int {
	if e.SampleSize > 0 {
		return e.SampleSize
	}
	return DefaultSampleSize
}

func (e *Estimator) queueCap() int {
	if e.QueueCap > 0 {
		return e.QueueCap
	}
	return DefaultSampleQueueCap
}

func (e *Estimator) interval() time.Duration {
	if e.Interval > 0 {
		return e.Interval
	}
	return DefaultSampleInterval
}
