package crawl_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/crawl"
	"github.com/fwojciec/sift/mock"
	"github.com/stretchr/testify/assert"
)

func newEstimator(site *fakeSite) *crawl.Estimator {
	return &crawl.Estimator{
		Fetcher:  site.fetcher(),
		Links:    site.links(),
		Interval: time.Millisecond,
	}
}

func TestEstimator_Estimate(t *testing.T) {
	t.Parallel()

	t.Run("extrapolates from sampled out-degree", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			root:    {links: []string{u("/a"), u("/b"), u("/c")}},
			u("/a"): {},
			u("/b"): {},
			u("/c"): {},
		})

		est := newEstimator(site).Estimate(context.Background(), root)

		assert.Equal(t, 4, est.PagesSampled)
		assert.Equal(t, 3, est.UniqueLinks)
		assert.InDelta(t, 0.75, est.AvgOutDegree, 1e-9)
		assert.Equal(t, 6, est.EstimatedPages)
		assert.True(t, est.RobotsAllowed)
		assert.Empty(t, est.Err)
	})

	t.Run("stops after the sample size", func(t *testing.T) {
		t.Parallel()

		pages := map[string]fakePage{}
		var links []string
		for i := range 10 {
			link := u(fmt.Sprintf("/p%d", i))
			links = append(links, link)
			pages[link] = fakePage{}
		}
		pages[root] = fakePage{links: links}
		site := newFakeSite(pages)

		est := newEstimator(site).Estimate(context.Background(), root)

		assert.Equal(t, crawl.DefaultSampleSize, est.PagesSampled)
		assert.Equal(t, crawl.DefaultSampleSize, site.totalFetches())
		assert.Equal(t, 10, est.UniqueLinks)
		assert.Equal(t, 15, est.EstimatedPages)
	})

	t.Run("bounds the sample queue", func(t *testing.T) {
		t.Parallel()

		pages := map[string]fakePage{}
		var links []string
		for i := range 30 {
			link := u(fmt.Sprintf("/p%d", i))
			links = append(links, link)
			pages[link] = fakePage{}
		}
		pages[root] = fakePage{links: links}
		site := newFakeSite(pages)
		e := newEstimator(site)
		e.SampleSize = 100

		est := e.Estimate(context.Background(), root)

		assert.Equal(t, 1+crawl.DefaultSampleQueueCap, est.PagesSampled)
		assert.Equal(t, 30, est.UniqueLinks)
		assert.Equal(t, 51, est.EstimatedPages)
	})

	t.Run("ignores links to other hosts", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			root:    {links: []string{u("/a"), "https://other.org/x", "https://docs.example.com/y"}},
			u("/a"): {},
		})

		est := newEstimator(site).Estimate(context.Background(), root)

		assert.Equal(t, 2, est.PagesSampled)
		assert.Equal(t, 1, est.UniqueLinks)
		assert.Zero(t, site.fetchCount("https://other.org/x"))
	})

	t.Run("falls back when the start page cannot be fetched", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{root: {fetchErr: errConnRefused}})

		est := newEstimator(site).Estimate(context.Background(), root)

		assert.Equal(t, crawl.DefaultFailedEstimate, est.EstimatedPages)
		assert.Zero(t, est.PagesSampled)
		assert.Contains(t, est.Err, "connection refused")
	})

	t.Run("falls back when nothing could be sampled", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{root: {status: 500}})

		est := newEstimator(site).Estimate(context.Background(), root)

		assert.Equal(t, crawl.DefaultEstimate, est.EstimatedPages)
		assert.Zero(t, est.PagesSampled)
		assert.NotEmpty(t, est.Err)
	})

	t.Run("skips non-html sample pages", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{
			root:          {links: []string{u("/doc.pdf"), u("/a")}},
			u("/doc.pdf"): {contentType: "application/pdf"},
			u("/a"):       {},
		})

		est := newEstimator(site).Estimate(context.Background(), root)

		assert.Equal(t, 2, est.PagesSampled)
		assert.Equal(t, 2, est.UniqueLinks)
	})

	t.Run("returns the default estimate when cancelled", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{root: {}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		est := newEstimator(site).Estimate(ctx, root)

		assert.Equal(t, crawl.DefaultEstimate, est.EstimatedPages)
		assert.NotEmpty(t, est.Err)
	})

	t.Run("records robots and sitemap signals", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{root: {}})
		e := newEstimator(site)
		e.Robots = &mock.RobotsPolicy{
			CanFetchFn: func(context.Context, string) bool { return false },
			CrawlDelayFn: func(context.Context, string) (time.Duration, bool) {
				return 2 * time.Second, true
			},
			SitemapsFn: func(context.Context, string) []string {
				return []string{u("/sitemap-docs.xml")}
			},
		}
		var gotLocations []string
		e.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, locations []string) ([]string, error) {
				gotLocations = locations
				return []string{u("/a"), u("/b"), u("/c")}, nil
			},
		}

		est := e.Estimate(context.Background(), root)

		assert.False(t, est.RobotsAllowed)
		assert.InDelta(t, 2.0, est.RobotsCrawlDelay, 1e-9)
		assert.Equal(t, 3, est.SitemapURLs)
		assert.Equal(t, []string{u("/sitemap-docs.xml")}, gotLocations)
	})

	t.Run("ignores sitemap errors", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(map[string]fakePage{root: {}})
		e := newEstimator(site)
		e.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string, []string) ([]string, error) {
				return nil, sift.Errorf(sift.EINTERNAL, "boom")
			},
		}

		est := e.Estimate(context.Background(), root)

		assert.Zero(t, est.SitemapURLs)
		assert.Equal(t, 1, est.PagesSampled)
	})
}
