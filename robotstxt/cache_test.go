package robotstxt_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sift/robotstxt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRobotsServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCache_CanFetch(t *testing.T) {
	t.Parallel()

	t.Run("applies disallow rules", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /private/\n", nil)
		cache := robotstxt.NewCache(srv.Client())

		assert.True(t, cache.CanFetch(context.Background(), srv.URL+"/docs/intro"))
		assert.False(t, cache.CanFetch(context.Background(), srv.URL+"/private/secret"))
		assert.True(t, cache.CanFetch(context.Background(), srv.URL))
	})

	t.Run("selects the group for the configured agent", func(t *testing.T) {
		t.Parallel()

		body := "User-agent: sift\nDisallow: /\n\nUser-agent: *\nAllow: /\n"
		srv := newRobotsServer(t, http.StatusOK, body, nil)
		cache := robotstxt.NewCache(srv.Client(), robotstxt.WithUserAgent("sift"))

		assert.False(t, cache.CanFetch(context.Background(), srv.URL+"/page"))
	})

	t.Run("missing robots allows everything", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, http.StatusNotFound, "", nil)
		cache := robotstxt.NewCache(srv.Client())

		assert.True(t, cache.CanFetch(context.Background(), srv.URL+"/anything"))
	})

	t.Run("server errors fail open", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, http.StatusServiceUnavailable, "User-agent: *\nDisallow: /\n", nil)
		cache := robotstxt.NewCache(srv.Client())

		assert.True(t, cache.CanFetch(context.Background(), srv.URL+"/anything"))
	})

	t.Run("unreachable host fails open", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		cache := robotstxt.NewCache(&http.Client{Timeout: time.Second})

		assert.True(t, cache.CanFetch(context.Background(), addr+"/page"))
	})

	t.Run("fetches robots once per origin under concurrency", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := newRobotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /x\n", &hits)
		cache := robotstxt.NewCache(srv.Client())

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				cache.CanFetch(context.Background(), srv.URL+"/page")
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, 1, cache.Len())
	})
}

func TestCache_CrawlDelayAndSitemaps(t *testing.T) {
	t.Parallel()

	body := "User-agent: *\nCrawl-delay: 2\nDisallow: /tmp\n\nSitemap: https://example.com/sitemap.xml\n"
	srv := newRobotsServer(t, http.StatusOK, body, nil)
	cache := robotstxt.NewCache(srv.Client())

	delay, ok := cache.CrawlDelay(context.Background(), srv.URL+"/a")
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, delay)
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, cache.Sitemaps(context.Background(), srv.URL))
}

func TestCache_NoCrawlDelay(t *testing.T) {
	t.Parallel()

	srv := newRobotsServer(t, http.StatusOK, "User-agent: *\nDisallow:\n", nil)
	cache := robotstxt.NewCache(srv.Client())

	_, ok := cache.CrawlDelay(context.Background(), srv.URL+"/a")
	assert.False(t, ok)
}

func TestAllowAll(t *testing.T) {
	t.Parallel()

	var p robotstxt.AllowAll

	assert.True(t, p.CanFetch(context.Background(), "https://example.com/private"))
	_, ok := p.CrawlDelay(context.Background(), "https://example.com")
	assert.False(t, ok)
	assert.Nil(t, p.Sitemaps(context.Background(), "https://example.com"))
}
