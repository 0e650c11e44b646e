// Package robotstxt implements sift.RobotsPolicy on top of
// github.com/temoto/robotstxt with a per-origin cache.
package robotstxt

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/sift"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

const maxRobotsBytes = 1 << 20

// Ensure Cache implements sift.RobotsPolicy at compile time.
var _ sift.RobotsPolicy = (*Cache)(nil)

// entry is the cached outcome of one robots.txt lookup. A nil group means
// everything is allowed.
type entry struct {
	group    *robotstxt.Group
	sitemaps []string
}

func (e *entry) allows(path string) bool {
	if e.group == nil {
		return true
	}
	return e.group.Test(path)
}

// Cache fetches robots.txt once per origin and answers queries from memory.
// Lookups fail open: network errors, unparseable files and 5xx statuses
// all allow everything.
type Cache struct {
	client    *http.Client
	userAgent string

	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithUserAgent sets the user agent sent with robots requests and used to
// select the rule group.
func WithUserAgent(ua string) Option {
	return func(c *Cache) {
		c.userAgent = ua
	}
}

// NewCache creates a robots cache. If client is nil, a client with a 10s
// timeout is used.
func NewCache(client *http.Client, opts ...Option) *Cache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Cache{
		client:    client,
		userAgent: sift.DefaultUserAgent,
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanFetch reports whether rawURL may be crawled.
func (c *Cache) CanFetch(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return c.lookup(ctx, u).allows(path)
}

// CrawlDelay returns the Crawl-delay declared for the host of rawURL.
func (c *Cache) CrawlDelay(ctx context.Context, rawURL string) (time.Duration, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return 0, false
	}
	e := c.lookup(ctx, u)
	if e.group == nil || e.group.CrawlDelay <= 0 {
		return 0, false
	}
	return e.group.CrawlDelay, true
}

// Sitemaps returns the Sitemap entries declared for the host of rawURL.
func (c *Cache) Sitemaps(ctx context.Context, rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return c.lookup(ctx, u).sitemaps
}

// Len returns the number of cached origins.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(ctx context.Context, u *url.URL) *entry {
	origin := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)

	c.mu.RLock()
	e, ok := c.entries[origin]
	c.mu.RUnlock()
	if ok {
		return e
	}

	v, _, _ := c.group.Do(origin, func() (any, error) {
		c.mu.RLock()
		e, ok := c.entries[origin]
		c.mu.RUnlock()
		if ok {
			return e, nil
		}

		e = c.fetch(ctx, origin)
		// A cancelled lookup is not cached so a later caller can retry.
		if ctx.Err() == nil {
			c.mu.Lock()
			c.entries[origin] = e
			c.mu.Unlock()
		}
		return e, nil
	})
	return v.(*entry)
}

func (c *Cache) fetch(ctx context.Context, origin string) *entry {
	allowAll := &entry{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", http.NoBody)
	if err != nil {
		return allowAll
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return allowAll
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return allowAll
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return allowAll
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return allowAll
	}

	return &entry{
		group:    data.FindGroup(c.userAgent),
		sitemaps: data.Sitemaps,
	}
}

// AllowAll is a sift.RobotsPolicy that permits everything. It is used when
// robots compliance is disabled.
type AllowAll struct{}

var _ sift.RobotsPolicy = AllowAll{}

func (AllowAll) CanFetch(context.Context, string) bool { return true }

func (AllowAll) CrawlDelay(context.Context, string) (time.Duration, bool) { return 0, false }

func (AllowAll) Sitemaps(context.Context, string) []string { return nil }
