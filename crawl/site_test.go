package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/crawl"
	"github.com/fwojciec/sift/mock"
)

// fakePage describes how the fake site answers for one URL.
type fakePage struct {
	status      int
	contentType string
	links       []string
	fetchErr    error
	thin        bool
	panics      bool
}

// fakeSite serves pages from memory and counts fetches per URL. The body of
// every response is its URL so the fake extractor can find the page again.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]fakePage
	fetches map[string]int
}

func newFakeSite(pages map[string]fakePage) *fakeSite {
	return &fakeSite{pages: pages, fetches: make(map[string]int)}
}

func (s *fakeSite) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (*sift.Response, error) {
			s.mu.Lock()
			s.fetches[url]++
			p, ok := s.pages[url]
			s.mu.Unlock()

			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !ok {
				return &sift.Response{URL: url, StatusCode: 404, ContentType: "text/html"}, nil
			}
			if p.fetchErr != nil {
				return nil, p.fetchErr
			}
			status := p.status
			if status == 0 {
				status = 200
			}
			ct := p.contentType
			if ct == "" {
				ct = "text/html; charset=utf-8"
			}
			return &sift.Response{URL: url, StatusCode: status, ContentType: ct, Body: url}, nil
		},
		CloseFn: func() error { return nil },
	}
}

func (s *fakeSite) extractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(rawHTML, pageURL, _ string) (*sift.Extraction, error) {
			s.mu.Lock()
			p := s.pages[rawHTML]
			s.mu.Unlock()

			if p.panics {
				panic("extractor exploded")
			}
			if p.thin {
				return nil, sift.Errorf(sift.EINVALID, "insufficient content")
			}
			return &sift.Extraction{
				Content:  "content of " + pageURL + " " + strings.Repeat("word ", 20),
				Strategy: "fake",
				Metadata: sift.PageMetadata{Title: pageURL, Language: "en"},
				Links:    p.links,
			}, nil
		},
	}
}

func (s *fakeSite) fetchCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[url]
}

func (s *fakeSite) totalFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.fetches {
		n += c
	}
	return n
}

// testPolicy returns a fast policy for tests.
func testPolicy() sift.CrawlPolicy {
	p := sift.DefaultCrawlPolicy()
	p.Concurrency = 4
	p.InterRequestDelay = 0
	p.Timeout = 5 * time.Second
	p.CheckpointInterval = 0
	return p
}

func newExecutor(site *fakeSite) *crawl.Executor {
	return &crawl.Executor{
		Fetcher:    site.fetcher(),
		Extractor:  site.extractor(),
		PopTimeout: 20 * time.Millisecond,
		Now:        func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

var errConnRefused = errors.New("connection refused")

func (s *fakeSite) links() *mock.LinkExtractor {
	return &mock.LinkExtractor{
		ExtractLinksFn: func(rawHTML, _, _ string) ([]string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.pages[rawHTML].links, nil
		},
	}
}
