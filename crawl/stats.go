package crawl

import (
	"sync"

	"github.com/fwojciec/sift"
)

// recorder accumulates the results of a run. Page records and success
// counters change together under one mutex.
type recorder struct {
	mu       sync.Mutex
	pages    []*sift.PageRecord
	crawled  int
	failed   int
	words    int
	chars    int
	reasons  map[string]int
	reserved int
}

func newRecorder() *recorder {
	return &recorder{reasons: make(map[string]int)}
}

// reserve takes one page slot. It returns false when crawled pages plus
// outstanding reservations already meet limit.
func (r *recorder) reserve(limit int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.crawled+r.reserved >= limit {
		return false
	}
	r.reserved++
	return true
}

// release returns an unused slot.
func (r *recorder) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved--
}

// full reports whether the page cap has been met by successes alone.
func (r *recorder) full(limit int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.crawled >= limit
}

// success consumes a reservation and records page. It returns the new
// success count.
func (r *recorder) success(page *sift.PageRecord) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved--
	r.pages = append(r.pages, page)
	r.crawled++
	r.words += page.WordCount
	r.chars += page.CharCount
	return r.crawled
}

// failure consumes a reservation and counts a failed page by reason.
func (r *recorder) failure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved--
	r.failed++
	r.reasons[reason]++
}

// restore loads the counters of a checkpoint.
func (r *recorder) restore(cp *sift.Checkpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range cp.Pages {
		r.pages = append(r.pages, p)
		r.crawled++
		r.words += p.WordCount
		r.chars += p.CharCount
	}
	r.failed = cp.PagesFailed
	for k, v := range cp.FailReasons {
		r.reasons[k] = v
	}
}

// snapshot copies the current pages and counters.
func (r *recorder) snapshot() (pages []*sift.PageRecord, failed int, reasons map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pages = make([]*sift.PageRecord, len(r.pages))
	copy(pages, r.pages)
	reasons = make(map[string]int, len(r.reasons))
	for k, v := range r.reasons {
		reasons[k] = v
	}
	return pages, r.failed, reasons
}

// fill copies the totals into stats.
func (r *recorder) fill(stats *sift.CrawlStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats.PagesCrawled = r.crawled
	stats.PagesFailed = r.failed
	stats.TotalWords = r.words
	stats.TotalChars = r.chars
	stats.FailureReasons = make(map[string]int, len(r.reasons))
	for k, v := range r.reasons {
		stats.FailureReasons[k] = v
	}
}

func (r *recorder) counts() (crawled, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.crawled, r.failed
}
