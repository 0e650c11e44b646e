package crawl

import "sync"

// VisitedSet records every URL a worker has claimed. Claims are exact so
// that each URL is fetched at most once per run.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Claim atomically records url. It returns false if url was claimed before.
func (v *VisitedSet) Claim(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.urls[url]; ok {
		return false
	}
	v.urls[url] = struct{}{}
	return true
}

// Release forgets a claim on url so that it can be claimed again.
func (v *VisitedSet) Release(url string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.urls, url)
}

// Contains reports whether url has been claimed.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.urls[url]
	return ok
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}

// Snapshot returns the claimed URLs except those in exclude.
func (v *VisitedSet) Snapshot(exclude []string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, u := range exclude {
		skip[u] = true
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.urls))
	for u := range v.urls {
		if !skip[u] {
			out = append(out, u)
		}
	}
	return out
}
