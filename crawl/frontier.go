package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/bloom"
)

// Frontier defaults.
const (
	// DefaultFrontierCapacity bounds the number of queued entries.
	DefaultFrontierCapacity = 1000

	frontierExpectedURLs      = 100000
	frontierFalsePositiveRate = 0.001
)

// Frontier is a bounded FIFO of crawl entries shared by all workers.
// A Bloom filter keeps a URL from being queued twice; pushes beyond the
// capacity are dropped. The frontier also tracks entries that have been
// popped but not yet marked done so that workers can tell an idle crawl
// from a busy one.
type Frontier struct {
	mu       sync.Mutex
	queue    []sift.FrontierEntry
	active   map[string]sift.FrontierEntry
	seen     *bloom.Filter
	capacity int
	dropped  int
	notify   chan struct{}
}

// NewFrontier creates a frontier holding at most capacity queued entries.
func NewFrontier(capacity int) *Frontier {
	if capacity <= 0 {
		capacity = DefaultFrontierCapacity
	}
	return &Frontier{
		active:   make(map[string]sift.FrontierEntry),
		seen:     bloom.NewFilter(frontierExpectedURLs, frontierFalsePositiveRate),
		capacity: capacity,
		notify:   make(chan struct{}, 1),
	}
}

// Push queues e. It returns false if the URL was offered before or the
// frontier is full.
func (f *Frontier) Push(e sift.FrontierEntry) bool {
	f.mu.Lock()
	if f.seen.Test(e.URL) {
		f.mu.Unlock()
		return false
	}
	if len(f.queue) >= f.capacity {
		f.dropped++
		f.mu.Unlock()
		return false
	}
	f.seen.Add(e.URL)
	f.queue = append(f.queue, e)
	f.mu.Unlock()

	f.signal()
	return true
}

// Requeue puts a popped entry back at the head of the queue, ignoring the
// capacity and the Bloom filter. It is meant for entries whose processing
// was interrupted.
func (f *Frontier) Requeue(e sift.FrontierEntry) {
	f.mu.Lock()
	f.queue = append([]sift.FrontierEntry{e}, f.queue...)
	f.mu.Unlock()

	f.signal()
}

// MarkSeen records url as offered without queueing it.
func (f *Frontier) MarkSeen(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen.Add(url)
}

// Pop removes the oldest entry, waiting up to timeout for one to arrive.
// The bool result is false on timeout or cancellation. A popped entry is
// active until Done is called for it.
func (f *Frontier) Pop(ctx context.Context, timeout time.Duration) (sift.FrontierEntry, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if e, ok := f.tryPop(); ok {
			return e, true
		}
		select {
		case <-ctx.Done():
			return sift.FrontierEntry{}, false
		case <-timer.C:
			return f.tryPop()
		case <-f.notify:
		}
	}
}

func (f *Frontier) tryPop() (sift.FrontierEntry, bool) {
	f.mu.Lock()
	if len(f.queue) == 0 {
		f.mu.Unlock()
		return sift.FrontierEntry{}, false
	}
	e := f.queue[0]
	f.queue[0] = sift.FrontierEntry{}
	f.queue = f.queue[1:]
	f.active[e.URL] = e
	more := len(f.queue) > 0
	f.mu.Unlock()

	// Pass the wakeup on so other waiters see the remaining entries.
	if more {
		f.signal()
	}
	return e, true
}

// Done marks a popped entry as fully processed.
func (f *Frontier) Done(e sift.FrontierEntry) {
	f.mu.Lock()
	delete(f.active, e.URL)
	idle := len(f.queue) == 0 && len(f.active) == 0
	f.mu.Unlock()

	if idle {
		f.signal()
	}
}

// Idle reports whether nothing is queued and nothing is being processed.
func (f *Frontier) Idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) == 0 && len(f.active) == 0
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Dropped returns how many new URLs were rejected because the frontier was
// full. Repeated offers of a known URL are not counted.
func (f *Frontier) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Discovered returns the approximate number of distinct URLs offered.
func (f *Frontier) Discovered() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.EstimatedCount()
}

// Snapshot returns the active entries followed by the queued ones, which
// is the order they should be retried in after a resume.
func (f *Frontier) Snapshot() (entries []sift.FrontierEntry, active []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries = make([]sift.FrontierEntry, 0, len(f.active)+len(f.queue))
	for url, e := range f.active {
		entries = append(entries, e)
		active = append(active, url)
	}
	entries = append(entries, f.queue...)
	return entries, active
}

func (f *Frontier) signal() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}
