package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/sift"
	"golang.org/x/sync/semaphore"
)

// DefaultPopTimeout is how long an idle worker waits for new entries.
const DefaultPopTimeout = time.Second

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Failed    int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress. Calls are
// serialized.
type ProgressFunc func(event ProgressEvent)

// Execution is the outcome of one executor run.
type Execution struct {
	Pages   []*sift.PageRecord
	Stats   *sift.CrawlStats
	Dropped int

	// Discovered approximates the distinct URLs seen during the run.
	Discovered uint
}

// Executor drains a frontier with a fixed set of workers. Fetcher and
// Extractor are required; Robots and Checkpoints are optional.
type Executor struct {
	Fetcher     sift.Fetcher
	Extractor   sift.Extractor
	Robots      sift.RobotsPolicy
	Checkpoints sift.CheckpointStore
	Logger      *slog.Logger

	// PopTimeout overrides DefaultPopTimeout.
	PopTimeout time.Duration

	// FrontierCapacity overrides DefaultFrontierCapacity.
	FrontierCapacity int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// run holds the state of one execution.
type run struct {
	e        *Executor
	policy   sift.CrawlPolicy
	key      string
	domain   string
	frontier *Frontier
	visited  *VisitedSet
	sem      *semaphore.Weighted
	rec      *recorder
	stats    *sift.CrawlStats

	progressMu sync.Mutex
	progress   ProgressFunc

	saveMu sync.Mutex
}

// outcome classifies the processing of one entry.
type outcome int

const (
	entrySkipped outcome = iota
	entrySucceeded
	entryFailed
)

// Execute crawls from startURL under policy. The returned stats are always
// finalized, including on cancellation and when no page succeeds. An error
// is returned only for an unusable policy.
func (e *Executor) Execute(ctx context.Context, startURL string, policy sift.CrawlPolicy, stats *sift.CrawlStats, progress ProgressFunc) (*Execution, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &sift.CrawlStats{}
	}

	start := sift.NormalizeURL(startURL)
	r := &run{
		e:        e,
		policy:   policy,
		key:      start,
		domain:   sift.Hostname(start),
		frontier: NewFrontier(e.FrontierCapacity),
		visited:  NewVisitedSet(),
		sem:      semaphore.NewWeighted(int64(policy.Concurrency)),
		rec:      newRecorder(),
		stats:    stats,
		progress: progress,
	}

	stats.StartURL = startURL
	stats.TargetDomain = r.domain
	stats.Policy = policy.Snapshot()
	if stats.StartTime.IsZero() {
		stats.StartTime = e.now()
	}

	if !r.resume(ctx) {
		r.frontier.Push(sift.FrontierEntry{URL: start, Depth: 0})
	}

	r.emit(ProgressEvent{Type: ProgressStarted, Total: policy.MaxPages})

	var wg sync.WaitGroup
	for range policy.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx)
		}()
	}
	wg.Wait()

	r.rec.fill(stats)
	stats.EndTime = e.now()
	stats.DurationSeconds = stats.EndTime.Sub(stats.StartTime).Seconds()

	if e.Checkpoints != nil {
		// A cancelled run keeps its state for the next attempt.
		if ctx.Err() != nil {
			r.checkpoint(context.WithoutCancel(ctx))
		} else if err := e.Checkpoints.DeleteCheckpoint(ctx, r.key); err != nil {
			e.logger().Warn("checkpoint delete failed", "key", r.key, "error", err)
		}
	}

	r.emit(ProgressEvent{
		Type:      ProgressFinished,
		Completed: stats.PagesCrawled,
		Failed:    stats.PagesFailed,
		Total:     policy.MaxPages,
	})

	pages, _, _ := r.rec.snapshot()
	return &Execution{
		Pages:      pages,
		Stats:      stats,
		Dropped:    r.frontier.Dropped(),
		Discovered: r.frontier.Discovered(),
	}, nil
}

// work is the worker loop.
func (r *run) work(ctx context.Context) {
	timeout := r.e.PopTimeout
	if timeout <= 0 {
		timeout = DefaultPopTimeout
	}

	for ctx.Err() == nil {
		if !r.rec.reserve(r.policy.MaxPages) {
			if r.rec.full(r.policy.MaxPages) || r.frontier.Idle() {
				return
			}
			// Peers hold the remaining slots; wait for one to be released.
			if !sleep(ctx, timeout/10) {
				return
			}
			continue
		}

		entry, ok := r.frontier.Pop(ctx, timeout)
		if !ok {
			r.rec.release()
			if r.frontier.Idle() {
				return
			}
			continue
		}

		res := r.processSafely(ctx, entry)
		r.frontier.Done(entry)

		if res == entrySkipped {
			r.rec.release()
			continue
		}
		if !sleep(ctx, r.policy.InterRequestDelay) {
			return
		}
	}
}

// processSafely runs process and turns a panic after the claim into a
// recorded failure.
func (r *run) processSafely(ctx context.Context, entry sift.FrontierEntry) (res outcome) {
	claimed := false
	defer func() {
		if p := recover(); p != nil {
			r.e.logger().Error("worker panic", "url", entry.URL, "panic", p)
			if !claimed {
				res = entrySkipped
				return
			}
			r.fail(entry.URL, sift.FailPanic, fmt.Errorf("panic: %v", p))
			res = entryFailed
		}
	}()
	return r.process(ctx, entry, &claimed)
}

func (r *run) process(ctx context.Context, entry sift.FrontierEntry, claimed *bool) outcome {
	if entry.Depth > r.policy.MaxDepth {
		return entrySkipped
	}
	if !r.visited.Claim(entry.URL) {
		return entrySkipped
	}
	*claimed = true

	if r.policy.RespectRobots && r.e.Robots != nil && !r.e.Robots.CanFetch(ctx, entry.URL) {
		r.fail(entry.URL, sift.FailRobots, sift.Errorf(sift.EINVALID, "%s", sift.FailRobots))
		return entryFailed
	}

	resp, err := r.fetch(ctx, entry.URL)
	if err != nil {
		if ctx.Err() != nil {
			// Interrupted, not failed: hand the URL back for the next attempt.
			r.visited.Release(entry.URL)
			r.frontier.Requeue(entry)
			return entrySkipped
		}
		r.fail(entry.URL, sift.FailFetch, err)
		return entryFailed
	}
	if resp.StatusCode != 200 {
		r.fail(entry.URL, sift.FailStatus, fmt.Errorf("%s %d", sift.FailStatus, resp.StatusCode))
		return entryFailed
	}
	if !resp.IsHTML() {
		r.fail(entry.URL, sift.FailContentType, fmt.Errorf("%s %s", sift.FailContentType, resp.ContentType))
		return entryFailed
	}

	ext, err := r.e.Extractor.Extract(resp.Body, resp.URL, r.domain)
	if err != nil {
		r.fail(entry.URL, sift.FailInsufficient, err)
		return entryFailed
	}

	page := sift.NewPageRecord(entry.URL, entry.Depth, ext, r.e.now())
	n := r.rec.success(page)

	if next := entry.Depth + 1; next <= r.policy.MaxDepth {
		for _, link := range ext.Links {
			link = sift.NormalizeURL(link)
			if r.visited.Contains(link) {
				continue
			}
			r.frontier.Push(sift.FrontierEntry{URL: link, Depth: next})
		}
	}

	r.emit(ProgressEvent{Type: ProgressCompleted, Completed: n, Total: r.policy.MaxPages, URL: entry.URL})

	if r.policy.CheckpointInterval > 0 && n%r.policy.CheckpointInterval == 0 {
		r.checkpoint(ctx)
	}
	return entrySucceeded
}

func (r *run) fetch(ctx context.Context, url string) (*sift.Response, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
	defer cancel()
	return r.e.Fetcher.Fetch(ctx, url)
}

func (r *run) fail(url, reason string, err error) {
	r.rec.failure(reason)
	crawled, failed := r.rec.counts()
	r.emit(ProgressEvent{
		Type:      ProgressFailed,
		Completed: crawled,
		Failed:    failed,
		Total:     r.policy.MaxPages,
		URL:       url,
		Error:     err,
	})
}

func (r *run) emit(ev ProgressEvent) {
	if r.progress == nil {
		return
	}
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.progress(ev)
}

// checkpoint saves the current state of the run.
func (r *run) checkpoint(ctx context.Context) {
	if r.e.Checkpoints == nil {
		return
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	entries, active := r.frontier.Snapshot()
	pages, failed, reasons := r.rec.snapshot()
	cp := &sift.Checkpoint{
		Key:         r.key,
		RunID:       r.stats.RunID,
		StartTime:   r.stats.StartTime,
		SavedAt:     r.e.now(),
		Frontier:    entries,
		Visited:     r.visited.Snapshot(active),
		Pages:       pages,
		PagesFailed: failed,
		FailReasons: reasons,
	}
	if err := r.e.Checkpoints.SaveCheckpoint(ctx, cp); err != nil {
		r.e.logger().Warn("checkpoint save failed", "key", r.key, "error", err)
	}
}

// resume restores a saved checkpoint for the run key. It reports whether
// one was restored.
func (r *run) resume(ctx context.Context) bool {
	if r.e.Checkpoints == nil {
		return false
	}
	cp, err := r.e.Checkpoints.LoadCheckpoint(ctx, r.key)
	if err != nil {
		if sift.ErrorCode(err) != sift.ENOTFOUND {
			r.e.logger().Warn("checkpoint load failed", "key", r.key, "error", err)
		}
		return false
	}

	if len(cp.Frontier) == 0 && len(cp.Pages) == 0 {
		return false
	}

	r.rec.restore(cp)
	for _, u := range cp.Visited {
		r.visited.Claim(u)
		r.frontier.MarkSeen(u)
	}
	for _, e := range cp.Frontier {
		r.frontier.Push(e)
	}

	if cp.RunID != "" {
		r.stats.RunID = cp.RunID
	}
	if !cp.StartTime.IsZero() {
		r.stats.StartTime = cp.StartTime
	}
	r.stats.Resumed = true
	r.e.logger().Info("resuming crawl from checkpoint",
		"key", r.key,
		"pages", len(cp.Pages),
		"frontier", len(cp.Frontier),
		"saved_at", cp.SavedAt,
	)
	return true
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
