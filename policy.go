package sift

import "time"

// Default policy values applied when no configuration overrides them.
const (
	DefaultMaxPages           = 10000
	DefaultMaxDepth           = 10
	DefaultConcurrency        = 8
	DefaultBatchSize          = 100
	DefaultCheckpointInterval = 50
	DefaultMinContentLength   = 100
	DefaultTimeout            = 45 * time.Second
	DefaultUserAgent          = "sift/1.0 (+https://github.com/fwojciec/sift)"
)

// CrawlPolicy governs a single crawl run. It is derived once before the run
// starts and is never mutated by workers.
type CrawlPolicy struct {
	MaxPages           int
	MaxDepth           int
	Concurrency        int
	InterRequestDelay  time.Duration
	Timeout            time.Duration
	BatchSize          int
	CheckpointInterval int
	MinContentLength   int
	RespectRobots      bool
	UserAgent          string
}

// PolicySnapshot is the persisted form of a CrawlPolicy, with durations
// expressed in seconds.
type PolicySnapshot struct {
	MaxPages           int     `json:"max_pages"`
	MaxDepth           int     `json:"max_depth"`
	Workers            int     `json:"workers"`
	DelaySeconds       float64 `json:"delay"`
	TimeoutSeconds     float64 `json:"timeout_seconds"`
	BatchSize          int     `json:"batch_size"`
	CheckpointInterval int     `json:"checkpoint_interval"`
	MinContentLength   int     `json:"min_content_length"`
	RespectRobots      bool    `json:"respect_robots"`
}

// Snapshot returns the persisted form of the policy.
func (p CrawlPolicy) Snapshot() PolicySnapshot {
	return PolicySnapshot{
		MaxPages:           p.MaxPages,
		MaxDepth:           p.MaxDepth,
		Workers:            p.Concurrency,
		DelaySeconds:       p.InterRequestDelay.Seconds(),
		TimeoutSeconds:     p.Timeout.Seconds(),
		BatchSize:          p.BatchSize,
		CheckpointInterval: p.CheckpointInterval,
		MinContentLength:   p.MinContentLength,
		RespectRobots:      p.RespectRobots,
	}
}

// DefaultCrawlPolicy returns the policy used before any estimate is known.
func DefaultCrawlPolicy() CrawlPolicy {
	return CrawlPolicy{
		MaxPages:           DefaultMaxPages,
		MaxDepth:           DefaultMaxDepth,
		Concurrency:        DefaultConcurrency,
		Timeout:            DefaultTimeout,
		BatchSize:          DefaultBatchSize,
		CheckpointInterval: DefaultCheckpointInterval,
		MinContentLength:   DefaultMinContentLength,
		RespectRobots:      true,
		UserAgent:          DefaultUserAgent,
	}
}

// Validate returns an error if the policy cannot drive a crawl run.
func (p CrawlPolicy) Validate() error {
	if p.MaxPages <= 0 {
		return Errorf(EINVALID, "max pages must be positive")
	}
	if p.MaxDepth < 0 {
		return Errorf(EINVALID, "max depth must not be negative")
	}
	if p.Concurrency <= 0 {
		return Errorf(EINVALID, "concurrency must be positive")
	}
	if p.InterRequestDelay < 0 {
		return Errorf(EINVALID, "inter-request delay must not be negative")
	}
	if p.Timeout <= 0 {
		return Errorf(EINVALID, "timeout must be positive")
	}
	if p.CheckpointInterval < 0 {
		return Errorf(EINVALID, "checkpoint interval must not be negative")
	}
	return nil
}
