package sift

import (
	"context"
	"time"
)

// FrontierEntry is a URL waiting to be crawled at a given link depth.
type FrontierEntry struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
}

// Checkpoint is a snapshot of a crawl run in progress. It is saved
// periodically and reloaded when the same start URL is crawled again.
type Checkpoint struct {
	Key         string          `json:"key"`
	RunID       string          `json:"run_id"`
	StartTime   time.Time       `json:"start_time"`
	SavedAt     time.Time       `json:"saved_at"`
	Frontier    []FrontierEntry `json:"frontier"`
	Visited     []string        `json:"visited"`
	Pages       []*PageRecord   `json:"pages"`
	PagesFailed int             `json:"pages_failed"`
	FailReasons map[string]int  `json:"failure_reasons,omitempty"`
}

// CheckpointStore persists crawl checkpoints.
type CheckpointStore interface {
	// SaveCheckpoint stores cp under cp.Key, replacing any earlier one.
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error

	// LoadCheckpoint returns the checkpoint stored under key.
	// Returns ENOTFOUND if none exists.
	LoadCheckpoint(ctx context.Context, key string) (*Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint stored under key.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, key string) error
}
