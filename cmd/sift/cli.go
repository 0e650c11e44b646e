package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/config"
	"github.com/fwojciec/sift/crawl"
	"github.com/fwojciec/sift/search"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config config.Config

	Crawler  *crawl.Crawler
	Datasets sift.DatasetService
	Index    *search.Engine
	Searcher sift.Searcher

	Cache       CacheMaintainer
	Checkpoints CheckpointAdmin

	// Observe receives every crawl progress event in addition to the
	// command's own output.
	Observe crawl.ProgressFunc
}

// CacheMaintainer is the maintenance side of the embedding cache.
type CacheMaintainer interface {
	Len(ctx context.Context) (int, error)
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// CheckpointAdmin lists and removes saved crawl checkpoints.
type CheckpointAdmin interface {
	Keys(ctx context.Context) ([]string, error)
	DeleteCheckpoint(ctx context.Context, key string) error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   string `short:"c" help:"Config file (YAML, TOML or JSON)" type:"path"`
	DataDir  string `help:"Directory for datasets, checkpoints and the embedding cache" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl a site and write a dataset"`
	Search SearchCmd `cmd:"" help:"Search crawled datasets"`
	List   ListCmd   `cmd:"" help:"List crawled datasets"`
	Show   ShowCmd   `cmd:"" help:"Show crawl statistics for a domain"`

	Cache       CacheCmd       `cmd:"" help:"Inspect or prune the embedding cache"`
	Checkpoints CheckpointsCmd `cmd:"" help:"List or clear saved crawl checkpoints"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL      string `arg:"" help:"Start URL"`
	MaxPages int    `short:"n" help:"Stop after this many pages (overrides the estimate)"`
	Fixed    bool   `help:"Skip site estimation and use the configured policy as is"`
	Verbose  bool   `short:"v" help:"Print every crawled page"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query  string `arg:"" help:"Search query"`
	Domain string `short:"d" help:"Only search datasets of this domain"`
	Mode   string `short:"m" default:"hybrid" enum:"semantic,keyword,hybrid" help:"Ranking mode (semantic, keyword, hybrid)"`
	Limit  int    `short:"k" help:"Number of results (defaults to search.max_results)"`
	All    bool   `help:"Search every dataset, not only the newest per domain"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Domain string `short:"d" help:"Only list datasets of this domain"`
	All    bool   `help:"List every dataset, not only the newest per domain"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Domain string `arg:"" help:"Domain of the dataset"`
	Export string `help:"Write the pages as markdown files into this directory" type:"path"`
}

// CacheCmd groups the embedding cache subcommands.
type CacheCmd struct {
	Stats CacheStatsCmd `cmd:"" help:"Print the number of cached embeddings"`
	Prune CachePruneCmd `cmd:"" help:"Delete cached embeddings older than a duration"`
}

// CacheStatsCmd is the "cache stats" subcommand.
type CacheStatsCmd struct{}

// CachePruneCmd is the "cache prune" subcommand.
type CachePruneCmd struct {
	OlderThan time.Duration `default:"720h" help:"Delete embeddings cached longer ago than this"`
}

// CheckpointsCmd is the "checkpoints" subcommand.
type CheckpointsCmd struct {
	Clear bool `help:"Delete every saved checkpoint"`
}
