package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/sift"
)

// Run executes the cache stats command.
func (c *CacheStatsCmd) Run(deps *Dependencies) error {
	n, err := deps.Cache.Len(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "%d cached embeddings in %s\n", n, deps.Config.Storage.CachePath)
	return nil
}

// Run executes the cache prune command.
func (c *CachePruneCmd) Run(deps *Dependencies) error {
	if c.OlderThan < 0 {
		fmt.Fprintln(deps.Stderr, "error: --older-than must not be negative")
		return sift.Errorf(sift.EINVALID, "negative --older-than")
	}
	removed, err := deps.Cache.Prune(deps.Ctx, time.Now().Add(-c.OlderThan))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	left, err := deps.Cache.Len(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Pruned %d cached embeddings older than %s, %d remain.\n", removed, c.OlderThan, left)
	return nil
}
