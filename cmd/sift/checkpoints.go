package main

import (
	"fmt"
	"slices"

	"github.com/fwojciec/sift"
)

// Run executes the checkpoints command.
func (c *CheckpointsCmd) Run(deps *Dependencies) error {
	keys, err := deps.Checkpoints.Keys(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(deps.Stdout, "No saved checkpoints.")
		return nil
	}
	slices.Sort(keys)

	if !c.Clear {
		for _, key := range keys {
			fmt.Fprintln(deps.Stdout, key)
		}
		fmt.Fprintf(deps.Stdout, "%d saved checkpoints. Crawl the URL again to resume, or use --clear.\n", len(keys))
		return nil
	}

	for _, key := range keys {
		if err := deps.Checkpoints.DeleteCheckpoint(deps.Ctx, key); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
			return err
		}
	}
	fmt.Fprintf(deps.Stdout, "Deleted %d checkpoints.\n", len(keys))
	return nil
}
