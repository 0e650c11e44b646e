package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/sift"
	main "github.com/fwojciec/sift/cmd/sift"
	"github.com/fwojciec/sift/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStatsCmd_Run(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
		Cache: &mock.EmbeddingCache{
			LenFn: func(context.Context) (int, error) { return 42, nil },
		},
	}
	deps.Config.Storage.CachePath = "data/embeddings.db"

	err := (&main.CacheStatsCmd{}).Run(deps)

	require.NoError(t, err)
	assert.Equal(t, "42 cached embeddings in data/embeddings.db\n", stdout.String())
}

func TestCachePruneCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prunes entries older than the cutoff", func(t *testing.T) {
		t.Parallel()

		var cutoff time.Time
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Cache: &mock.EmbeddingCache{
				PruneFn: func(_ context.Context, c time.Time) (int, error) {
					cutoff = c
					return 7, nil
				},
				LenFn: func(context.Context) (int, error) { return 3, nil },
			},
		}

		before := time.Now()
		err := (&main.CachePruneCmd{OlderThan: 48 * time.Hour}).Run(deps)

		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(-48*time.Hour), cutoff, time.Minute)
		assert.Contains(t, stdout.String(), "Pruned 7 cached embeddings older than 48h0m0s, 3 remain.")
	})

	t.Run("rejects a negative duration", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Cache:  &mock.EmbeddingCache{},
		}

		err := (&main.CachePruneCmd{OlderThan: -time.Hour}).Run(deps)

		assert.Equal(t, sift.EINVALID, sift.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--older-than")
	})
}
