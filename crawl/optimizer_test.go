package crawl_test

import (
	"testing"
	"time"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/crawl"
	"github.com/stretchr/testify/assert"
)

func TestOptimize(t *testing.T) {
	t.Parallel()

	base := sift.DefaultCrawlPolicy()
	tiers := crawl.DefaultTierTable()

	t.Run("tiers by estimate", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			estimate    int
			tier        string
			concurrency int
			batch       int
			checkpoint  int
			delay       time.Duration
		}{
			{estimate: 5000, tier: crawl.TierLarge, concurrency: 12, batch: 200, checkpoint: 100, delay: 300 * time.Millisecond},
			{estimate: 1001, tier: crawl.TierLarge, concurrency: 12, batch: 200, checkpoint: 100, delay: 300 * time.Millisecond},
			{estimate: 1000, tier: crawl.TierMedium, concurrency: 8, batch: 100, checkpoint: 50, delay: 500 * time.Millisecond},
			{estimate: 100, tier: crawl.TierMedium, concurrency: 8, batch: 100, checkpoint: 50, delay: 500 * time.Millisecond},
			{estimate: 99, tier: crawl.TierSmall, concurrency: 4, batch: 50, checkpoint: 25, delay: time.Second},
		}
		for _, tt := range tests {
			p, name := crawl.Optimize(base, tiers, &sift.SiteEstimate{EstimatedPages: tt.estimate})

			assert.Equal(t, tt.tier, name, "estimate %d", tt.estimate)
			assert.Equal(t, tt.concurrency, p.Concurrency, "estimate %d", tt.estimate)
			assert.Equal(t, tt.batch, p.BatchSize, "estimate %d", tt.estimate)
			assert.Equal(t, tt.checkpoint, p.CheckpointInterval, "estimate %d", tt.estimate)
			assert.Equal(t, tt.delay, p.InterRequestDelay, "estimate %d", tt.estimate)
		}
	})

	t.Run("robots delay wins with a floor", func(t *testing.T) {
		t.Parallel()

		p, _ := crawl.Optimize(base, tiers, &sift.SiteEstimate{EstimatedPages: 5000, RobotsCrawlDelay: 2})
		assert.Equal(t, 2*time.Second, p.InterRequestDelay)

		p, _ = crawl.Optimize(base, tiers, &sift.SiteEstimate{EstimatedPages: 5000, RobotsCrawlDelay: 0.1})
		assert.Equal(t, 500*time.Millisecond, p.InterRequestDelay)
	})

	t.Run("base delay is a floor", func(t *testing.T) {
		t.Parallel()

		slow := base
		slow.InterRequestDelay = 3 * time.Second

		p, _ := crawl.Optimize(slow, tiers, &sift.SiteEstimate{EstimatedPages: 5000})

		assert.Equal(t, 3*time.Second, p.InterRequestDelay)
	})

	t.Run("max pages is twice the estimate within the base cap", func(t *testing.T) {
		t.Parallel()

		p, _ := crawl.Optimize(base, tiers, &sift.SiteEstimate{EstimatedPages: 40})
		assert.Equal(t, 80, p.MaxPages)

		p, _ = crawl.Optimize(base, tiers, &sift.SiteEstimate{EstimatedPages: 1_000_000})
		assert.Equal(t, base.MaxPages, p.MaxPages)

		p, _ = crawl.Optimize(base, tiers, &sift.SiteEstimate{EstimatedPages: 0})
		assert.Equal(t, 1, p.MaxPages)
	})

	t.Run("keeps unrelated base settings", func(t *testing.T) {
		t.Parallel()

		custom := base
		custom.MaxDepth = 3
		custom.UserAgent = "custom"

		p, _ := crawl.Optimize(custom, tiers, &sift.SiteEstimate{EstimatedPages: 50})

		assert.Equal(t, 3, p.MaxDepth)
		assert.Equal(t, "custom", p.UserAgent)
		assert.NoError(t, p.Validate())
	})

	t.Run("nil estimate uses the default estimate", func(t *testing.T) {
		t.Parallel()

		p, name := crawl.Optimize(base, tiers, nil)

		assert.Equal(t, crawl.TierSmall, name)
		assert.Equal(t, 2*crawl.DefaultEstimate, p.MaxPages)
	})
}
