package sift_test

import (
	"testing"
	"time"

	"github.com/fwojciec/sift"
	"github.com/stretchr/testify/assert"
)

func TestCrawlPolicy_Validate(t *testing.T) {
	t.Parallel()

	t.Run("default policy is valid", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, sift.DefaultCrawlPolicy().Validate())
	})

	invalid := map[string]func(p *sift.CrawlPolicy){
		"zero pages":       func(p *sift.CrawlPolicy) { p.MaxPages = 0 },
		"negative depth":   func(p *sift.CrawlPolicy) { p.MaxDepth = -1 },
		"zero concurrency": func(p *sift.CrawlPolicy) { p.Concurrency = 0 },
		"negative delay":   func(p *sift.CrawlPolicy) { p.InterRequestDelay = -time.Second },
		"zero timeout":     func(p *sift.CrawlPolicy) { p.Timeout = 0 },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := sift.DefaultCrawlPolicy()
			mutate(&p)

			err := p.Validate()

			assert.Equal(t, sift.EINVALID, sift.ErrorCode(err))
		})
	}
}

func TestCrawlPolicy_Snapshot(t *testing.T) {
	t.Parallel()

	p := sift.DefaultCrawlPolicy()
	p.InterRequestDelay = 300 * time.Millisecond
	p.Concurrency = 12

	snap := p.Snapshot()

	assert.Equal(t, 12, snap.Workers)
	assert.InDelta(t, 0.3, snap.DelaySeconds, 1e-9)
	assert.InDelta(t, 45.0, snap.TimeoutSeconds, 1e-9)
	assert.True(t, snap.RespectRobots)
}
