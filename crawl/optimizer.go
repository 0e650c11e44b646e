package crawl

import (
	"time"

	"github.com/fwojciec/sift"
)

// Tier names recorded as CrawlStats.Strategy.
const (
	TierSmall  = "small"
	TierMedium = "medium"
	TierLarge  = "large"
	// TierFixed marks a run whose policy was not adapted to the site.
	TierFixed = "fixed"
)

// Tier holds the policy settings applied to one site-size class.
type Tier struct {
	Concurrency        int           `mapstructure:"concurrency"`
	BatchSize          int           `mapstructure:"batch_size"`
	CheckpointInterval int           `mapstructure:"checkpoint_interval"`
	Delay              time.Duration `mapstructure:"delay"`
}

// TierTable maps estimated site sizes to tiers.
type TierTable struct {
	SmallThreshold   int           `mapstructure:"small_threshold"`
	LargeThreshold   int           `mapstructure:"large_threshold"`
	RobotsDelayFloor time.Duration `mapstructure:"robots_delay_floor"`

	Small  Tier `mapstructure:"small"`
	Medium Tier `mapstructure:"medium"`
	Large  Tier `mapstructure:"large"`
}

// DefaultTierTable returns the built-in tiers.
func DefaultTierTable() TierTable {
	return TierTable{
		SmallThreshold:   100,
		LargeThreshold:   1000,
		RobotsDelayFloor: 500 * time.Millisecond,
		Small:            Tier{Concurrency: 4, BatchSize: 50, CheckpointInterval: 25, Delay: time.Second},
		Medium:           Tier{Concurrency: 8, BatchSize: 100, CheckpointInterval: 50, Delay: 500 * time.Millisecond},
		Large:            Tier{Concurrency: 12, BatchSize: 200, CheckpointInterval: 100, Delay: 300 * time.Millisecond},
	}
}

// Classify returns the tier name and settings for an estimated page count.
func (t TierTable) Classify(estimate int) (string, Tier) {
	switch {
	case estimate > t.LargeThreshold:
		return TierLarge, t.Large
	case estimate < t.SmallThreshold:
		return TierSmall, t.Small
	default:
		return TierMedium, t.Medium
	}
}

// Optimize derives the run policy from base and a site estimate. It is a
// pure function. The base delay is a floor the result never goes below.
func Optimize(base sift.CrawlPolicy, tiers TierTable, est *sift.SiteEstimate) (sift.CrawlPolicy, string) {
	estimate := DefaultEstimate
	var robotsDelay time.Duration
	if est != nil {
		estimate = est.EstimatedPages
		robotsDelay = time.Duration(est.RobotsCrawlDelay * float64(time.Second))
	}

	name, tier := tiers.Classify(estimate)

	p := base
	p.Concurrency = tier.Concurrency
	p.BatchSize = tier.BatchSize
	p.CheckpointInterval = tier.CheckpointInterval

	if robotsDelay > 0 {
		p.InterRequestDelay = max(robotsDelay, tiers.RobotsDelayFloor)
	} else {
		p.InterRequestDelay = tier.Delay
	}
	// crawl.delay is an operator floor and may slow a run below the tier
	// table; set it to 0 to get the tier and robots delays as is.
	p.InterRequestDelay = max(p.InterRequestDelay, base.InterRequestDelay)

	p.MaxPages = max(1, min(base.MaxPages, estimate*2))
	return p, name
}
