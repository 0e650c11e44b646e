package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/sift/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Test(t *testing.T) {
	t.Parallel()

	t.Run("reports added URLs only", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)

		assert.False(t, f.Test("https://example.com/docs"))
		f.Add("https://example.com/docs")
		assert.True(t, f.Test("https://example.com/docs"))
		assert.False(t, f.Test("https://example.com/blog"))
	})

	t.Run("repeated adds do not grow the estimate", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)
		f.Add("https://example.com/docs")
		before := f.EstimatedCount()

		f.Add("https://example.com/docs")
		f.Add("https://example.com/docs")

		assert.Equal(t, before, f.EstimatedCount())
	})
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	assert.Equal(t, uint(0), f.EstimatedCount())

	for i := range 100 {
		f.Add(fmt.Sprintf("https://example.com/page/%d", i))
	}

	count := f.EstimatedCount()
	assert.True(t, count >= 90 && count <= 110, "expected count near 100, got %d", count)
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	for i := range 1000 {
		f.Add(fmt.Sprintf("https://example.com/seen/%d", i))
	}

	falsePositives := 0
	for i := range 1000 {
		if f.Test(fmt.Sprintf("https://example.com/unseen/%d", i)) {
			falsePositives++
		}
	}

	// 1% target with generous slack for hash variance.
	assert.Less(t, falsePositives, 50)
}
