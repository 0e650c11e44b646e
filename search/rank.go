package search

import (
	"cmp"
	"slices"
)

// sortScored orders hits by score descending, then chunk ID ascending.
func sortScored(hits []scored) {
	slices.SortFunc(hits, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
}

// topK sorts hits and truncates them to k.
func topK(hits []scored, k int) []scored {
	sortScored(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
