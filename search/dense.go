package search

import "math"

// scored is a chunk ID with a similarity score.
type scored struct {
	id    int
	score float64
}

// denseIndex holds one embedding per chunk with its precomputed norm.
type denseIndex struct {
	vectors [][]float32
	norms   []float64
}

func newDenseIndex(vectors [][]float32) *denseIndex {
	idx := &denseIndex{vectors: vectors, norms: make([]float64, len(vectors))}
	for i, v := range vectors {
		idx.norms[i] = vecNorm(v)
	}
	return idx
}

// rank returns the k rows most cosine-similar to query.
func (idx *denseIndex) rank(query []float32, k int) []scored {
	qn := vecNorm(query)
	hits := make([]scored, len(idx.vectors))
	for id, v := range idx.vectors {
		hits[id] = scored{id: id, score: cosine(query, qn, v, idx.norms[id])}
	}
	return topK(hits, k)
}

// vecNorm returns the Euclidean length of v.
func vecNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns the cosine similarity of a and b given their norms. A zero
// vector is dissimilar to everything.
func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
