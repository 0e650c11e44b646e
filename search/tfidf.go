package search

import (
	"cmp"
	"math"
	"slices"
)

// sparseVector holds the non-zero weights of a row, ordered by term index.
type sparseVector struct {
	terms   []int
	weights []float64
}

// tfidfIndex is a TF-IDF model over a fixed vocabulary with L2-normalized
// rows.
type tfidfIndex struct {
	vocab map[string]int
	idf   []float64
	rows  []sparseVector
}

// buildTFIDF fits a TF-IDF model on docs, which are token lists. The
// vocabulary keeps the maxFeatures most frequent terms across the corpus;
// ties go to the alphabetically smaller term.
func buildTFIDF(docs [][]string, maxFeatures int) *tfidfIndex {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range doc {
			freq[tok]++
		}
	}

	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	slices.SortFunc(terms, func(a, b string) int {
		if c := cmp.Compare(freq[b], freq[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	slices.Sort(terms)

	idx := &tfidfIndex{vocab: make(map[string]int, len(terms))}
	for i, t := range terms {
		idx.vocab[t] = i
	}

	df := make([]int, len(terms))
	counts := make([]map[int]int, len(docs))
	for d, doc := range docs {
		counts[d] = idx.termCounts(doc)
		for term := range counts[d] {
			df[term]++
		}
	}

	n := float64(len(docs))
	idx.idf = make([]float64, len(terms))
	for i := range terms {
		idx.idf[i] = math.Log((1+n)/(1+float64(df[i]))) + 1
	}

	idx.rows = make([]sparseVector, len(docs))
	for d := range docs {
		idx.rows[d] = idx.weigh(counts[d])
	}
	return idx
}

// termCounts counts in-vocabulary tokens.
func (idx *tfidfIndex) termCounts(tokens []string) map[int]int {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if term, ok := idx.vocab[tok]; ok {
			counts[term]++
		}
	}
	return counts
}

// weigh turns raw term counts into an L2-normalized TF-IDF vector.
func (idx *tfidfIndex) weigh(counts map[int]int) sparseVector {
	var v sparseVector
	var norm float64
	for term := range counts {
		v.terms = append(v.terms, term)
	}
	slices.Sort(v.terms)
	v.weights = make([]float64, len(v.terms))
	for i, term := range v.terms {
		w := float64(counts[term]) * idx.idf[term]
		v.weights[i] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v.weights {
		v.weights[i] /= norm
	}
	return v
}

// rank scores every row against the query tokens and returns the top k
// rows with a positive score.
func (idx *tfidfIndex) rank(tokens []string, k int) []scored {
	q := idx.weigh(idx.termCounts(tokens))
	if len(q.terms) == 0 {
		return nil
	}
	query := make(map[int]float64, len(q.terms))
	for i, term := range q.terms {
		query[term] = q.weights[i]
	}

	var hits []scored
	for id, row := range idx.rows {
		var dot float64
		for i, term := range row.terms {
			dot += row.weights[i] * query[term]
		}
		if dot > 0 {
			hits = append(hits, scored{id: id, score: dot})
		}
	}
	return topK(hits, k)
}
