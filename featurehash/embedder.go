// Package featurehash provides a local embedder that projects words and
// word pairs into a fixed number of buckets with xxhash. It needs no
// network or model download and is deterministic, which makes it the
// default for offline use and tests.
package featurehash

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sift"
)

// DefaultDimensions is the vector length used when none is configured.
const DefaultDimensions = 384

// bigramWeight scales word-pair features relative to single words.
const bigramWeight = 0.5

// Ensure Embedder implements sift.Embedder at compile time.
var _ sift.Embedder = (*Embedder)(nil)

// Embedder implements sift.Embedder with signed feature hashing.
type Embedder struct {
	dims int
}

// NewEmbedder creates an Embedder producing vectors of length dims.
// A non-positive dims selects DefaultDimensions.
func NewEmbedder(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

// Model implements sift.Embedder.
func (e *Embedder) Model() string {
	return fmt.Sprintf("featurehash-%d", e.dims)
}

// EmbedTexts implements sift.Embedder. Vectors are L2-normalized; text
// without words maps to the zero vector.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *Embedder) embed(text string) []float32 {
	acc := make([]float64, e.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for i, w := range words {
		e.add(acc, w, 1)
		if i > 0 {
			e.add(acc, words[i-1]+" "+w, bigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, e.dims)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// add hashes feature into a bucket. The top bit of the hash picks the
// sign so that collisions tend to cancel.
func (e *Embedder) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	bucket := int(h % uint64(e.dims))
	if h>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}
