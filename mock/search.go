package mock

import (
	"context"
	"time"

	"github.com/fwojciec/sift"
)

var _ sift.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of sift.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, mode sift.SearchMode, k int) ([]sift.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string, mode sift.SearchMode, k int) ([]sift.SearchResult, error) {
	return s.SearchFn(ctx, query, mode, k)
}

var _ sift.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of sift.Embedder.
type Embedder struct {
	EmbedTextsFn func(ctx context.Context, texts []string) ([][]float32, error)
	ModelFn      func() string
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedTextsFn(ctx, texts)
}

func (e *Embedder) Model() string {
	return e.ModelFn()
}

var _ sift.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache is a mock implementation of sift.EmbeddingCache.
type EmbeddingCache struct {
	GetEmbeddingsFn func(ctx context.Context, keys []string) (map[string][]float32, error)
	PutEmbeddingsFn func(ctx context.Context, entries map[string][]float32) error
	LenFn           func(ctx context.Context) (int, error)
	PruneFn         func(ctx context.Context, cutoff time.Time) (int, error)
}

func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, keys []string) (map[string][]float32, error) {
	return c.GetEmbeddingsFn(ctx, keys)
}

func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, entries map[string][]float32) error {
	return c.PutEmbeddingsFn(ctx, entries)
}

func (c *EmbeddingCache) Len(ctx context.Context) (int, error) {
	return c.LenFn(ctx)
}

func (c *EmbeddingCache) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	return c.PruneFn(ctx, cutoff)
}
