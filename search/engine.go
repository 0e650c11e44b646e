// Package search ranks chunks of crawled pages with a dense semantic index,
// a sparse TF-IDF index, or a weighted blend of both.
package search

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sift"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

// Engine defaults.
const (
	DefaultBatchSize      = 32
	DefaultPoolSize       = 4
	DefaultMaxFeatures    = 5000
	DefaultSemanticWeight = 0.7
	DefaultKeywordWeight  = 0.3
)

// Ensure Engine implements sift.Searcher at compile time.
var _ sift.Searcher = (*Engine)(nil)

// Engine is an in-memory hybrid index. Load replaces the indexed corpus;
// Search may be called concurrently.
type Engine struct {
	embedder sift.Embedder
	cache    sift.EmbeddingCache
	chunker  *sift.Chunker
	logger   *slog.Logger

	batchSize   int
	poolSize    int
	maxFeatures int
	semWeight   float64
	kwWeight    float64
	minScore    float64

	mu     sync.RWMutex
	chunks []*sift.Chunk
	dense  *denseIndex
	sparse *tfidfIndex
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache consults cache before embedding and stores new vectors in it.
func WithCache(cache sift.EmbeddingCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithChunker replaces the default 512/50 chunker.
func WithChunker(c *sift.Chunker) Option {
	return func(e *Engine) {
		e.chunker = c
	}
}

// WithLogger sets the logger for cache warnings and load summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBatchSize sets the number of texts per embedding call.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		e.batchSize = n
	}
}

// WithPoolSize sets the number of concurrent embedding calls.
func WithPoolSize(n int) Option {
	return func(e *Engine) {
		e.poolSize = n
	}
}

// WithMaxFeatures caps the TF-IDF vocabulary.
func WithMaxFeatures(n int) Option {
	return func(e *Engine) {
		e.maxFeatures = n
	}
}

// WithWeights sets the semantic and keyword weights of hybrid scores.
func WithWeights(semantic, keyword float64) Option {
	return func(e *Engine) {
		e.semWeight = semantic
		e.kwWeight = keyword
	}
}

// WithMinScore drops results whose score for the requested mode is below
// threshold.
func WithMinScore(threshold float64) Option {
	return func(e *Engine) {
		e.minScore = threshold
	}
}

// NewEngine creates an empty Engine that embeds chunks with embedder.
func NewEngine(embedder sift.Embedder, opts ...Option) *Engine {
	e := &Engine{
		embedder:    embedder,
		chunker:     sift.NewChunker(),
		batchSize:   DefaultBatchSize,
		poolSize:    DefaultPoolSize,
		maxFeatures: DefaultMaxFeatures,
		semWeight:   DefaultSemanticWeight,
		kwWeight:    DefaultKeywordWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.batchSize <= 0 {
		e.batchSize = DefaultBatchSize
	}
	if e.poolSize <= 0 {
		e.poolSize = DefaultPoolSize
	}
	return e
}

// CacheKey returns the embedding cache key for text embedded by model.
func CacheKey(model, text string) string {
	h := xxhash.New()
	_, _ = h.WriteString(model)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(text)
	return hex.EncodeToString(h.Sum(nil))
}

// Load chunks pages, builds both indexes, and replaces the current corpus.
// It returns the number of chunks indexed. On error the previous corpus is
// kept.
func (e *Engine) Load(ctx context.Context, pages []*sift.PageRecord) (int, error) {
	chunks, err := e.chunker.Chunk(pages)
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(chunks))
	tokens := make([][]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
		tokens[i] = Tokenize(c.Content)
	}

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	dense := newDenseIndex(vectors)
	sparse := buildTFIDF(tokens, e.maxFeatures)

	e.mu.Lock()
	e.chunks = chunks
	e.dense = dense
	e.sparse = sparse
	e.mu.Unlock()

	e.logger.Info("search index built",
		"pages", len(pages),
		"chunks", len(chunks),
		"vocabulary", len(sparse.vocab),
		"model", e.embedder.Model(),
	)
	return len(chunks), nil
}

// Len returns the number of indexed chunks.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.chunks)
}

// Search implements sift.Searcher.
func (e *Engine) Search(ctx context.Context, query string, mode sift.SearchMode, k int) ([]sift.SearchResult, error) {
	switch mode {
	case sift.SearchSemantic, sift.SearchKeyword, sift.SearchHybrid:
	default:
		return nil, sift.Errorf(sift.EINVALID, "unknown search mode %q", mode)
	}
	if k <= 0 {
		return nil, sift.Errorf(sift.EINVALID, "result count must be positive")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.chunks) == 0 {
		return nil, sift.Errorf(sift.ENOTFOUND, "no documents loaded")
	}

	switch mode {
	case sift.SearchSemantic:
		hits, err := e.semantic(ctx, query, k)
		if err != nil {
			return nil, err
		}
		return e.results(hits, func(r *sift.SearchResult, s float64) { r.SemanticScore = &s }), nil
	case sift.SearchKeyword:
		hits := e.sparse.rank(Tokenize(query), k)
		return e.results(hits, func(r *sift.SearchResult, s float64) { r.KeywordScore = &s }), nil
	default:
		return e.hybrid(ctx, query, k)
	}
}

func (e *Engine) semantic(ctx context.Context, query string, k int) ([]scored, error) {
	vecs, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, sift.Errorf(sift.EINTERNAL, "embedder returned %d vectors for one query", len(vecs))
	}
	return e.dense.rank(vecs[0], k), nil
}

// hybrid blends the top 2k of each ranking. A chunk missing from one
// ranking contributes zero for that component.
func (e *Engine) hybrid(ctx context.Context, query string, k int) ([]sift.SearchResult, error) {
	var sem, kw []scored
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sem, err = e.semantic(gctx, query, 2*k)
		return err
	})
	g.Go(func() error {
		kw = e.sparse.rank(Tokenize(query), 2*k)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type parts struct {
		sem, kw *float64
	}
	byID := make(map[int]*parts)
	get := func(id int) *parts {
		p, ok := byID[id]
		if !ok {
			p = &parts{}
			byID[id] = p
		}
		return p
	}
	for _, h := range sem {
		s := h.score
		get(h.id).sem = &s
	}
	for _, h := range kw {
		s := h.score
		get(h.id).kw = &s
	}

	hits := make([]scored, 0, len(byID))
	for id, p := range byID {
		var score float64
		if p.sem != nil {
			score += e.semWeight * *p.sem
		}
		if p.kw != nil {
			score += e.kwWeight * *p.kw
		}
		hits = append(hits, scored{id: id, score: score})
	}
	hits = topK(hits, k)

	return e.results(hits, func(r *sift.SearchResult, s float64) {
		p := byID[r.ID]
		r.SemanticScore = p.sem
		r.KeywordScore = p.kw
		r.HybridScore = &s
	}), nil
}

// results materializes hits, dropping those under the minimum score.
func (e *Engine) results(hits []scored, set func(r *sift.SearchResult, score float64)) []sift.SearchResult {
	out := make([]sift.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.score < e.minScore {
			continue
		}
		r := sift.SearchResult{Chunk: *e.chunks[h.id]}
		set(&r, h.score)
		out = append(out, r)
	}
	return out
}

// embed returns one vector per text, serving what it can from the cache
// and embedding the rest in batches on a worker pool.
func (e *Engine) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	model := e.embedder.Model()
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = CacheKey(model, t)
	}

	if e.cache != nil {
		cached, err := e.cache.GetEmbeddings(ctx, keys)
		if err != nil {
			e.logger.Warn("embedding cache lookup failed", "error", err)
		}
		for i, k := range keys {
			if v, ok := cached[k]; ok {
				vectors[i] = v
			}
		}
	}

	var missing []int
	for i, v := range vectors {
		if v == nil {
			missing = append(missing, i)
		}
	}
	if err := e.embedMissing(ctx, texts, missing, vectors); err != nil {
		return nil, err
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dims {
			return nil, sift.Errorf(sift.EINTERNAL, "embedding %d has %d dimensions, want %d", i, len(v), dims)
		}
	}

	if e.cache != nil && len(missing) > 0 {
		fresh := make(map[string][]float32, len(missing))
		for _, i := range missing {
			fresh[keys[i]] = vectors[i]
		}
		if err := e.cache.PutEmbeddings(ctx, fresh); err != nil {
			e.logger.Warn("embedding cache store failed", "error", err)
		}
	}

	e.logger.Debug("embedded chunks", "total", len(texts), "cached", len(texts)-len(missing))
	return vectors, nil
}

// embedMissing fills vectors at the missing indexes. The first failing
// batch cancels the others.
func (e *Engine) embedMissing(ctx context.Context, texts []string, missing []int, vectors [][]float32) error {
	if len(missing) == 0 {
		return nil
	}

	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(missing); start += e.batchSize {
		batch := missing[start:min(start+e.batchSize, len(missing))]
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			in := make([]string, len(batch))
			for j, i := range batch {
				in[j] = texts[i]
			}
			out, err := e.embedder.EmbedTexts(ctx, in)
			if err != nil {
				fail(err)
				return
			}
			if len(out) != len(batch) {
				fail(sift.Errorf(sift.EINTERNAL, "embedder returned %d vectors for %d texts", len(out), len(batch)))
				return
			}
			for j, i := range batch {
				vectors[i] = out[j]
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
