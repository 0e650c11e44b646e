package sift

import (
	"context"
	"strings"
)

// SearchMode selects the ranking used by a Searcher.
type SearchMode string

// Supported search modes.
const (
	SearchSemantic SearchMode = "semantic"
	SearchKeyword  SearchMode = "keyword"
	SearchHybrid   SearchMode = "hybrid"
)

// ParseSearchMode converts s into a SearchMode. An empty string selects
// hybrid search.
func ParseSearchMode(s string) (SearchMode, error) {
	switch mode := SearchMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return SearchHybrid, nil
	case SearchSemantic, SearchKeyword, SearchHybrid:
		return mode, nil
	default:
		return "", Errorf(EINVALID, "unknown search mode %q (expected semantic, keyword, or hybrid)", s)
	}
}

// SearchResult is a ranked chunk. Only the scores computed by the search
// mode are set.
type SearchResult struct {
	Chunk

	SemanticScore *float64 `json:"semantic_score,omitempty"`
	KeywordScore  *float64 `json:"keyword_score,omitempty"`
	HybridScore   *float64 `json:"hybrid_score,omitempty"`
}

// Score returns the most specific score available: hybrid, then semantic,
// then keyword.
func (r *SearchResult) Score() float64 {
	switch {
	case r.HybridScore != nil:
		return *r.HybridScore
	case r.SemanticScore != nil:
		return *r.SemanticScore
	case r.KeywordScore != nil:
		return *r.KeywordScore
	}
	return 0
}

// Searcher answers ranked queries over loaded documents.
type Searcher interface {
	// Search returns at most k results for query ranked by mode.
	// Returns ENOTFOUND if no documents are loaded.
	Search(ctx context.Context, query string, mode SearchMode, k int) ([]SearchResult, error)
}

// Embedder maps texts to dense vectors of a fixed length.
type Embedder interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the embedding model; it is part of cache keys.
	Model() string
}

// EmbeddingCache stores vectors keyed by a hash of model and text.
type EmbeddingCache interface {
	// GetEmbeddings returns the cached vectors for keys. Missing keys are
	// absent from the result map.
	GetEmbeddings(ctx context.Context, keys []string) (map[string][]float32, error)

	// PutEmbeddings stores vectors by key.
	PutEmbeddings(ctx context.Context, vectors map[string][]float32) error
}
