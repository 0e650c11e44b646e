// Package openai embeds text through OpenAI-compatible embedding APIs,
// including local servers such as Ollama or LM Studio.
package openai

import (
	"context"
	"fmt"

	"github.com/fwojciec/sift"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-3-small"

// Ensure Embedder implements sift.Embedder at compile time.
var _ sift.Embedder = (*Embedder)(nil)

// Embedder implements sift.Embedder using langchaingo.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
}

// Config holds the connection settings for an OpenAI-compatible endpoint.
type Config struct {
	// BaseURL overrides the API endpoint. Empty uses api.openai.com.
	BaseURL string

	// APIKey authenticates requests. Local services that need no
	// authentication may leave it empty.
	APIKey string

	// Model names the embedding model. Empty selects DefaultModel.
	Model string
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &Embedder{embedder: embedder, model: cfg.Model}, nil
}

// Model implements sift.Embedder.
func (e *Embedder) Model() string {
	return "openai/" + e.model
}

// EmbedTexts implements sift.Embedder.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, sift.Errorf(sift.EINTERNAL, "embedding service returned %d vectors for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}
