// Package search implements semantic search over cell content:
// embedding generation via github.com/anush008/fastembed-go and an
// exact-search vector index via github.com/blevesearch/go-faiss, with
// tenant/namespace/tag predicate pushdown applied before the top-k
// truncation.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/anush008/fastembed-go"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/config"
)

// embeddingVersion is bumped whenever the embedding model or its output
// shape changes, so stored vectors can be distinguished from vectors that
// would be produced by a newer model.
const embeddingVersion = "fastembed-go/1"

// Embedder generates sentence embeddings with a locally-loaded fastembed
// model, satisfying store.Embedder. It serializes calls to the underlying
// model, which is not documented as safe for concurrent use.
type Embedder struct {
	mu    sync.Mutex
	model *fastembed.FlagEmbedding
	dim   int
}

// NewEmbedder loads the configured embedding model.
func NewEmbedder(cfg config.SearchConfig) (*Embedder, error) {
	maxLen := 512
	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:     modelFor(cfg.EmbeddingModel),
		MaxLength: &maxLen,
	})
	if err != nil {
		return nil, fmt.Errorf("loading embedding model %q: %w", cfg.EmbeddingModel, err)
	}

	probe, err := model.Embed([]string{"dimension probe"}, 1)
	if err != nil || len(probe) == 0 {
		return nil, fmt.Errorf("probing embedding dimension: %w", err)
	}
	return &Embedder{model: model, dim: len(probe[0])}, nil
}

// modelFor maps the configured model name to fastembed-go's enum,
// defaulting to its small English model for anything unrecognized.
func modelFor(name string) fastembed.EmbeddingModel {
	switch name {
	case "bge-base-en-v1.5":
		return fastembed.BGEBaseEN
	case "bge-small-en-v1.5":
		return fastembed.BGESmallEN
	case "all-MiniLM-L6-v2":
		return fastembed.AllMiniLML6V2
	default:
		return fastembed.BGESmallEN
	}
}

// Dimension returns the embedding vector width produced by the loaded
// model.
func (e *Embedder) Dimension() int { return e.dim }

// Embed produces a single embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	vecs, err := e.model.Embed([]string{text}, 1)
	if err != nil {
		return nil, "", fmt.Errorf("embedding text: %w", err)
	}
	if len(vecs) == 0 {
		return nil, "", fmt.Errorf("embedding model returned no vectors")
	}
	return vecs[0], embeddingVersion, nil
}
