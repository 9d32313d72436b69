package artifact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/readbridge/readbridge/pkg/provider/embeddings"
)

// Compile-time interface check.
var _ embeddings.Provider = (*CachingProvider)(nil)

// CachingProvider wraps an embeddings.Provider with the store's sentence
// embedding cache. Cache reads and writes are best-effort: a cache failure
// falls through to the inner provider, and write failures are logged, not
// returned. Safe for concurrent use.
type CachingProvider struct {
	inner embeddings.Provider
	store *Store
}

// NewCachingProvider wraps inner with the embedding cache in store.
func NewCachingProvider(inner embeddings.Provider, store *Store) *CachingProvider {
	return &CachingProvider{inner: inner, store: store}
}

// Embed implements embeddings.Provider.
func (p *CachingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("artifact embeddings: empty batch result")
	}
	return vecs[0], nil
}

// EmbedBatch implements embeddings.Provider. Cached texts are served from
// the store; only the misses are forwarded to the inner provider, in one
// call, and written back afterwards.
func (p *CachingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	model := p.inner.ModelID()

	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		vec, err := p.store.CachedEmbedding(ctx, model, t)
		if err != nil {
			slog.Debug("embedding cache read failed", "err", err)
		}
		if vec != nil {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := p.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("artifact embeddings: expected %d embeddings, got %d", len(missTexts), len(fresh))
	}
	for k, i := range missIdx {
		out[i] = fresh[k]
		if err := p.store.PutEmbedding(ctx, model, missTexts[k], fresh[k]); err != nil {
			slog.Debug("embedding cache write failed", "err", err)
		}
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *CachingProvider) Dimensions() int { return p.inner.Dimensions() }

// ModelID implements embeddings.Provider.
func (p *CachingProvider) ModelID() string { return p.inner.ModelID() }
