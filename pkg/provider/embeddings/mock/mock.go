// Package mock provides a test double for the embeddings.Provider interface.
//
// Vectors are assigned per text via the Vectors map, with Fallback used for
// texts not listed. Calls are recorded so tests can verify batching
// behaviour (the aligner must submit one batch per unresolved sentence).
package mock

import (
	"context"
	"sync"

	"github.com/readbridge/readbridge/pkg/provider/embeddings"
)

// Ensure Provider implements the embeddings.Provider interface.
var _ embeddings.Provider = (*Provider)(nil)

// Provider is a mock implementation of embeddings.Provider.
// The zero value returns nil vectors for every text.
type Provider struct {
	mu sync.Mutex

	// Vectors maps input text to the vector to return.
	Vectors map[string][]float32

	// Fallback is returned for texts not present in Vectors.
	Fallback []float32

	// Err, when non-nil, is returned by Embed and EmbedBatch.
	Err error

	// DimensionsValue is returned by Dimensions.
	DimensionsValue int

	// BatchCalls records each EmbedBatch invocation's texts.
	BatchCalls [][]string
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.vectorFor(text), nil
}

// EmbedBatch implements embeddings.Provider.
func (p *Provider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.BatchCalls = append(p.BatchCalls, append([]string(nil), texts...))
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vectorFor(t)
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int { return p.DimensionsValue }

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string { return "mock-embed" }

func (p *Provider) vectorFor(text string) []float32 {
	if v, ok := p.Vectors[text]; ok {
		return v
	}
	return p.Fallback
}
