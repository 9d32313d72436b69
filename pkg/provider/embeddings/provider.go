// Package embeddings defines the Provider interface for the optional
// semantic-fallback oracle of the bridge aligner.
//
// A provider maps text strings to dense float32 vectors. The aligner only
// uses it for sentences that lexical matching left unresolved: it embeds the
// translated sentence together with a handful of bridge-sentence candidates
// and ranks them by cosine similarity. Providers are expected to return
// normalised vectors so that cosine similarity reduces to a dot product.
//
// The whole feature is behind a flag: a nil provider, a missing
// configuration, or a failing backend all leave unresolved sentences
// unresolved instead of erroring.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality (reported by Dimensions). Vectors from different Provider
// instances must not be mixed in one similarity computation unless both use
// the same model.
type Provider interface {
	// Embed computes the embedding vector for a single text string. Returns a
	// float32 slice of length Dimensions() or an error if the request fails
	// or ctx is cancelled.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes vectors for a slice of texts in a single provider
	// call. The returned slice has the same length and order as texts. On
	// error the entire result is nil; partial results are not returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider.
	Dimensions() int

	// ModelID returns the provider-specific model identifier, for logging
	// and for keying cached embeddings.
	ModelID() string
}
