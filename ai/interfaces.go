package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider owns an embedding model handle and its resources.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider.
	Close() error
}

// ProviderFactory builds a Provider on first use. Construction may be
// expensive, so callers defer it until an embedding is actually needed.
type ProviderFactory func() (Provider, error)

// Oracle answers "how semantically close are these two texts".
// Implementations cache embeddings and must be safe for concurrent use.
type Oracle interface {
	// Embed returns the embedding of text. A failed or timed-out model call
	// yields an error, never a zero vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedVocabulary returns embeddings for a fixed term list, in order.
	EmbedVocabulary(ctx context.Context, terms []string) ([][]float32, error)

	// Similarity returns the cosine similarity of two vectors.
	Similarity(a, b []float32) float64
}
