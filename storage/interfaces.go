package storage

import (
	"context"

	"github.com/poiesic/skillmatch/core"
)

// EmbeddingStore persists embeddings across processes so a restarted oracle
// does not have to re-embed texts it has seen before.
// Implementations must be thread-safe and support concurrent access.
type EmbeddingStore interface {
	// Get returns the vector stored for key.
	// Returns ErrNotFound if no vector is stored.
	Get(ctx context.Context, key core.EmbeddingKey) ([]float32, error)

	// Put stores vector under key, replacing any previous value.
	Put(ctx context.Context, key core.EmbeddingKey, vector []float32) error

	// Delete removes the vector stored under key. Missing keys are not an error.
	Delete(ctx context.Context, key core.EmbeddingKey) error

	// Close releases resources held by the store.
	Close() error
}
