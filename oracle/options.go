package oracle

import (
	"log/slog"
	"time"

	"github.com/poiesic/skillmatch/storage"
)

const (
	// DefaultCapacity is the default number of embeddings kept in the LRU.
	DefaultCapacity = 4096

	// DefaultTimeout bounds a single model call.
	DefaultTimeout = 5 * time.Second

	// DefaultModelID namespaces cache keys when no model is named.
	DefaultModelID = "default"
)

// Option configures an Oracle.
type Option func(*Oracle) error

// WithCapacity sets the LRU capacity.
func WithCapacity(capacity int) Option {
	return func(o *Oracle) error {
		if capacity <= 0 {
			return ErrInvalidCapacity
		}
		o.capacity = capacity
		return nil
	}
}

// WithTimeout bounds each model call.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Oracle) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		o.timeout = timeout
		return nil
	}
}

// WithModelID names the model. Embeddings are cached per model.
func WithModelID(modelID string) Option {
	return func(o *Oracle) error {
		if modelID != "" {
			o.modelID = modelID
		}
		return nil
	}
}

// WithStore adds a persistent store behind the LRU.
// The oracle does not close the store.
func WithStore(store storage.EmbeddingStore) Option {
	return func(o *Oracle) error {
		o.store = store
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}
