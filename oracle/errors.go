package oracle

import "errors"

var (
	// ErrUnavailable indicates the embedding model could not produce a vector:
	// it failed to start, returned an error, timed out, or returned nothing.
	ErrUnavailable = errors.New("similarity oracle unavailable")

	// ErrProviderFactoryRequired indicates that no provider factory was given.
	ErrProviderFactoryRequired = errors.New("provider factory is required")

	// ErrInvalidCapacity indicates a non-positive cache capacity.
	ErrInvalidCapacity = errors.New("cache capacity must be positive")

	// ErrInvalidTimeout indicates a non-positive model call timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	errClosed = errors.New("oracle is closed")
)
