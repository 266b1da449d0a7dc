package warmup

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
	// ErrInvalidBatchSize is returned when a Config has a batch size <= 0
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
	// ErrTargetRequired is returned by NewWarmer for a nil target
	ErrTargetRequired = errors.New("warm target is required")
)
