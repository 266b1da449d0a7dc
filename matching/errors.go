package matching

import "errors"

var (
	// ErrOracleRequired indicates that no similarity oracle was provided.
	ErrOracleRequired = errors.New("similarity oracle is required")

	// ErrExtractorRequired indicates that no skill extractor was provided.
	ErrExtractorRequired = errors.New("skill extractor is required")

	// ErrInvalidThreshold indicates a recommendation threshold outside [-1, 1].
	ErrInvalidThreshold = errors.New("threshold must be between -1 and 1")
)
