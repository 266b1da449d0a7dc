package extract

import "errors"

var (
	// ErrEmptyVocabulary indicates an extractor was created without terms.
	ErrEmptyVocabulary = errors.New("vocabulary must not be empty")

	// ErrOracleRequired indicates the semantic fallback was enabled without an oracle.
	ErrOracleRequired = errors.New("semantic extraction requires an oracle")

	// ErrInvalidTopK indicates a non-positive default top-k.
	ErrInvalidTopK = errors.New("top-k must be positive")
)
