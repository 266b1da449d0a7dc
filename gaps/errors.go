package gaps

import "errors"

var (
	ErrExtractorRequired = errors.New("skill extractor is required")
)
