package generation

import "errors"

var (
	ErrInvalidAPIKey               = errors.New("invalid api key format")
	ErrEmptyPropertyText           = errors.New("property text is required")
	ErrMalformedGenerationResponse = errors.New("malformed generation response")
)
