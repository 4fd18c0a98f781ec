package openai

import "errors"

var (
	ErrUnauthorized        = errors.New("generation api rejected the key")
	ErrRateLimited         = errors.New("generation api rate limit reached")
	ErrQuotaExceeded       = errors.New("generation api quota exceeded")
	ErrUpstreamUnavailable = errors.New("generation api unavailable")
	ErrEmptyReply          = errors.New("generation api returned no content")
)
