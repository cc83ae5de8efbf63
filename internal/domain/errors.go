package domain

import "errors"

// Sentinel errors for upstream failures. httpx maps HTTP status codes onto
// these so callers can branch with errors.Is without knowing the codes.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("upstream unavailable")
	ErrRateLimited = errors.New("rate limited")
)
