package service

import "errors"

// Error kinds crossing the orchestrator boundary. Handlers discriminate with
// errors.Is instead of matching on message substrings.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUpstream        = errors.New("upstream generation failed")
)
