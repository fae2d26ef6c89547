package services

import "errors"

// Sentinel errors translated to HTTP statuses by the handlers.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrRateLimited = errors.New("daily limit reached")
	ErrInvalidInput = errors.New("invalid input")
)
