package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid (malformed id, unsupported style or language)
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates a catalog source failed or timed out
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrBackendUnavailable indicates the summarization backend could not produce output
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrContentUnavailable indicates full text could not be obtained for a book
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the admin token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrQueueUnavailable indicates background jobs are not configured
	ErrQueueUnavailable = errors.New("queue unavailable")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")
)
