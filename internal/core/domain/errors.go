package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyProcessing indicates the source is already being processed
	ErrAlreadyProcessing = errors.New("source already processing")

	// ErrNoChunks indicates processing produced zero chunks
	ErrNoChunks = errors.New("no chunks produced")

	// ErrExtractorNotFound indicates the source type has no registered extractor
	ErrExtractorNotFound = errors.New("extractor not found")

	// ErrRateLimited indicates the caller exceeded the request quota
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrKeyExpired indicates the API key carries an expiry in the past
	ErrKeyExpired = errors.New("api key expired")

	// ErrKeyInvalid indicates the API key is malformed or unknown
	ErrKeyInvalid = errors.New("api key invalid")

	// ErrProjectInactive indicates the owning project is disabled
	ErrProjectInactive = errors.New("project inactive")

	// ErrTokenExpired indicates the management session token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the management session token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrServiceUnavailable indicates the embedding provider could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
