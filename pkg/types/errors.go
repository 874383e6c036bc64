package types

import "errors"

// Domain errors
var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrPageNotFound       = errors.New("annotation page not found")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrResourceNotFound   = errors.New("resource not found")

	// ErrIndexQuery wraps failures of the external search index. Callers may retry.
	ErrIndexQuery = errors.New("search index query failed")

	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidRange       = errors.New("invalid annotation range")
)
