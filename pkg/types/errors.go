package types

import "errors"

// Domain errors shared across components
var (
	// Index errors
	ErrIndexNotFound = errors.New("index not found")
	ErrIndexCorrupt  = errors.New("index corrupt")

	// Search result errors
	ErrInvalidRank     = errors.New("rank must be >= 1")
	ErrInvalidDistance = errors.New("distance must be non-negative")
	ErrMissingSource   = errors.New("source path is required")
	ErrEmptyContent    = errors.New("content cannot be empty")
)
