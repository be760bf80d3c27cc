package services

import "errors"

// Validation service errors
var (
	// Document errors
	ErrComparisonImpossible = errors.New("comparison impossible: no sections parsed from either document")
	ErrMissingSide          = errors.New("document has no parsable sections")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// General errors
	ErrOperationTimeout = errors.New("operation timed out")
)
