package spark

import "errors"

// Domain errors for the spark package.
var (
	// ErrSparkNotFound is returned when a spark ID is not configured.
	ErrSparkNotFound = errors.New("spark: not found")

	// ErrSparkExists is returned when two sparks share an ID.
	ErrSparkExists = errors.New("spark: already exists")

	// ErrInvalidSpark is returned when spark validation fails.
	ErrInvalidSpark = errors.New("spark: invalid")
)
