package artifacts

import "errors"

var (
	// ErrNotFound is returned when an optional artifact does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidMappings is returned when mappings.json does not have the
	// expected shape.
	ErrInvalidMappings = errors.New("invalid mappings document")

	// ErrEmptyMatrix is returned for a matrix file without rows.
	ErrEmptyMatrix = errors.New("matrix has no rows")
)
