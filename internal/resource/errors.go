package resource

import "errors"

var (
	// ErrInvalidPath is returned for empty, undecodable or NUL-bearing paths.
	ErrInvalidPath = errors.New("resource: invalid path")

	// ErrOutsideRoot is returned when a path would escape the resource root.
	ErrOutsideRoot = errors.New("resource: path escapes resource root")

	// ErrSchemeMismatch is returned for URLs on a scheme other than the resolver's.
	ErrSchemeMismatch = errors.New("resource: scheme mismatch")
)
