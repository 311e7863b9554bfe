package packaging

import "errors"

var (
	// ErrUnknownPlatform is returned for a --platform value other than
	// win, mac or all.
	ErrUnknownPlatform = errors.New("packaging: unknown platform")

	// ErrBuildFailed wraps a failed installer build.
	ErrBuildFailed = errors.New("packaging: build failed")

	// ErrPrepareFailed wraps a failed preparation step.
	ErrPrepareFailed = errors.New("packaging: prepare failed")

	// ErrInvalidMetadata is returned when installer metadata is incomplete.
	ErrInvalidMetadata = errors.New("packaging: invalid metadata")
)
