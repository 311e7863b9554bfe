package process

import "errors"

// Domain-specific errors for supervisor operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAlreadyRunning is returned by Start when a process handle is live.
	ErrAlreadyRunning = errors.New("process: already running")

	// ErrSpawnFailed wraps the OS error when the child cannot be created.
	ErrSpawnFailed = errors.New("process: spawn failed")

	// ErrNotRunning is returned when an operation needs a live process.
	ErrNotRunning = errors.New("process: not running")

	// ErrNotReady is returned when the readiness probe gives up.
	ErrNotReady = errors.New("process: readiness probe failed")
)
