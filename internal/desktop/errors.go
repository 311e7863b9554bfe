package desktop

import "errors"

var (
	// ErrSchemeRegistered is returned when a second scheme is registered.
	ErrSchemeRegistered = errors.New("desktop: scheme already registered")

	// ErrWindowExists is returned when a second window is requested.
	ErrWindowExists = errors.New("desktop: window already created")

	// ErrNoWindow is returned by Run when the ready callback created no window.
	ErrNoWindow = errors.New("desktop: no window created")

	// ErrForeignURL is returned when a window is pointed outside the
	// registered scheme.
	ErrForeignURL = errors.New("desktop: url outside registered scheme")
)
