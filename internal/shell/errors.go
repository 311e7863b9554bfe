package shell

import "errors"

var (
	// ErrInvalidTransition is returned when a lifecycle step runs out of order.
	ErrInvalidTransition = errors.New("shell: invalid state transition")

	// ErrNoHistory is returned by the bridge when no journal is configured.
	ErrNoHistory = errors.New("shell: event history unavailable")

	// ErrStreamAddr is returned when the event stream address is not a
	// loopback host:port.
	ErrStreamAddr = errors.New("shell: event stream must listen on loopback")
)
