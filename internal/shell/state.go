package shell

import "fmt"

// State is a lifecycle state of the App.
type State string

const (
	StateUninitialized    State = "uninitialized"
	StateSchemeRegistered State = "scheme_registered"
	StateBackendStarting  State = "backend_starting"
	StateWindowOpen       State = "window_open"
	StateClosed           State = "closed"
)

// transitions lists the legal successors of each state. Closed is reachable
// from every started state so failed startups can tear down.
var transitions = map[State][]State{
	StateUninitialized:    {StateSchemeRegistered},
	StateSchemeRegistered: {StateBackendStarting, StateClosed},
	StateBackendStarting:  {StateWindowOpen, StateClosed},
	StateWindowOpen:       {StateClosed},
}

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// transition moves the app to next, or fails with ErrInvalidTransition.
// Callers hold a.mu.
func (a *App) transitionLocked(next State) error {
	if !a.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, next)
	}
	a.logger.Debug("lifecycle transition", "from", a.state, "to", next)
	a.state = next
	return nil
}
