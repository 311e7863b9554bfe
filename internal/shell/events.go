package shell

import (
	"context"
	"time"
)

// EventKind names a lifecycle event.
type EventKind string

const (
	EventSchemeRegistered EventKind = "scheme_registered"
	EventBackendStarted   EventKind = "backend_started"
	EventBackendFailed    EventKind = "backend_failed"
	EventBackendReady     EventKind = "backend_ready"
	EventBackendUnready   EventKind = "backend_unready"
	EventBackendExited    EventKind = "backend_exited"
	EventWindowOpened     EventKind = "window_opened"
	EventWindowClosed     EventKind = "window_closed"
	EventShutdown         EventKind = "shutdown"
)

// Event is one lifecycle occurrence.
type Event struct {
	Session  string    `json:"session"`
	Kind     EventKind `json:"kind"`
	State    State     `json:"state"`
	PID      int       `json:"pid,omitempty"`
	ExitCode *int      `json:"exit_code,omitempty"`
	Message  string    `json:"message,omitempty"`
	Time     time.Time `json:"time"`
}

// EventSink receives lifecycle events. Failures are logged by the App and
// never interrupt the lifecycle.
type EventSink interface {
	Record(ctx context.Context, ev Event) error
}

// EventHistory returns recently recorded events, newest first.
type EventHistory interface {
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// sinkTimeout bounds a single sink write.
const sinkTimeout = 2 * time.Second

// emit fans ev out to every sink. It must not be called with a.mu held.
func (a *App) emit(ev Event) {
	ev.Session = a.session
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if ev.State == "" {
		ev.State = a.State()
	}

	for _, sink := range a.opts.Sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := sink.Record(ctx, ev); err != nil {
			a.logger.Warn("failed to record lifecycle event", "kind", ev.Kind, "error", err)
		}
		cancel()
	}
	a.stream.broadcast(ev)
}
