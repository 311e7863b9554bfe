package shell

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/webui-desktop/internal/process"
)

// Logger defines the logging interface for the shell.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures an App.
type Options struct {
	// Scheme is the custom resource scheme, e.g. "app".
	Scheme string

	// Resources serves bundled UI files for paths under Scheme.
	Resources http.Handler

	// Window holds the fixed window geometry and content flags.
	Window WindowOptions

	// StartURL is loaded into the window, e.g. "app://index.html".
	StartURL string

	// DevTools opens developer tooling once the window exists.
	DevTools bool

	// Probe, when set, polls backend readiness in the background.
	Probe *process.ProbeConfig

	// Sinks receive lifecycle events.
	Sinks []EventSink

	// History backs the /__shell/events bridge endpoint. Optional.
	History EventHistory

	// StreamAddr is the loopback host:port the live event stream listens
	// on, e.g. "127.0.0.1:0". Empty disables the stream.
	StreamAddr string

	// Health lists dependencies reported by /__shell/status, by name.
	Health map[string]HealthChecker

	// Session identifies this run in events. Generated when empty.
	Session string
}

// App is the application lifecycle object. It exclusively owns the window
// handle and drives the backend; lifecycle callbacks receive it explicitly
// instead of reaching for package state.
type App struct {
	platform Platform
	backend  Backend
	opts     Options
	logger   Logger
	session  string
	stream   *Stream

	mu          sync.Mutex
	state       State
	window      Window
	probeCancel context.CancelFunc
}

// New creates an App in the uninitialized state.
func New(platform Platform, backend Backend, opts Options) *App {
	session := opts.Session
	if session == "" {
		session = uuid.NewString()
	}
	if opts.Resources == nil {
		opts.Resources = http.NotFoundHandler()
	}
	return &App{
		platform: platform,
		backend:  backend,
		opts:     opts,
		logger:   noopLogger{},
		session:  session,
		stream:   newStream(noopLogger{}),
		state:    StateUninitialized,
	}
}

// SetLogger sets the logger for the app.
func (a *App) SetLogger(logger Logger) {
	a.logger = logger
	a.stream.logger = logger
}

// Stream returns the live event stream. Its URL is empty until Ready starts
// the listener.
func (a *App) Stream() *Stream {
	return a.stream
}

// Session returns the run identifier attached to events.
func (a *App) Session() string {
	return a.session
}

// State returns the current lifecycle state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// HasWindow reports whether a window handle is held.
func (a *App) HasWindow() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.window != nil
}

// Ready runs the application-ready sequence: register the resource scheme,
// start the backend, open the window and load the start URL.
//
// A backend that fails to spawn is logged and the window opens anyway. The
// window is created right after the spawn call without waiting for the
// backend; readiness, if configured, is probed in the background.
func (a *App) Ready(ctx context.Context) error {
	if err := a.advance(StateSchemeRegistered); err != nil {
		return err
	}
	if err := a.platform.RegisterScheme(a.opts.Scheme, a.Handler()); err != nil {
		a.abort()
		return fmt.Errorf("registering %s scheme: %w", a.opts.Scheme, err)
	}
	a.logger.Info("resource scheme registered", "scheme", a.opts.Scheme)
	a.emit(Event{Kind: EventSchemeRegistered, Message: a.opts.Scheme})

	if a.opts.StreamAddr != "" {
		if _, err := a.stream.Listen(ctx, a.opts.StreamAddr); err != nil {
			a.logger.Warn("event stream unavailable", "addr", a.opts.StreamAddr, "error", err)
		}
	}

	if err := a.advance(StateBackendStarting); err != nil {
		return err
	}
	a.startBackend(ctx)

	win, err := a.platform.CreateWindow(a.opts.Window)
	if err != nil {
		a.logger.Error("failed to create window", "error", err)
		a.abort()
		return fmt.Errorf("creating window: %w", err)
	}

	a.mu.Lock()
	a.window = win
	err = a.transitionLocked(StateWindowOpen)
	a.mu.Unlock()
	if err != nil {
		return err
	}

	win.OnClosed(a.handleWindowClosed)

	if err := win.LoadURL(a.opts.StartURL); err != nil {
		a.logger.Error("failed to load start url", "url", a.opts.StartURL, "error", err)
	}
	if a.opts.DevTools {
		a.logger.Info("opening developer tools")
		win.OpenDevTools()
	}

	a.logger.Info("window opened",
		"url", a.opts.StartURL,
		"width", a.opts.Window.Width,
		"height", a.opts.Window.Height,
	)
	a.emit(Event{Kind: EventWindowOpened, Message: a.opts.StartURL})
	return nil
}

// advance performs a transition under the lock.
func (a *App) advance(next State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transitionLocked(next)
}

// startBackend spawns the backend. Failure is logged, not returned.
func (a *App) startBackend(ctx context.Context) {
	if err := a.backend.Start(ctx); err != nil {
		a.logger.Error("failed to start backend", "error", err)
		a.emit(Event{Kind: EventBackendFailed, Message: err.Error()})
		return
	}

	pid := a.backend.Stats().PID
	a.emit(Event{Kind: EventBackendStarted, PID: pid})

	if a.opts.Probe == nil {
		return
	}

	probeCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.probeCancel = cancel
	a.mu.Unlock()

	go a.awaitBackend(probeCtx, *a.opts.Probe)
}

// awaitBackend runs the readiness probe off the UI thread.
func (a *App) awaitBackend(ctx context.Context, cfg process.ProbeConfig) {
	err := a.backend.WaitReady(ctx, cfg)
	switch {
	case err == nil:
		a.logger.Info("backend ready", "url", cfg.URL)
		a.emit(Event{Kind: EventBackendReady, PID: a.backend.Stats().PID})
	case errors.Is(err, context.Canceled):
	default:
		a.logger.Warn("backend did not become ready", "url", cfg.URL, "error", err)
		a.emit(Event{Kind: EventBackendUnready, Message: err.Error()})
	}
}

// handleWindowClosed tears down in order: clear the window handle, hard-stop
// the backend, then quit unless the platform keeps windowless apps alive.
func (a *App) handleWindowClosed() {
	a.mu.Lock()
	if a.state != StateWindowOpen {
		a.mu.Unlock()
		return
	}
	a.window = nil
	cancel := a.probeCancel
	a.probeCancel = nil
	a.mu.Unlock()

	a.logger.Info("window closed, stopping backend")
	if cancel != nil {
		cancel()
	}
	if err := a.backend.Stop(); err != nil {
		a.logger.Error("failed to stop backend", "error", err)
	}

	a.mu.Lock()
	_ = a.transitionLocked(StateClosed) //nolint:errcheck // window_open -> closed is always legal
	a.mu.Unlock()
	a.emit(Event{Kind: EventWindowClosed})

	if a.platform.KeepsRunningWithoutWindows() {
		a.logger.Info("platform keeps running without windows")
		return
	}
	a.platform.Quit()
}

// abort tears down after a failed startup step.
func (a *App) abort() {
	a.mu.Lock()
	cancel := a.probeCancel
	a.probeCancel = nil
	a.window = nil
	if a.state.CanTransition(StateClosed) {
		a.state = StateClosed
	}
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := a.backend.Stop(); err != nil {
		a.logger.Error("failed to stop backend", "error", err)
	}
}

// BackendExited records a backend exit. It never restarts the backend and
// nothing is surfaced to the UI beyond the bridge status.
func (a *App) BackendExited(exitCode int, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	a.logger.Info("backend process exited", "exit_code", exitCode, "error", err)
	code := exitCode
	a.emit(Event{Kind: EventBackendExited, ExitCode: &code, Message: msg})
}

// Shutdown stops the backend and clears the window handle. It is safe to
// call at any point and more than once; main calls it after the platform
// event loop returns.
func (a *App) Shutdown() {
	a.mu.Lock()
	a.window = nil
	cancel := a.probeCancel
	a.probeCancel = nil
	wasClosed := a.state == StateClosed || a.state == StateUninitialized
	if a.state.CanTransition(StateClosed) {
		a.state = StateClosed
	}
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := a.backend.Stop(); err != nil {
		a.logger.Error("failed to stop backend", "error", err)
	}
	if !wasClosed {
		a.emit(Event{Kind: EventShutdown})
	}
	a.stream.Close()
}
