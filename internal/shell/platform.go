package shell

import (
	"context"
	"net/http"

	"github.com/nerrad567/webui-desktop/internal/process"
)

// WindowOptions describes the single top-level window.
type WindowOptions struct {
	Title     string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int

	// DisableContextIsolation and DisableWebSecurity relax the webview so
	// the loaded UI has unrestricted access to host-side bridging.
	DisableContextIsolation bool
	DisableWebSecurity      bool
}

// Platform is the UI toolkit the shell runs on.
type Platform interface {
	// RegisterScheme installs handler as the resolver for scheme://.
	RegisterScheme(scheme string, handler http.Handler) error

	// CreateWindow constructs the top-level window.
	CreateWindow(opts WindowOptions) (Window, error)

	// Quit ends the application event loop.
	Quit()

	// KeepsRunningWithoutWindows reports the platform convention of staying
	// alive after the last window closes (macOS).
	KeepsRunningWithoutWindows() bool
}

// Window is a handle to the top-level window.
type Window interface {
	LoadURL(url string) error
	OpenDevTools()

	// OnClosed registers fn to run once when the window is closed.
	OnClosed(fn func())
}

// Backend is the supervised backend process as seen by the shell.
type Backend interface {
	Start(ctx context.Context) error
	Stop() error
	Stats() process.Stats
	WaitReady(ctx context.Context, cfg process.ProbeConfig) error
}

// HealthChecker is a dependency whose reachability is reported on the
// status endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
