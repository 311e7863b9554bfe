package desktop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/nerrad567/webui-desktop/internal/shell"
)

// Logger defines the logging interface for the platform.
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

// Platform implements shell.Platform on Wails.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Wails lifecycle callbacks may arrive on the UI thread; none of them
//     block on the shell.
type Platform struct {
	logger    Logger
	keepAlive bool

	// inspectorBuild reports whether this binary can open the inspector.
	inspectorBuild bool

	// Wails entry points; swapped in tests.
	run    func(*options.App) error
	quit   func(ctx context.Context)
	hide   func(ctx context.Context)
	execJS func(ctx context.Context, js string)

	mu           sync.Mutex
	scheme       string
	handler      http.Handler
	win          *window
	ctx          context.Context
	quitPending  bool
	shuttingDown bool
}

// New creates a Platform. Nothing is shown until Run.
func New(logger Logger) *Platform {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Platform{
		logger:         logger,
		keepAlive:      keepAliveWithoutWindows,
		inspectorBuild: inspectorBuild,
		run:            wails.Run,
		quit:           runtime.Quit,
		hide:           runtime.WindowHide,
		execJS:         runtime.WindowExecJS,
	}
}

// RegisterScheme installs the handler behind scheme://. Only one scheme is
// supported since the Wails asset server has a single origin.
func (p *Platform) RegisterScheme(scheme string, handler http.Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handler != nil {
		return fmt.Errorf("%w: %s", ErrSchemeRegistered, p.scheme)
	}
	p.scheme = strings.ToLower(scheme)
	p.handler = handler
	return nil
}

// CreateWindow records the window options. The native window appears when
// Run hands control to Wails.
func (p *Platform) CreateWindow(opts shell.WindowOptions) (shell.Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.win != nil {
		return nil, ErrWindowExists
	}
	p.win = &window{platform: p, opts: opts, startPath: "/index.html"}
	return p.win, nil
}

// Quit ends the Wails event loop. Before the loop has started the request
// is remembered and honoured on startup.
func (p *Platform) Quit() {
	p.mu.Lock()
	ctx := p.ctx
	if p.shuttingDown {
		p.mu.Unlock()
		return
	}
	if ctx == nil {
		p.quitPending = true
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.logger.Info("quitting event loop")
	p.quit(ctx)
}

// KeepsRunningWithoutWindows reports true on macOS.
func (p *Platform) KeepsRunningWithoutWindows() bool {
	return p.keepAlive
}

// Run calls ready, which is expected to register the scheme and create the
// window, then blocks in the Wails event loop until the app exits.
func (p *Platform) Run(ctx context.Context, ready func(context.Context) error) error {
	if err := ready(ctx); err != nil {
		return err
	}

	app, err := p.appOptions()
	if err != nil {
		return err
	}

	// Cancelling ctx (e.g. on SIGTERM) ends the event loop.
	stop := context.AfterFunc(ctx, p.Quit)
	defer stop()

	if err := p.run(app); err != nil {
		return fmt.Errorf("running webview: %w", err)
	}
	return nil
}

// appOptions translates the recorded window into Wails options.
func (p *Platform) appOptions() (*options.App, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.win == nil {
		return nil, ErrNoWindow
	}
	handler := p.handler
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	w := p.win
	if w.inspector() && !p.inspectorBuild {
		p.logger.Warn("developer tools requested but this is a release build; rebuild with --debug")
	}
	if w.opts.DisableContextIsolation || w.opts.DisableWebSecurity {
		p.logger.Info("webview has no content isolation or web security switch; permissive mode applies to the resource handler only")
	}

	return &options.App{
		Title:     w.opts.Title,
		Width:     w.opts.Width,
		Height:    w.opts.Height,
		MinWidth:  w.opts.MinWidth,
		MinHeight: w.opts.MinHeight,
		AssetServer: &assetserver.Options{
			Handler: startPage(handler, w.path),
		},
		Logger:        wailsLogger{p.logger},
		OnStartup:     p.onStartup,
		OnBeforeClose: p.onBeforeClose,
		OnShutdown:    p.onShutdown,
		Debug: options.Debug{
			OpenInspectorOnStartup: w.inspector(),
		},
	}, nil
}

func (p *Platform) onStartup(ctx context.Context) {
	p.mu.Lock()
	p.ctx = ctx
	pending := p.quitPending
	p.mu.Unlock()

	p.logger.Debug("webview started")
	if pending {
		p.quit(ctx)
	}
}

// onBeforeClose hides instead of closing on platforms that keep running
// without windows. A second close request (the user quitting from the dock)
// is let through.
func (p *Platform) onBeforeClose(ctx context.Context) bool {
	p.mu.Lock()
	w := p.win
	p.mu.Unlock()

	if !p.keepAlive || w == nil || w.isClosed() {
		return false
	}

	p.logger.Info("window close requested, hiding")
	p.hide(ctx)
	w.fireClosed()
	return true
}

func (p *Platform) onShutdown(context.Context) {
	p.mu.Lock()
	p.shuttingDown = true
	w := p.win
	p.mu.Unlock()

	p.logger.Debug("webview shutting down")
	if w != nil {
		w.fireClosed()
	}
}

// loadLive navigates a running webview.
func (p *Platform) loadLive(path string) bool {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil {
		return false
	}
	p.execJS(ctx, fmt.Sprintf("window.location.replace(%q)", path))
	return true
}

// schemePath maps scheme://<path> onto the asset server path /<path>.
func (p *Platform) schemePath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrForeignURL, raw, err)
	}

	p.mu.Lock()
	scheme := p.scheme
	p.mu.Unlock()

	if scheme == "" || !strings.EqualFold(u.Scheme, scheme) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, raw)
	}

	// app://index.html parses with the file name as host.
	rel := strings.TrimPrefix(u.Host+u.Path, "/")
	if rel == "" {
		rel = "index.html"
	}
	return "/" + rel, nil
}

// startPage serves the start document for "/" and passes everything else
// through unchanged.
func startPage(next http.Handler, start func() string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "" {
			r2 := r.Clone(r.Context())
			r2.URL.Path = start()
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
			return
		}
		next.ServeHTTP(w, r)
	})
}
