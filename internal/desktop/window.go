package desktop

import (
	"sync"

	"github.com/nerrad567/webui-desktop/internal/shell"
)

// window is the single Wails window as seen by the shell.
type window struct {
	platform *Platform
	opts     shell.WindowOptions

	mu        sync.Mutex
	startPath string
	devTools  bool
	onClosed  []func()
	closed    bool
}

// LoadURL points the window at a scheme URL. Before Run it sets the start
// page; afterwards it navigates the live webview.
func (w *window) LoadURL(raw string) error {
	p, err := w.platform.schemePath(raw)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.startPath = p
	w.mu.Unlock()

	w.platform.loadLive(p)
	return nil
}

// OpenDevTools opens the web inspector when the window starts. Wails only
// honours this in builds made with -devtools or -debug.
func (w *window) OpenDevTools() {
	w.mu.Lock()
	w.devTools = true
	w.mu.Unlock()
}

// OnClosed registers fn to run when the window closes.
func (w *window) OnClosed(fn func()) {
	w.mu.Lock()
	w.onClosed = append(w.onClosed, fn)
	w.mu.Unlock()
}

func (w *window) path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.startPath
}

func (w *window) inspector() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.devTools
}

func (w *window) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// fireClosed runs the close callbacks once.
func (w *window) fireClosed() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	fns := append([]func(){}, w.onClosed...)
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
