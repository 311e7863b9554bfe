package shell

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/nerrad567/webui-desktop/internal/process"
)

// callLog records lifecycle calls across fakes in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(call string) int {
	n := 0
	for _, c := range l.list() {
		if c == call {
			n++
		}
	}
	return n
}

func (l *callLog) index(call string) int {
	for i, c := range l.list() {
		if c == call {
			return i
		}
	}
	return -1
}

type fakePlatform struct {
	log        *callLog
	keepAlive  bool
	schemeErr  error
	windowErr  error
	scheme     string
	handler    http.Handler
	window     *fakeWindow
	windowOpts WindowOptions
}

func (p *fakePlatform) RegisterScheme(scheme string, h http.Handler) error {
	p.log.add("platform.register_scheme")
	if p.schemeErr != nil {
		return p.schemeErr
	}
	p.scheme = scheme
	p.handler = h
	return nil
}

func (p *fakePlatform) CreateWindow(opts WindowOptions) (Window, error) {
	p.log.add("platform.create_window")
	if p.windowErr != nil {
		return nil, p.windowErr
	}
	p.windowOpts = opts
	p.window = &fakeWindow{log: p.log}
	return p.window, nil
}

func (p *fakePlatform) Quit() { p.log.add("platform.quit") }

func (p *fakePlatform) KeepsRunningWithoutWindows() bool { return p.keepAlive }

type fakeWindow struct {
	log      *callLog
	url      string
	devTools bool
	onClosed []func()
}

func (w *fakeWindow) LoadURL(url string) error {
	w.log.add("window.load_url")
	w.url = url
	return nil
}

func (w *fakeWindow) OpenDevTools() {
	w.log.add("window.open_devtools")
	w.devTools = true
}

func (w *fakeWindow) OnClosed(fn func()) { w.onClosed = append(w.onClosed, fn) }

// close simulates the platform's closed notification.
func (w *fakeWindow) close() {
	for _, fn := range w.onClosed {
		fn()
	}
}

type fakeBackend struct {
	log      *callLog
	startErr error
	readyErr error
	ready    chan struct{}

	mu      sync.Mutex
	running bool
	stops   int
}

func (b *fakeBackend) Start(context.Context) error {
	b.log.add("backend.start")
	if b.startErr != nil {
		return b.startErr
	}
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return nil
	}
	b.log.add("backend.stop")
	b.running = false
	b.stops++
	return nil
}

func (b *fakeBackend) Stats() process.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return process.Stats{Name: "backend", Status: process.StatusStopped, ExitCode: -1}
	}
	return process.Stats{Name: "backend", Status: process.StatusRunning, PID: 4242, ExitCode: -1}
}

func (b *fakeBackend) WaitReady(ctx context.Context, _ process.ProbeConfig) error {
	if b.ready != nil {
		defer close(b.ready)
	}
	if b.readyErr != nil {
		return b.readyErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (b *fakeBackend) isRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// memorySink collects events.
type memorySink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *memorySink) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *memorySink) kinds() []EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]EventKind, 0, len(s.events))
	for _, ev := range s.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (s *memorySink) has(kind EventKind) bool {
	for _, k := range s.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

func (s *memorySink) Recent(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

var errBoom = errors.New("boom")
