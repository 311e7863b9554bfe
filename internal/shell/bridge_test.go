package shell

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBridge_Status(t *testing.T) {
	app, platform, _, _, _ := newTestApp(t, nil)
	if err := app.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	rec := httptest.NewRecorder()
	platform.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__shell/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body struct {
		Session string `json:"session"`
		State   string `json:"state"`
		Window  bool   `json:"window"`
		Backend struct {
			Status string `json:"status"`
			PID    int    `json:"pid"`
		} `json:"backend"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Session != "test-session" {
		t.Errorf("session = %q", body.Session)
	}
	if body.State != string(StateWindowOpen) {
		t.Errorf("state = %q", body.State)
	}
	if !body.Window {
		t.Error("window = false")
	}
	if body.Backend.Status != "running" || body.Backend.PID != 4242 {
		t.Errorf("backend = %+v", body.Backend)
	}
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestBridge_StatusHealth(t *testing.T) {
	app, platform, _, _, _ := newTestApp(t, func(_ *fakePlatform, _ *fakeBackend, opts *Options) {
		opts.Health = map[string]HealthChecker{
			"journal": healthFunc(func(context.Context) error { return nil }),
			"mqtt":    healthFunc(func(context.Context) error { return errors.New("mqtt not connected") }),
		}
	})
	if err := app.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	rec := httptest.NewRecorder()
	platform.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__shell/status", nil))

	var body struct {
		Stream string            `json:"stream"`
		Health map[string]string `json:"health"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Health["journal"] != "ok" {
		t.Errorf("health[journal] = %q, want ok", body.Health["journal"])
	}
	if body.Health["mqtt"] != "mqtt not connected" {
		t.Errorf("health[mqtt] = %q", body.Health["mqtt"])
	}
	if body.Stream != "" {
		t.Errorf("stream = %q without a stream address", body.Stream)
	}
}

func TestBridge_EventsWithoutHistory(t *testing.T) {
	app, _, _, _, _ := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__shell/events", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestBridge_Events(t *testing.T) {
	history := &memorySink{}
	app, _, _, _, _ := newTestApp(t, func(_ *fakePlatform, _ *fakeBackend, o *Options) {
		o.Sinks = []EventSink{history}
		o.History = history
	})
	if err := app.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
	}{
		{"default limit", "", http.StatusOK, 3},
		{"explicit limit", "?limit=1", http.StatusOK, 1},
		{"limit above max is clamped", "?limit=100000", http.StatusOK, 3},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0},
		{"non-numeric limit", "?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__shell/events"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body struct {
				Events []Event `json:"events"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if len(body.Events) != tt.wantCount {
				t.Errorf("events = %d, want %d", len(body.Events), tt.wantCount)
			}
			if len(body.Events) > 0 && body.Events[0].Kind != EventWindowOpened {
				t.Errorf("newest event = %q, want %q", body.Events[0].Kind, EventWindowOpened)
			}
		})
	}
}

func TestBridge_HistoryError(t *testing.T) {
	app, _, _, _, _ := newTestApp(t, func(_ *fakePlatform, _ *fakeBackend, o *Options) {
		o.History = &memorySink{err: errBoom}
	})

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__shell/events", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestBridge_ResourcesPassThrough(t *testing.T) {
	resources := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "resource:"+r.URL.Path) //nolint:errcheck
	})
	app, _, _, _, _ := newTestApp(t, func(_ *fakePlatform, _ *fakeBackend, o *Options) {
		o.Resources = resources
	})

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "resource:/assets/app.js" {
		t.Errorf("body = %q", got)
	}
}
