package shell

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/webui-desktop/internal/process"
)

// Bridge endpoint limits.
const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// healthOK is reported for a dependency whose check passes.
const healthOK = "ok"

// statusResponse is the body of GET /__shell/status.
type statusResponse struct {
	Session string        `json:"session"`
	State   State         `json:"state"`
	Window  bool          `json:"window"`
	Backend process.Stats `json:"backend"`

	// Stream is the ws:// URL of the live event stream, when listening.
	Stream string `json:"stream,omitempty"`

	// Health maps each dependency to "ok" or its check error.
	Health map[string]string `json:"health,omitempty"`
}

// bridgeError is a structured error response.
type bridgeError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler returns the handler registered for the custom scheme: the host
// bridge under /__shell/ and the bundled UI resources everywhere else.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/__shell", func(r chi.Router) {
		r.Get("/status", a.handleStatus)
		r.Get("/events", a.handleEvents)
	})

	r.Handle("/*", a.opts.Resources)

	return r
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	resp := statusResponse{
		Session: a.session,
		State:   a.state,
		Window:  a.window != nil,
	}
	a.mu.Unlock()
	resp.Backend = a.backend.Stats()
	resp.Stream = a.stream.URL()

	if len(a.opts.Health) > 0 {
		resp.Health = make(map[string]string, len(a.opts.Health))
		for name, hc := range a.opts.Health {
			if err := hc.HealthCheck(r.Context()); err != nil {
				resp.Health[name] = err.Error()
				continue
			}
			resp.Health[name] = healthOK
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleEvents(w http.ResponseWriter, r *http.Request) {
	if a.opts.History == nil {
		writeError(w, http.StatusNotFound, "not_found", ErrNoHistory.Error())
		return
	}

	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := a.opts.History.Recent(r.Context(), limit)
	if err != nil {
		a.logger.Error("failed to read event history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read event history")
		return
	}
	if events == nil {
		events = []Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, bridgeError{
		Status:  status,
		Code:    code,
		Message: message,
	})
}
