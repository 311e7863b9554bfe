package resource

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
)

// Logger is the logging interface used by Handler.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// HandlerOptions tunes how resolved files are served.
type HandlerOptions struct {
	// Permissive answers every origin with permissive CORS headers so the
	// UI can talk to the backend and to host-side bridging freely.
	Permissive bool
}

// Handler returns an http.Handler that serves files from the resolver's root.
//
// The request path is resolved as app://<path>. Failed resolutions and
// missing files are logged and answered with 403 or 404. Directories are
// never listed and there is no index.html fallback.
func Handler(res *Resolver, logger Logger, opts HandlerOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if opts.Permissive {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "*")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		// Bundled UI assets change with every release.
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		requested := r.URL.EscapedPath()
		file, err := res.ResolvePath(requested)
		if err != nil {
			logger.Warn("resource resolution failed", "path", requested, "error", err)
			if errors.Is(err, ErrOutsideRoot) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			http.NotFound(w, r)
			return
		}

		f, err := os.Open(file) //nolint:gosec // Path is contained by ResolvePath
		if err != nil {
			logger.Warn("resource not found", "path", requested, "file", file, "error", err)
			http.NotFound(w, r)
			return
		}
		defer f.Close() //nolint:errcheck // Read-only

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			logger.Warn("resource is not a file", "path", requested, "file", file)
			http.NotFound(w, r)
			return
		}

		logger.Debug("serving resource", "path", requested, "file", file)
		http.ServeContent(w, r, filepath.Base(file), info.ModTime(), f)
	})
}
