package process

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// defaultProbeRequestTimeout bounds a single readiness request.
const defaultProbeRequestTimeout = 2 * time.Second

// ProbeConfig describes an HTTP readiness check against the backend.
type ProbeConfig struct {
	// URL is polled with GET until it answers with a 2xx or 3xx status.
	URL string

	// Interval is the delay between attempts.
	Interval time.Duration

	// Timeout bounds the whole probe. 0 means until ctx is cancelled.
	Timeout time.Duration

	// Client is used for requests. If nil, a client with a short
	// per-request timeout is used.
	Client *http.Client
}

// WaitReady polls cfg.URL until it answers successfully, the timeout
// expires, or ctx is cancelled, then marks the current process ready. It gives up early with ErrNotRunning if the process exits. It
// blocks, so callers run it in its own goroutine.
func (s *Supervisor) WaitReady(ctx context.Context, cfg ProbeConfig) error {
	s.mu.RLock()
	cmd := s.cmd
	s.mu.RUnlock()
	if cmd == nil {
		return ErrNotRunning
	}

	alive := func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.cmd == cmd
	}

	if err := probe(ctx, cfg, alive); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cmd != cmd {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.ready = true
	s.mu.Unlock()

	s.logger.Info("process ready", "name", s.config.Name, "url", cfg.URL)
	return nil
}

// probe polls cfg.URL. A nil alive never aborts early.
func probe(ctx context.Context, cfg ProbeConfig, alive func() bool) error {
	if cfg.URL == "" {
		return fmt.Errorf("%w: no url configured", ErrNotReady)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: defaultProbeRequestTimeout}
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	var lastErr error
	for {
		if alive != nil && !alive() {
			return ErrNotRunning
		}

		ok, err := probeOnce(ctx, client, cfg.URL)
		if ok {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w: %s: %w", ErrNotReady, cfg.URL, lastErr)
			}
			return fmt.Errorf("%w: %s: %w", ErrNotReady, cfg.URL, ctx.Err())
		case <-ticker.C:
		}
	}
}

func probeOnce(ctx context.Context, client *http.Client, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close() //nolint:errcheck // Body is unused
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return true, nil
	}
	return false, fmt.Errorf("status %d", resp.StatusCode)
}
