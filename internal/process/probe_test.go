package process

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestProbe_SucceedsAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := probe(context.Background(), ProbeConfig{
		URL:      srv.URL,
		Interval: 10 * time.Millisecond,
		Timeout:  5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("probe() error = %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("probe hit server %d times, want 3", got)
	}
}

func TestProbe_TimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := probe(context.Background(), ProbeConfig{
		URL:      srv.URL,
		Interval: 10 * time.Millisecond,
		Timeout:  100 * time.Millisecond,
	}, nil)
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("probe() error = %v, want ErrNotReady", err)
	}
}

func TestProbe_RequiresURL(t *testing.T) {
	if err := probe(context.Background(), ProbeConfig{}, nil); !errors.Is(err, ErrNotReady) {
		t.Errorf("probe() error = %v, want ErrNotReady", err)
	}
}

func TestSupervisor_WaitReadyWithoutProcess(t *testing.T) {
	s := NewSupervisor(Config{Name: "idle", Binary: "/bin/true"})

	err := s.WaitReady(context.Background(), ProbeConfig{URL: "http://127.0.0.1:1"})
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("WaitReady() error = %v, want ErrNotRunning", err)
	}
}
