package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"
)

func TestNewSupervisor_Defaults(t *testing.T) {
	s := NewSupervisor(Config{Binary: "python", Args: []string{"-m", "open_webui.main"}})

	if s.config.Name != "backend" {
		t.Errorf("Name = %q, want backend", s.config.Name)
	}
	if s.config.Stdin != os.Stdin || s.config.Stdout != os.Stdout || s.config.Stderr != os.Stderr {
		t.Error("standard streams are not inherited by default")
	}
}

func TestSupervisor_InitialState(t *testing.T) {
	s := NewSupervisor(Config{Name: "test", Binary: "/bin/true"})

	if s.Stats().Status != StatusStopped {
		t.Errorf("initial Stats.Status = %q, want %q", s.Stats().Status, StatusStopped)
	}
	stats := s.Stats()
	if stats.PID != 0 {
		t.Errorf("Stats.PID = %d, want 0", stats.PID)
	}
	if stats.Uptime != 0 {
		t.Errorf("Stats.Uptime = %v, want 0", stats.Uptime)
	}
	if stats.ExitCode != -1 {
		t.Errorf("Stats.ExitCode = %d, want -1", stats.ExitCode)
	}
	if stats.Ready {
		t.Error("Stats.Ready = true before start")
	}
}

func TestSupervisor_Stats(t *testing.T) {
	s := NewSupervisor(Config{Name: "stats-test", Binary: "/bin/echo"})

	stats := s.Stats()
	if stats.Name != "stats-test" {
		t.Errorf("Stats.Name = %q, want %q", stats.Name, "stats-test")
	}
	if stats.Status != StatusStopped {
		t.Errorf("Stats.Status = %q, want %q", stats.Status, StatusStopped)
	}
	if stats.PID != 0 {
		t.Errorf("Stats.PID = %d, want 0", stats.PID)
	}
	if stats.LastError != "" {
		t.Errorf("Stats.LastError = %q, want empty", stats.LastError)
	}
}

func TestSupervisor_StopWhenNotRunning(t *testing.T) {
	s := NewSupervisor(Config{Name: "test", Binary: "/bin/true"})

	kills := 0
	s.kill = func(*os.Process) error {
		kills++
		return nil
	}

	for i := 0; i < 3; i++ {
		if err := s.Stop(); err != nil {
			t.Errorf("Stop() on idle supervisor error = %v, want nil", err)
		}
	}
	if kills != 0 {
		t.Errorf("kill called %d times, want 0", kills)
	}
}

func TestSupervisor_StartWithInvalidBinary(t *testing.T) {
	s := NewSupervisor(Config{
		Name:   "bad-binary",
		Binary: "/nonexistent/binary",
	})

	exited := false
	s.config.OnExit = func(int, error) { exited = true }

	err := s.Start(context.Background())
	if err == nil {
		t.Fatal("Start() with invalid binary expected error, got nil")
	}
	if !errors.Is(err, ErrSpawnFailed) {
		t.Errorf("Start() error = %v, want ErrSpawnFailed", err)
	}
	if s.Stats().Status != StatusFailed {
		t.Errorf("Stats.Status = %q, want %q", s.Stats().Status, StatusFailed)
	}
	if stats := s.Stats(); stats.LastError == "" || stats.PID != 0 {
		t.Errorf("Stats() after spawn failure = %+v", stats)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() after spawn failure error = %v", err)
	}
	if exited {
		t.Error("OnExit called for a process that never started")
	}
}

func TestSupervisor_StartWithCancelledContext(t *testing.T) {
	s := NewSupervisor(Config{Name: "test", Binary: "/bin/true"})

	calls := 0
	s.command = func(name string, args ...string) *exec.Cmd {
		calls++
		return exec.Command(name, args...)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Start(ctx); err == nil {
		t.Error("Start() with cancelled context expected error, got nil")
	}
	if calls != 0 {
		t.Errorf("command built %d times, want 0", calls)
	}
}

func TestSupervisor_SetLogger(t *testing.T) {
	s := NewSupervisor(Config{Name: "test", Binary: "/bin/true"})

	// Should not panic
	s.SetLogger(noopLogger{})
}
