//go:build !windows

package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

// countingKill wraps killTree and records how often it was invoked.
type countingKill struct {
	mu    sync.Mutex
	calls int
}

func (c *countingKill) kill(p *os.Process) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return killTree(p)
}

func (c *countingKill) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSupervisor_SpawnsOnceAndKillsOnce(t *testing.T) {
	var (
		spawned  [][]string
		exitCh   = make(chan struct{})
		exitOnce sync.Once
	)

	s := NewSupervisor(Config{
		Name:   "sleep",
		Binary: "/bin/sleep",
		Args:   []string{"60"},
		OnExit: func(int, error) { exitOnce.Do(func() { close(exitCh) }) },
	})
	s.command = func(name string, args ...string) *exec.Cmd {
		spawned = append(spawned, append([]string{name}, args...))
		return exec.Command(name, args...)
	}
	killer := &countingKill{}
	s.kill = killer.kill

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if len(spawned) != 1 {
		t.Fatalf("spawned %d processes, want 1", len(spawned))
	}
	if want := []string{"/bin/sleep", "60"}; !reflect.DeepEqual(spawned[0], want) {
		t.Errorf("spawned %v, want %v", spawned[0], want)
	}
	if s.Stats().PID == 0 {
		t.Fatal("process not running after Start()")
	}

	for i := 0; i < 3; i++ {
		if err := s.Stop(); err != nil {
			t.Fatalf("Stop() #%d error: %v", i+1, err)
		}
	}

	waitFor(t, exitCh, "OnExit")

	if got := killer.count(); got != 1 {
		t.Errorf("kill delivered %d times, want 1", got)
	}
	if pid := s.Stats().PID; pid != 0 {
		t.Errorf("Stats.PID = %d after Stop(), want 0", pid)
	}
	if s.Stats().Status != StatusStopped {
		t.Errorf("Stats.Status = %q, want %q", s.Stats().Status, StatusStopped)
	}
}

func TestSupervisor_ConcurrentStop(t *testing.T) {
	s := NewSupervisor(Config{Name: "sleep", Binary: "/bin/sleep", Args: []string{"60"}})
	killer := &countingKill{}
	s.kill = killer.kill

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop() //nolint:errcheck // Checked via state below
		}()
	}
	wg.Wait()

	if got := killer.count(); got != 1 {
		t.Errorf("kill delivered %d times, want 1", got)
	}
	if pid := s.Stats().PID; pid != 0 {
		t.Errorf("Stats.PID = %d after concurrent Stop(), want 0", pid)
	}
}

func TestSupervisor_StartAlreadyRunning(t *testing.T) {
	s := NewSupervisor(Config{Name: "test", Binary: "/bin/sleep", Args: []string{"10"}})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}
	defer s.Stop() //nolint:errcheck // Test cleanup

	err := s.Start(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestSupervisor_NaturalExitLogsCodeWithoutRestart(t *testing.T) {
	exitCh := make(chan int, 1)
	s := NewSupervisor(Config{
		Name:   "exit-3",
		Binary: "/bin/sh",
		Args:   []string{"-c", "exit 3"},
		OnExit: func(code int, _ error) { exitCh <- code },
	})
	spawns := 0
	s.command = func(name string, args ...string) *exec.Cmd {
		spawns++
		return exec.Command(name, args...)
	}
	killer := &countingKill{}
	s.kill = killer.kill

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	select {
	case code := <-exitCh:
		if code != 3 {
			t.Errorf("exit code = %d, want 3", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit")
	}

	if s.Stats().Status != StatusExited {
		t.Errorf("Stats.Status = %q, want %q", s.Stats().Status, StatusExited)
	}
	stats := s.Stats()
	if stats.ExitCode != 3 {
		t.Errorf("Stats.ExitCode = %d, want 3", stats.ExitCode)
	}
	if stats.LastError == "" {
		t.Error("Stats.LastError empty after non-zero exit")
	}

	// Handle is cleared, so Stop is a no-op.
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() after exit error = %v", err)
	}
	if killer.count() != 0 {
		t.Errorf("kill delivered %d times after natural exit, want 0", killer.count())
	}

	time.Sleep(100 * time.Millisecond)
	if spawns != 1 {
		t.Errorf("spawned %d times, want 1 (no restart)", spawns)
	}
}

func TestSupervisor_InheritsConfiguredStreams(t *testing.T) {
	var stdout bytes.Buffer
	exitCh := make(chan struct{})
	s := NewSupervisor(Config{
		Name:   "echo",
		Binary: "/bin/echo",
		Args:   []string{"hello from backend"},
		Stdout: &stdout,
		OnExit: func(int, error) { close(exitCh) },
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitFor(t, exitCh, "echo exit")

	if !strings.Contains(stdout.String(), "hello from backend") {
		t.Errorf("stdout = %q, want backend output", stdout.String())
	}
	if code := s.Stats().ExitCode; code != 0 {
		t.Errorf("Stats.ExitCode = %d, want 0", code)
	}
}

func TestSupervisor_ContextCancelKills(t *testing.T) {
	exitCh := make(chan struct{})
	s := NewSupervisor(Config{
		Name:   "sleep",
		Binary: "/bin/sleep",
		Args:   []string{"60"},
		OnExit: func(int, error) { close(exitCh) },
	})
	killer := &countingKill{}
	s.kill = killer.kill

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	cancel()
	waitFor(t, exitCh, "exit after cancel")

	if killer.count() != 1 {
		t.Errorf("kill delivered %d times, want 1", killer.count())
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() after cancel error = %v", err)
	}
	if killer.count() != 1 {
		t.Errorf("Stop() after cancel re-sent kill")
	}
}

func TestSupervisor_OnStartCallback(t *testing.T) {
	var gotPID int
	s := NewSupervisor(Config{
		Name:    "callback-test",
		Binary:  "/bin/sleep",
		Args:    []string{"60"},
		OnStart: func(pid int) { gotPID = pid },
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop() //nolint:errcheck // Test cleanup

	if pid := s.Stats().PID; gotPID == 0 || gotPID != pid {
		t.Errorf("OnStart pid = %d, Stats.PID = %d", gotPID, pid)
	}
}
