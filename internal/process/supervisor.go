package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Status represents the current state of the supervised process.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
	StatusExited  Status = "exited"
	StatusFailed  Status = "failed"
)

// Config holds configuration for the supervised subprocess.
type Config struct {
	// Name is a human-readable identifier for logging.
	Name string

	// Binary is the executable (or interpreter) to launch. Looked up in PATH.
	Binary string

	// Args are passed verbatim; there is no shell expansion.
	Args []string

	// Env are additional environment variables (key=value format).
	// If nil, inherits from parent process.
	Env []string

	// WorkDir is the working directory for the process.
	// If empty, inherits from parent process.
	WorkDir string

	// Stdin, Stdout and Stderr default to the shell's own streams so the
	// backend's output reaches the operator's console uncaptured.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// OnStart is called after a successful spawn.
	OnStart func(pid int)

	// OnExit is called once per spawned process after it has exited and the
	// handle has been cleared. exitCode is -1 when the process was killed by
	// a signal.
	OnExit func(exitCode int, err error)
}

// Logger defines the logging interface for the supervisor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Supervisor owns at most one live backend process handle.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Stop delivers the kill at most once per spawned process.
type Supervisor struct {
	config Config
	logger Logger

	// command builds the child; swapped in tests.
	command func(name string, args ...string) *exec.Cmd
	// kill terminates the child and its descendants; swapped in tests.
	kill func(p *os.Process) error

	mu        sync.RWMutex
	cmd       *exec.Cmd
	status    Status
	killed    bool
	ready     bool
	exitCode  int
	lastError error
	startTime time.Time
	done      chan struct{}
}

// NewSupervisor creates a supervisor for the given command. Nothing is
// spawned until Start.
func NewSupervisor(cfg Config) *Supervisor {
	if cfg.Name == "" {
		cfg.Name = "backend"
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	return &Supervisor{
		config:   cfg,
		logger:   noopLogger{},
		command:  exec.Command,
		kill:     killTree,
		status:   StatusStopped,
		exitCode: -1,
	}
}

// SetLogger sets the logger for the supervisor.
func (s *Supervisor) SetLogger(logger Logger) {
	s.logger = logger
}

// Start spawns the process and begins monitoring it.
//
// A spawn failure is logged, recorded as StatusFailed and returned wrapped in
// ErrSpawnFailed. Cancelling ctx later hard-kills the process as Stop would.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("starting %s: %w", s.config.Name, err)
	}

	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, s.config.Name, s.cmd.Process.Pid)
	}

	s.logger.Info("starting process",
		"name", s.config.Name,
		"binary", s.config.Binary,
		"args", s.config.Args,
	)

	cmd := s.command(s.config.Binary, s.config.Args...)
	cmd.Stdin = s.config.Stdin
	cmd.Stdout = s.config.Stdout
	cmd.Stderr = s.config.Stderr
	if s.config.Env != nil {
		cmd.Env = append(os.Environ(), s.config.Env...)
	}
	if s.config.WorkDir != "" {
		cmd.Dir = s.config.WorkDir
	}
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		s.status = StatusFailed
		s.lastError = err
		s.mu.Unlock()

		s.logger.Error("failed to start process",
			"name", s.config.Name,
			"binary", s.config.Binary,
			"error", err,
		)
		return fmt.Errorf("%w: %s: %w", ErrSpawnFailed, s.config.Name, err)
	}

	done := make(chan struct{})
	s.cmd = cmd
	s.done = done
	s.status = StatusRunning
	s.killed = false
	s.ready = false
	s.exitCode = -1
	s.lastError = nil
	s.startTime = time.Now()
	pid := cmd.Process.Pid
	s.mu.Unlock()

	s.logger.Info("process started", "name", s.config.Name, "pid", pid)

	if s.config.OnStart != nil {
		s.config.OnStart(pid)
	}

	go s.monitor(ctx, cmd, done)

	return nil
}

// monitor waits for the process to exit, records the result and clears the
// handle. There is no restart.
func (s *Supervisor) monitor(ctx context.Context, cmd *exec.Cmd, done chan struct{}) {
	defer close(done)

	exitCh := make(chan error, 1)
	go func() {
		exitCh <- cmd.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-exitCh:
	case <-ctx.Done():
		s.logger.Info("context cancelled, stopping process", "name", s.config.Name)
		s.terminate(cmd)
		waitErr = <-exitCh
	}

	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	s.mu.Lock()
	if s.cmd == cmd {
		s.cmd = nil
	}
	requested := s.killed
	s.exitCode = code
	s.ready = false
	if requested {
		s.status = StatusStopped
	} else {
		s.status = StatusExited
		s.lastError = waitErr
	}
	s.mu.Unlock()

	if requested {
		s.logger.Info("process stopped", "name", s.config.Name, "pid", cmd.Process.Pid)
	} else {
		s.logger.Warn("process exited",
			"name", s.config.Name,
			"pid", cmd.Process.Pid,
			"exit_code", code,
			"error", waitErr,
		)
	}

	if s.config.OnExit != nil {
		s.config.OnExit(code, waitErr)
	}
}

// terminate delivers the kill for cmd unless one was already sent.
// It reports whether this call sent it.
func (s *Supervisor) terminate(cmd *exec.Cmd) bool {
	s.mu.Lock()
	if s.cmd != cmd || s.killed {
		s.mu.Unlock()
		return false
	}
	s.killed = true
	s.mu.Unlock()

	pid := cmd.Process.Pid
	s.logger.Info("killing process", "name", s.config.Name, "pid", pid)

	if err := s.kill(cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Warn("failed to kill process", "name", s.config.Name, "pid", pid, "error", err)
	}
	return true
}

// Stop hard-kills the process and waits for the monitor to observe the exit.
// It is a no-op when no process handle is held, and repeated calls never
// signal the same process twice.
func (s *Supervisor) Stop() error {
	s.mu.RLock()
	cmd := s.cmd
	done := s.done
	s.mu.RUnlock()

	if cmd == nil {
		return nil
	}

	s.terminate(cmd)

	<-done
	return nil
}

// Stats returns statistics about the supervised process.
type Stats struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	PID       int           `json:"pid,omitempty"`
	Uptime    time.Duration `json:"uptime,omitempty"`
	ExitCode  int           `json:"exit_code"`
	Ready     bool          `json:"ready"`
	LastError string        `json:"last_error,omitempty"`
}

// Stats returns current statistics for the process.
func (s *Supervisor) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Name:     s.config.Name,
		Status:   s.status,
		ExitCode: s.exitCode,
		Ready:    s.ready,
	}

	if s.cmd != nil && s.cmd.Process != nil {
		stats.PID = s.cmd.Process.Pid
		stats.Uptime = time.Since(s.startTime)
	}

	if s.lastError != nil {
		stats.LastError = s.lastError.Error()
	}

	return stats
}
