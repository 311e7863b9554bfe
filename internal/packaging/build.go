package packaging

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Logger defines the logging interface for packaging. Failures are
// returned, not logged; the caller reports them once.
type Logger interface {
	Info(msg string, args ...any)
}

// Builder produces the installer for one target.
type Builder interface {
	Build(ctx context.Context, target Target) error
}

// Build builds the installers selected by platform, in order, and stops at
// the first failure.
func Build(ctx context.Context, platform string, builder Builder, logger Logger) error {
	targets, err := ParsePlatform(platform)
	if err != nil {
		return err
	}

	for _, target := range targets {
		logger.Info("building installer", "target", target.Name, "platform", target.Platform)
		if err := builder.Build(ctx, target); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBuildFailed, target.Name, err)
		}
		logger.Info("installer built", "target", target.Name)
	}
	return nil
}

// WailsBuilder runs `wails build` for each target.
type WailsBuilder struct {
	// Binary is the wails executable. Defaults to "wails".
	Binary string

	// Dir is the project directory containing wails.json.
	Dir string

	// LDFlags are passed through to the Go linker.
	LDFlags string

	// Debug builds with -debug so the web inspector can open.
	Debug bool

	// Stdout and Stderr default to the packager's own streams.
	Stdout io.Writer
	Stderr io.Writer

	// command builds the child; swapped in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Args returns the wails command line for target.
func (b *WailsBuilder) Args(target Target) []string {
	args := []string{"build", "-clean", "-platform", target.Platform}
	if b.LDFlags != "" {
		args = append(args, "-ldflags", b.LDFlags)
	}
	if b.Debug {
		args = append(args, "-debug")
	}
	if target.NSIS {
		args = append(args, "-nsis")
	}
	return args
}

// Build runs the wails toolchain for target with inherited output.
func (b *WailsBuilder) Build(ctx context.Context, target Target) error {
	binary := b.Binary
	if binary == "" {
		binary = "wails"
	}
	command := b.command
	if command == nil {
		command = exec.CommandContext
	}

	cmd := command(ctx, binary, b.Args(target)...)
	cmd.Dir = b.Dir
	cmd.Stdout = orDefault(b.Stdout, os.Stdout)
	cmd.Stderr = orDefault(b.Stderr, os.Stderr)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", binary, cmd.Args[1:], err)
	}
	return nil
}

// VersionLDFlags stamps version information into the desktop binary's
// main package.
func VersionLDFlags(version, commit, date string) string {
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
