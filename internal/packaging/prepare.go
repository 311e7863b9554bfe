package packaging

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Runner executes one external command.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with the packager's stdio.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes name with args in dir.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = orDefault(r.Stderr, os.Stderr)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}

// PrepareConfig describes the project layout.
type PrepareConfig struct {
	// Root is the project directory. Every other path is relative to it.
	Root string

	// Python creates the virtual environment. Defaults to "python3".
	Python string

	// Requirements is the backend requirements file.
	Requirements string

	// IconSource is copied to the installer icon paths.
	IconSource string

	// GOOS selects the venv layout. Defaults to the host.
	GOOS string
}

func (c PrepareConfig) withDefaults() PrepareConfig {
	if c.Root == "" {
		c.Root = "."
	}
	if c.Python == "" {
		c.Python = "python3"
	}
	if c.Requirements == "" {
		c.Requirements = filepath.Join("backend", "requirements.txt")
	}
	if c.IconSource == "" {
		c.IconSource = filepath.Join("src", "assets", "icon.png")
	}
	if c.GOOS == "" {
		c.GOOS = runtime.GOOS
	}
	return c
}

// Layout constants relative to the project root.
const (
	pythonDir = "python"
	assetsDir = "assets"
)

// VenvDir returns the virtual environment path relative to the root.
func VenvDir() string {
	return filepath.Join(pythonDir, "venv")
}

// PipPath returns the venv's pip relative to the root for goos.
func PipPath(goos string) string {
	if goos == "windows" {
		return filepath.Join(VenvDir(), "Scripts", "pip.exe")
	}
	return filepath.Join(VenvDir(), "bin", "pip")
}

// Prepare rebuilds python/venv and assets/ under cfg.Root. It stops at the
// first failing step.
func Prepare(ctx context.Context, cfg PrepareConfig, runner Runner, logger Logger) error {
	cfg = cfg.withDefaults()
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("%w: resolving root: %w", ErrPrepareFailed, err)
	}
	cfg.Root = root

	for _, dir := range []string{pythonDir, assetsDir} {
		if err := os.RemoveAll(filepath.Join(cfg.Root, dir)); err != nil {
			return fmt.Errorf("%w: cleaning %s: %w", ErrPrepareFailed, dir, err)
		}
	}

	pip := filepath.Join(cfg.Root, PipPath(cfg.GOOS))
	steps := []struct {
		desc string
		name string
		args []string
	}{
		{"creating virtual environment", cfg.Python, []string{"-m", "venv", "--clear", VenvDir()}},
		{"upgrading pip", pip, []string{"install", "--upgrade", "pip"}},
		{"installing backend requirements", pip, []string{"install", "-r", cfg.Requirements}},
		{"installing project package", pip, []string{"install", "."}},
	}

	for _, step := range steps {
		logger.Info(step.desc)
		if err := runner.Run(ctx, cfg.Root, step.name, step.args...); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPrepareFailed, step.desc, err)
		}
	}

	logger.Info("refreshing installer icons")
	if err := prepareIcons(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrPrepareFailed, err)
	}
	return nil
}

// prepareIcons copies the source PNG to assets/icon.ico and assets/icon.icns.
func prepareIcons(cfg PrepareConfig) error {
	dir := filepath.Join(cfg.Root, assetsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", assetsDir, err)
	}

	src := filepath.Join(cfg.Root, cfg.IconSource)
	for _, name := range []string{"icon.ico", "icon.icns"} {
		if err := copyFile(src, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening icon: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(dst), err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck // Already failing
		return fmt.Errorf("copying to %s: %w", filepath.Base(dst), err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(dst), err)
	}
	return nil
}
