package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nerrad567/webui-desktop/internal/packaging"
)

type fakeBuilder struct {
	built  []string
	failOn string
}

func (b *fakeBuilder) Build(_ context.Context, target packaging.Target) error {
	b.built = append(b.built, target.Name)
	if target.Name == b.failOn {
		return errors.New("toolchain failed")
	}
	return nil
}

type fakeRunner struct {
	calls int
	err   error
}

func (r *fakeRunner) Run(context.Context, string, string, ...string) error {
	r.calls++
	return r.err
}

func TestRun_Build(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		failOn    string
		wantCode  int
		wantBuilt []string
	}{
		{"windows", []string{"build", "--platform=win"}, "", 0, []string{"win"}},
		{"mac", []string{"build", "--platform=mac"}, "", 0, []string{"mac"}},
		{"all", []string{"build", "--platform=all"}, "", 0, []string{"win", "mac"}},
		{"default all", []string{"build"}, "", 0, []string{"win", "mac"}},
		{"build failure exits non-zero", []string{"build", "--platform=all"}, "win", 1, []string{"win"}},
		{"unknown platform exits non-zero", []string{"build", "--platform=linux"}, "", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := &fakeBuilder{failOn: tt.failOn}
			var stderr bytes.Buffer

			code := run(context.Background(), tt.args, deps{builder: builder, stdout: &bytes.Buffer{}, stderr: &stderr})

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if !reflect.DeepEqual(builder.built, tt.wantBuilt) {
				t.Errorf("built = %v, want %v", builder.built, tt.wantBuilt)
			}
			if tt.wantCode != 0 && strings.Count(stderr.String(), "error building installer") != 1 {
				t.Errorf("failure not logged exactly once: %q", stderr.String())
			}
		})
	}
}

func TestNewWailsBuilder(t *testing.T) {
	b := newWailsBuilder("proj", true, deps{})
	if b.Dir != "proj" || !b.Debug {
		t.Errorf("builder = %+v", b)
	}
	args := b.Args(packaging.TargetMac)
	if args[len(args)-1] != "-debug" {
		t.Errorf("Args() = %v, want -debug", args)
	}

	if newWailsBuilder("proj", false, deps{}).Debug {
		t.Error("Debug set without --debug")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code := run(context.Background(), []string{"publish"}, deps{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestRun_Prepare(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src", "assets"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "assets", "icon.png"), []byte("PNG"), 0o600); err != nil {
		t.Fatalf("writing icon: %v", err)
	}

	runner := &fakeRunner{}
	code := run(context.Background(), []string{"prepare", "--dir", dir}, deps{runner: runner, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if runner.calls != 4 {
		t.Errorf("runner called %d times, want 4", runner.calls)
	}
	if _, err := os.Stat(filepath.Join(dir, "assets", "icon.icns")); err != nil {
		t.Errorf("icon not prepared: %v", err)
	}

	failing := &fakeRunner{err: errors.New("pip failed")}
	code = run(context.Background(), []string{"prepare", "--dir", dir}, deps{runner: failing, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if code != 1 {
		t.Errorf("exit code = %d, want 1 on failure", code)
	}
	if failing.calls != 1 {
		t.Errorf("runner continued after failure: %d calls", failing.calls)
	}
}

func TestRun_SyncMetadata(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "installer.yaml"), []byte("version: 1.0.0\n"), 0o600); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wails.json"), []byte(`{"name":"x"}`), 0o600); err != nil {
		t.Fatalf("writing project: %v", err)
	}

	code := run(context.Background(), []string{"sync-metadata", "--dir", dir}, deps{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	data, err := os.ReadFile(filepath.Join(dir, "wails.json"))
	if err != nil {
		t.Fatalf("reading project: %v", err)
	}
	if !strings.Contains(string(data), `"productVersion":"1.0.0"`) {
		t.Errorf("wails.json = %s", data)
	}

	code = run(context.Background(), []string{"sync-metadata", "--dir", filepath.Join(dir, "missing")}, deps{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if code != 1 {
		t.Errorf("exit code = %d, want 1 for missing metadata", code)
	}
}

func TestResolve(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "etc", "installer.yaml")
	if got := resolve("proj", abs); got != abs {
		t.Errorf("resolve(abs) = %q", got)
	}
	if got := resolve("proj", "wails.json"); got != filepath.Join("proj", "wails.json") {
		t.Errorf("resolve(rel) = %q", got)
	}
}
