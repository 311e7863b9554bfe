// WebUI Packager - installer build tool for WebUI Desktop
//
// Usage:
//
//	webui-packager build --platform=win|mac|all [--debug]
//	webui-packager prepare
//	webui-packager sync-metadata
//
// Any failure is logged and the process exits with status 1.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/webui-desktop/internal/infrastructure/config"
	"github.com/nerrad567/webui-desktop/internal/infrastructure/logging"
	"github.com/nerrad567/webui-desktop/internal/packaging"
)

// Version information - set at build time via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// deps are the side-effecting collaborators; swapped in tests.
type deps struct {
	builder packaging.Builder
	runner  packaging.Runner
	stdout  io.Writer
	stderr  io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], deps{stdout: os.Stdout, stderr: os.Stderr}))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, d deps) int {
	cmd := newRootCmd(d)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(d deps) *cobra.Command {
	var (
		projectDir string
		logLevel   string
	)

	root := &cobra.Command{
		Use:           "webui-packager",
		Short:         "Build WebUI Desktop installers",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(d.stdout)
	root.SetErr(d.stderr)
	root.PersistentFlags().StringVar(&projectDir, "dir", ".", "project directory")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	logger := func() *logging.Logger {
		return logging.NewWithWriter(config.LoggingConfig{Level: logLevel, Format: "text"}, version, d.stderr).
			With("component", "packager")
	}

	root.AddCommand(
		newBuildCmd(d, &projectDir, logger),
		newPrepareCmd(d, &projectDir, logger),
		newSyncMetadataCmd(&projectDir, logger),
	)
	return root
}

func newBuildCmd(d deps, projectDir *string, logger func() *logging.Logger) *cobra.Command {
	var (
		platform string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build installers for the selected platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger()

			builder := d.builder
			if builder == nil {
				builder = newWailsBuilder(*projectDir, debug, d)
			}

			if err := packaging.Build(cmd.Context(), platform, builder, log); err != nil {
				log.Error("error building installer", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "all", "target platform: win, mac or all")
	cmd.Flags().BoolVar(&debug, "debug", false, "build with developer tools available (honours WEBUI_DESKTOP_ENV=development)")
	return cmd
}

// newWailsBuilder configures the real toolchain for the build command.
func newWailsBuilder(dir string, debug bool, d deps) *packaging.WailsBuilder {
	return &packaging.WailsBuilder{
		Dir:     dir,
		LDFlags: packaging.VersionLDFlags(version, commit, date),
		Debug:   debug,
		Stdout:  d.stdout,
		Stderr:  d.stderr,
	}
}

func newPrepareCmd(d deps, projectDir *string, logger func() *logging.Logger) *cobra.Command {
	var cfg packaging.PrepareConfig

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Recreate the bundled Python environment and installer icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger()

			runner := d.runner
			if runner == nil {
				runner = packaging.ExecRunner{Stdout: d.stdout, Stderr: d.stderr}
			}

			cfg.Root = *projectDir
			if err := packaging.Prepare(cmd.Context(), cfg, runner, log); err != nil {
				log.Error("error preparing environment", "error", err)
				return err
			}
			log.Info("environment prepared")
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Python, "python", "python3", "interpreter used to create the virtual environment")
	cmd.Flags().StringVar(&cfg.Requirements, "requirements", "backend/requirements.txt", "backend requirements file")
	cmd.Flags().StringVar(&cfg.IconSource, "icon", "src/assets/icon.png", "source icon")
	return cmd
}

func newSyncMetadataCmd(projectDir *string, logger func() *logging.Logger) *cobra.Command {
	var metadataPath, projectFile string

	cmd := &cobra.Command{
		Use:   "sync-metadata",
		Short: "Write installer metadata into wails.json",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			log := logger()

			meta, err := packaging.LoadMetadata(resolve(*projectDir, metadataPath))
			if err != nil {
				log.Error("error loading metadata", "error", err)
				return err
			}

			path := resolve(*projectDir, projectFile)
			changed, err := packaging.SyncProjectFile(path, meta)
			if err != nil {
				log.Error("error updating project file", "path", path, "error", err)
				return err
			}
			log.Info("project file synchronised", "path", path, "changed", changed)
			return nil
		},
	}
	cmd.Flags().StringVar(&metadataPath, "metadata", "installer.yaml", "installer metadata file")
	cmd.Flags().StringVar(&projectFile, "project", "wails.json", "wails project file")
	return cmd
}

// resolve joins p onto dir unless p is absolute.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
