// WebUI Desktop - native shell for Open WebUI
//
// This is the main entry point for the desktop application. It starts the
// Open WebUI Python backend as a child process, opens a single webview
// window on the bundled UI and kills the backend when the window closes.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/webui-desktop/internal/desktop"
	"github.com/nerrad567/webui-desktop/internal/infrastructure/config"
	"github.com/nerrad567/webui-desktop/internal/infrastructure/database"
	"github.com/nerrad567/webui-desktop/internal/infrastructure/influxdb"
	"github.com/nerrad567/webui-desktop/internal/infrastructure/logging"
	"github.com/nerrad567/webui-desktop/internal/infrastructure/mqtt"
	"github.com/nerrad567/webui-desktop/internal/journal"
	"github.com/nerrad567/webui-desktop/internal/process"
	"github.com/nerrad567/webui-desktop/internal/resource"
	"github.com/nerrad567/webui-desktop/internal/shell"
	"github.com/nerrad567/webui-desktop/migrations"
)

// Version information - set at build time via ldflags
// Example: wails build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// platformRunner is the UI toolkit plus its event loop.
type platformRunner interface {
	shell.Platform
	Run(ctx context.Context, ready func(context.Context) error) error
}

// newPlatform builds the UI platform; swapped in tests.
var newPlatform = func(log *logging.Logger) platformRunner {
	return desktop.New(log.With("component", "desktop"))
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns when the event loop ends.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting WebUI Desktop",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := os.Getenv("WEBUI_DESKTOP_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "level", cfg.Logging.Level)

	var sinks []shell.EventSink
	var history shell.EventHistory
	health := make(map[string]shell.HealthChecker)

	// The journal and telemetry are optional; neither may keep the window
	// from opening.
	if cfg.Journal.Enabled {
		db, repo, err := openJournal(ctx, cfg.Journal, log)
		if err != nil {
			log.Warn("lifecycle journal disabled", "path", cfg.Journal.Path, "error", err)
		} else {
			defer func() {
				if closeErr := db.Close(); closeErr != nil {
					log.Error("error closing journal", "error", closeErr)
				}
			}()
			sinks = append(sinks, repo)
			history = repo
			health["journal"] = db
		}
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("lifecycle telemetry disabled", "error", err)
		} else {
			client.SetLogger(log.With("component", "mqtt"))
			defer func() {
				if closeErr := client.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			sinks = append(sinks, &mqttSink{client: client})
			health["mqtt"] = client
			log.Info("MQTT connected", "topic", client.Topics().Status())
		}
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			log.Warn("lifecycle metrics disabled", "url", cfg.InfluxDB.URL, "error", err)
		} else {
			metricsLog := log.With("component", "influxdb")
			client.SetOnError(func(err error) {
				metricsLog.Warn("lifecycle metrics write failed", "error", err)
			})
			defer func() {
				if closeErr := client.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			sinks = append(sinks, &influxSink{client: client})
			health["influxdb"] = client
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	resources, err := newResourceHandler(cfg, log)
	if err != nil {
		return err
	}

	var app *shell.App
	supervisor := process.NewSupervisor(process.Config{
		Name:    "open-webui",
		Binary:  cfg.Backend.Command,
		Args:    cfg.Backend.Args,
		Env:     cfg.Backend.Env,
		WorkDir: cfg.Backend.WorkDir,
		OnExit: func(exitCode int, err error) {
			app.BackendExited(exitCode, err)
		},
	})
	supervisor.SetLogger(log.With("component", "supervisor"))

	platform := newPlatform(log)

	app = shell.New(platform, supervisor, shell.Options{
		Scheme:    cfg.Resources.Scheme,
		Resources: resources,
		Window: shell.WindowOptions{
			Title:                   cfg.Window.Title,
			Width:                   cfg.Window.Width,
			Height:                  cfg.Window.Height,
			MinWidth:                cfg.Window.MinWidth,
			MinHeight:               cfg.Window.MinHeight,
			DisableContextIsolation: cfg.Window.Permissive,
			DisableWebSecurity:      cfg.Window.Permissive,
		},
		StartURL:   cfg.Window.StartURL,
		DevTools:   cfg.DevMode(os.Getenv),
		Probe:      probeConfig(cfg.Backend),
		Sinks:      sinks,
		History:    history,
		StreamAddr: cfg.StreamAddr(),
		Health:     health,
	})
	app.SetLogger(log.With("component", "shell"))
	log.Info("session started", "session", app.Session())

	runErr := platform.Run(ctx, app.Ready)
	app.Shutdown()

	if runErr != nil {
		return fmt.Errorf("running desktop: %w", runErr)
	}

	log.Info("WebUI Desktop stopped")
	return nil
}

// openJournal opens and migrates the journal database and prunes events
// past retention.
func openJournal(ctx context.Context, cfg config.JournalConfig, log *logging.Logger) (*database.DB, *journal.SQLiteRepository, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: time.Duration(cfg.BusyTimeout) * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Already failing
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	repo := journal.NewSQLiteRepository(db.DB)

	if cfg.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
		n, err := repo.Prune(ctx, cutoff)
		if err != nil {
			log.Warn("failed to prune lifecycle journal", "error", err)
		} else if n > 0 {
			log.Info("pruned lifecycle journal", "removed", n, "retention_days", cfg.RetentionDays)
		}
	}

	log.Info("lifecycle journal open", "path", db.Path())
	return db, repo, nil
}

// newResourceHandler serves <install-root>/build under the custom scheme.
func newResourceHandler(cfg *config.Config, log *logging.Logger) (http.Handler, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}

	resolver, err := resource.NewResolver(cfg.Resources.Scheme, cfg.ResourceRoot(exe))
	if err != nil {
		return nil, fmt.Errorf("creating resource resolver: %w", err)
	}
	log.Info("serving resources", "scheme", resolver.Scheme(), "root", resolver.Root())

	return resource.Handler(resolver, log.With("component", "resource"), resource.HandlerOptions{
		Permissive: cfg.Window.Permissive,
	}), nil
}

// probeConfig returns the readiness probe, or nil when no URL is set.
func probeConfig(cfg config.BackendConfig) *process.ProbeConfig {
	if cfg.ReadyURL == "" {
		return nil
	}
	return &process.ProbeConfig{
		URL:      cfg.ReadyURL,
		Interval: cfg.ReadyInterval,
		Timeout:  cfg.ReadyTimeout,
	}
}
