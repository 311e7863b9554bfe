package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DevModeValue is the value of the dev-mode environment variable that
// enables developer tooling in the window.
const DevModeValue = "development"

// Config is the root configuration structure for the desktop shell.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Window    WindowConfig    `yaml:"window"`
	Resources ResourcesConfig `yaml:"resources"`
	Stream    StreamConfig    `yaml:"stream"`
	Journal   JournalConfig   `yaml:"journal"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BackendConfig describes the supervised backend process.
type BackendConfig struct {
	// Command is the interpreter or executable to launch.
	Command string `yaml:"command"`

	// Args are passed verbatim to Command.
	Args []string `yaml:"args"`

	// WorkDir is the working directory for the backend.
	// If empty, inherits from the shell.
	WorkDir string `yaml:"work_dir"`

	// Env holds extra KEY=value pairs appended to the shell's environment.
	Env []string `yaml:"env"`

	// ReadyURL, when set, is polled in the background after spawn.
	// The window never waits for it.
	ReadyURL string `yaml:"ready_url"`

	// ReadyInterval is the delay between readiness polls.
	ReadyInterval time.Duration `yaml:"ready_interval"`

	// ReadyTimeout bounds the readiness probe. 0 means no limit.
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
}

// WindowConfig contains the fixed window geometry and content settings.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`

	// StartURL is the custom-scheme URL loaded into the window.
	StartURL string `yaml:"start_url"`

	// DevModeEnv names the environment variable that, when set to
	// "development", opens developer tooling on window creation.
	DevModeEnv string `yaml:"dev_mode_env"`

	// Permissive disables content isolation and web security for the
	// loaded UI so it can reach host-side bridging freely.
	Permissive bool `yaml:"permissive"`
}

// ResourcesConfig locates the bundled UI assets served under the custom scheme.
type ResourcesConfig struct {
	Scheme string `yaml:"scheme"`

	// InstallRoot is the application install directory.
	// If empty, the directory containing the executable is used.
	InstallRoot string `yaml:"install_root"`

	// Dir is the assets directory relative to InstallRoot.
	Dir string `yaml:"dir"`
}

// StreamConfig controls the live lifecycle event stream. The webview's
// asset server cannot carry WebSockets, so the stream gets its own
// loopback listener.
type StreamConfig struct {
	Enabled bool `yaml:"enabled"`

	// Addr is a loopback host:port; port 0 picks a free port.
	Addr string `yaml:"addr"`
}

// JournalConfig contains lifecycle journal (SQLite) settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays prunes older events at startup. 0 keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// MQTTConfig contains optional lifecycle telemetry broker settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings. The first
// connect fails fast; MaxDelay caps the background reconnect backoff.
type MQTTReconnectConfig struct {
	MaxDelay int `yaml:"max_delay"`
}

// InfluxDBConfig contains optional lifecycle metrics settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: WEBUI_DESKTOP_SECTION_KEY
// For example: WEBUI_DESKTOP_BACKEND_COMMAND, WEBUI_DESKTOP_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig mirrors the shipped installer metadata: a 1200x800 window,
// never smaller than 800x600, backed by `python -m open_webui.main`.
func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Command:       "python",
			Args:          []string{"-m", "open_webui.main"},
			ReadyInterval: 500 * time.Millisecond,
			ReadyTimeout:  2 * time.Minute,
		},
		Window: WindowConfig{
			Title:      "Open WebUI",
			Width:      1200,
			Height:     800,
			MinWidth:   800,
			MinHeight:  600,
			StartURL:   "app://index.html",
			DevModeEnv: "WEBUI_DESKTOP_ENV",
			Permissive: true,
		},
		Resources: ResourcesConfig{
			Scheme: "app",
			Dir:    "build",
		},
		Stream: StreamConfig{
			Enabled: true,
			Addr:    "127.0.0.1:0",
		},
		Journal: JournalConfig{
			Enabled:       true,
			Path:          defaultJournalPath(),
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "webui-desktop",
			},
			QoS:         1,
			TopicPrefix: "webui-desktop",
			Reconnect: MQTTReconnectConfig{
				MaxDelay: 60,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "webui-desktop",
			Bucket:        "lifecycle",
			BatchSize:     20,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// defaultJournalPath places the journal under the user's config directory,
// falling back to the working directory when none is available.
func defaultJournalPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "data", "journal.db")
	}
	return filepath.Join(dir, "webui-desktop", "journal.db")
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Backend
	if v := os.Getenv("WEBUI_DESKTOP_BACKEND_COMMAND"); v != "" {
		cfg.Backend.Command = v
	}
	if v := os.Getenv("WEBUI_DESKTOP_BACKEND_READY_URL"); v != "" {
		cfg.Backend.ReadyURL = v
	}

	// Resources
	if v := os.Getenv("WEBUI_DESKTOP_INSTALL_ROOT"); v != "" {
		cfg.Resources.InstallRoot = v
	}

	// Journal
	if v := os.Getenv("WEBUI_DESKTOP_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// MQTT
	if v := os.Getenv("WEBUI_DESKTOP_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("WEBUI_DESKTOP_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("WEBUI_DESKTOP_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("WEBUI_DESKTOP_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("WEBUI_DESKTOP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Backend.Command == "" {
		errs = append(errs, "backend.command is required")
	}
	if c.Backend.ReadyURL != "" && c.Backend.ReadyInterval <= 0 {
		errs = append(errs, "backend.ready_interval must be positive when ready_url is set")
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, "window.width and window.height must be positive")
	}
	if c.Window.MinWidth > c.Window.Width || c.Window.MinHeight > c.Window.Height {
		errs = append(errs, "window minimum size must not exceed the initial size")
	}
	if c.Resources.Scheme == "" {
		errs = append(errs, "resources.scheme is required")
	} else if !strings.HasPrefix(c.Window.StartURL, c.Resources.Scheme+"://") {
		errs = append(errs, "window.start_url must use the resources.scheme")
	}
	if c.Resources.Dir == "" {
		errs = append(errs, "resources.dir is required")
	}

	if c.Stream.Enabled && !isLoopbackAddr(c.Stream.Addr) {
		errs = append(errs, "stream.addr must be a loopback host:port")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DevMode reports whether developer tooling should open, given a lookup
// function such as os.Getenv.
func (c *Config) DevMode(getenv func(string) string) bool {
	if c.Window.DevModeEnv == "" {
		return false
	}
	return getenv(c.Window.DevModeEnv) == DevModeValue
}

// ResourceRoot returns the directory served under the custom scheme:
// <install-root>/<dir>. executable is used when no install root is configured.
func (c *Config) ResourceRoot(executable string) string {
	root := c.Resources.InstallRoot
	if root == "" {
		root = filepath.Dir(executable)
	}
	return filepath.Join(root, c.Resources.Dir)
}

// StreamAddr returns the event stream listen address, or "" when the
// stream is disabled.
func (c *Config) StreamAddr() string {
	if !c.Stream.Enabled {
		return ""
	}
	return c.Stream.Addr
}

func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
