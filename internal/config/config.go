// Package config loads and validates the taskflow configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
)

// Config represents the application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Debounce  DebounceConfig  `yaml:"debounce"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Feed      FeedConfig      `yaml:"feed"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig locates the SQLite item store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP surface in serve mode.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DebounceConfig holds the two debounce windows the reducer schedules.
type DebounceConfig struct {
	Resort Duration `yaml:"resort"` // UI affordance before completed rows sink
	Edit   Duration `yaml:"edit"`   // per-item persistence lag after an edit
}

// ReconcileConfig controls the periodic durable-mirror reconciliation job.
type ReconcileConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
}

// FeedConfig configures the optional NATS change feed.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// Duration is a time.Duration with YAML string parsing ("100ms", "1m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration from the specified file, expanding environment
// variables in the YAML content. A missing .env file is not an error.
func Load(configPath string) (*Config, error) {
	// Existing process environment is not overridden.
	if err := godotenv.Load(".env", ".env.local"); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, ferrors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read config file").
			WithContext("path", configPath).
			Build()
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "unmarshal config").
			WithContext("path", configPath).
			Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "./taskflow.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Debounce.Resort == 0 {
		c.Debounce.Resort = Duration(100 * time.Millisecond)
	}
	if c.Debounce.Edit == 0 {
		c.Debounce.Edit = Duration(500 * time.Millisecond)
	}
	if c.Reconcile.Interval == 0 {
		c.Reconcile.Interval = Duration(time.Minute)
	}
	if c.Feed.Subject == "" {
		c.Feed.Subject = "taskflow.items"
	}
	if c.Feed.NATSURL == "" {
		c.Feed.NATSURL = "nats://127.0.0.1:4222"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Debounce.Resort.Std() <= 0 {
		return ferrors.ConfigError("debounce.resort must be > 0").Build()
	}
	if c.Debounce.Edit.Std() <= 0 {
		return ferrors.ConfigError("debounce.edit must be > 0").Build()
	}
	if c.Reconcile.Enabled && c.Reconcile.Interval.Std() < time.Second {
		return ferrors.ConfigError("reconcile.interval must be at least 1s").
			WithContext("interval", c.Reconcile.Interval.Std().String()).
			Build()
	}
	if c.Feed.Enabled && c.Feed.NATSURL == "" {
		return ferrors.ConfigError("feed.nats_url is required when the feed is enabled").Build()
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ferrors.ConfigError("logging.level must be one of debug, info, warn, error").
			WithContext("level", c.Logging.Level).
			Build()
	}
	return nil
}

// ParseLogLevel maps a configured level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, ferrors.ConfigError("unknown log level").
			WithContext("level", level).
			Build()
	}
}

const exampleConfig = `# taskflow configuration
database:
  path: ./taskflow.db

server:
  addr: ":8080"

debounce:
  resort: 100ms
  edit: 500ms

reconcile:
  enabled: true
  interval: 1m

# Optional NATS change feed; disabled by default.
feed:
  enabled: false
  nats_url: nats://127.0.0.1:4222
  subject: taskflow.items

logging:
  level: info
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
