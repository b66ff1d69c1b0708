// Package config handles reading and writing .stocklens/config.yaml and
// applying STOCKLENS_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"hermannm.dev/wrap"

	stlog "github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// Config is the top-level structure for .stocklens/config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Polling PollingConfig `yaml:"polling"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig locates the NL query backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PollingConfig bounds how long a query is polled.
type PollingConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	IntervalMs  int `yaml:"interval_ms"`
}

// DisplayConfig controls terminal rendering.
type DisplayConfig struct {
	MaxRows    int `yaml:"max_rows"`
	ChartWidth int `yaml:"chart_width"`
}

// LoggingConfig controls diagnostics and the event log.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Events bool   `yaml:"events"` // append lifecycle events to log.jsonl
}

// envOverrides mirrors the settings that may be overridden from the
// environment. Unset variables leave the file value in place.
type envOverrides struct {
	APIURL          *string `env:"API_URL"`
	APIToken        *string `env:"API_TOKEN"`
	PollMaxAttempts *int    `env:"POLL_MAX_ATTEMPTS"`
	PollIntervalMs  *int    `env:"POLL_INTERVAL_MS"`
	LogLevel        *string `env:"LOG_LEVEL"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STOCKLENS_"

const configFile = "config.yaml"

// Path returns the config file path for the project rooted at dir.
func Path(dir string) string {
	return filepath.Join(dir, stlog.StateDir, configFile)
}

// ReadConfig reads .stocklens/config.yaml from the given project directory.
// dir is the project root (not .stocklens/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to .stocklens/config.yaml in the given project directory.
// Creates the .stocklens/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, stlog.StateDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Load reads the project config if present, falls back to defaults
// otherwise, then applies a .env file from dir and STOCKLENS_* variables.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, wrap.Error(err, "failed to load .env file")
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays STOCKLENS_* environment variables onto cfg.
func (cfg *Config) ApplyEnv() error {
	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, env.Options{Prefix: EnvPrefix}); err != nil {
		return wrap.Error(err, "failed to parse environment overrides")
	}

	if overrides.APIURL != nil {
		cfg.API.BaseURL = *overrides.APIURL
	}
	if overrides.APIToken != nil {
		cfg.API.Token = *overrides.APIToken
	}
	if overrides.PollMaxAttempts != nil {
		cfg.Polling.MaxAttempts = *overrides.PollMaxAttempts
	}
	if overrides.PollIntervalMs != nil {
		cfg.Polling.IntervalMs = *overrides.PollIntervalMs
	}
	if overrides.LogLevel != nil {
		cfg.Logging.Level = *overrides.LogLevel
	}
	return nil
}

// Validate reports every invalid setting at once.
func (cfg *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", cfg.API.BaseURL))
	}
	if cfg.API.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("api.timeout_seconds must not be negative, got %d", cfg.API.TimeoutSeconds))
	}
	if cfg.Polling.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("polling.max_attempts must be at least 1, got %d", cfg.Polling.MaxAttempts))
	}
	if cfg.Polling.IntervalMs < 0 {
		errs = append(errs, fmt.Errorf("polling.interval_ms must not be negative, got %d", cfg.Polling.IntervalMs))
	}
	if _, err := stlog.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, wrap.Error(err, "logging.level"))
	}

	if len(errs) > 0 {
		return wrap.Errors("invalid config", errs...)
	}
	return nil
}

// PollOptions converts the polling settings for the query client.
func (cfg *Config) PollOptions() nlquery.PollOptions {
	return nlquery.PollOptions{
		MaxAttempts: cfg.Polling.MaxAttempts,
		Interval:    time.Duration(cfg.Polling.IntervalMs) * time.Millisecond,
	}
}

// HTTPTimeout returns the per-request timeout.
func (cfg *Config) HTTPTimeout() time.Duration {
	if cfg.API.TimeoutSeconds == 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.API.TimeoutSeconds) * time.Second
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:        "http://localhost:3001",
			Token:          nlquery.DefaultToken,
			TimeoutSeconds: 30,
		},
		Polling: PollingConfig{
			MaxAttempts: nlquery.DefaultMaxAttempts,
			IntervalMs:  int(nlquery.DefaultInterval / time.Millisecond),
		},
		Display: DisplayConfig{
			MaxRows:    50,
			ChartWidth: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Events: true,
		},
	}
}
