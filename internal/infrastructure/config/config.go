// Package config loads and saves the workspace configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/goalgenie/pkg/storage"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the workspace directory.
const FileName = "config.yaml"

// Storage backends.
const (
	StorageFilesystem = "filesystem"
	StorageSQLite     = "sqlite"
)

// ErrUnknownKey is returned by Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown config key")

// Config holds provider, storage and dashboard settings.
type Config struct {
	Provider     string          `yaml:"provider"`
	Model        string          `yaml:"model"`
	MaxRetries   int             `yaml:"max_retries"`
	RetryDelayMs int             `yaml:"retry_delay_ms"`
	TimeoutSec   int             `yaml:"timeout_sec"`
	Storage      string          `yaml:"storage"`
	LogLevel     string          `yaml:"log_level"`
	Dashboard    DashboardConfig `yaml:"dashboard"`
	Webhooks     []WebhookConfig `yaml:"webhooks,omitempty"`
}

// DashboardConfig configures the HTTP dashboard.
type DashboardConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// WebhookConfig is one outgoing progress notification endpoint. An empty
// Events list subscribes to every event.
type WebhookConfig struct {
	Name         string   `yaml:"name"`
	URL          string   `yaml:"url"`
	Secret       string   `yaml:"secret,omitempty"`
	Events       []string `yaml:"events,omitempty"`
	MaxRetries   *int     `yaml:"max_retries,omitempty"`
	RetryDelayMs int      `yaml:"retry_delay_ms,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Provider:     "gemini",
		Model:        "gemini-2.0-flash",
		MaxRetries:   2,
		RetryDelayMs: 1000,
		TimeoutSec:   300,
		Storage:      StorageFilesystem,
		LogLevel:     "info",
		Dashboard: DashboardConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"http://localhost:5000"},
		},
	}
}

// Load reads the workspace config under root. A missing file yields the
// defaults; fields absent from the file keep their default value.
func Load(root string) (*Config, error) {
	path, err := storage.NewFilesystemRepository(root).ResolvePath(FileName)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the workspace under root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path, err := storage.NewFilesystemRepository(root).ResolvePath(FileName)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Validate rejects unknown storage backends and log levels, negative limits
// and webhook endpoints that are not http(s) URLs.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFilesystem, StorageSQLite:
	default:
		return fmt.Errorf("invalid storage %q: want %s or %s", c.Storage, StorageFilesystem, StorageSQLite)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxRetries < 0 || c.RetryDelayMs < 0 || c.TimeoutSec < 0 {
		return fmt.Errorf("retry and timeout settings must not be negative")
	}
	for i, w := range c.Webhooks {
		u, err := url.Parse(w.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook %d (%s): url must be an absolute http(s) URL", i, w.Name)
		}
		if (w.MaxRetries != nil && *w.MaxRetries < 0) || w.RetryDelayMs < 0 {
			return fmt.Errorf("webhook %d (%s): retry settings must not be negative", i, w.Name)
		}
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// setters maps dotted keys to field assignments for `config set`.
var setters = map[string]func(*Config, string) error{
	"provider": func(c *Config, v string) error { c.Provider = v; return nil },
	"model":    func(c *Config, v string) error { c.Model = v; return nil },
	"max_retries": func(c *Config, v string) error {
		return setInt(&c.MaxRetries, v)
	},
	"retry_delay_ms": func(c *Config, v string) error {
		return setInt(&c.RetryDelayMs, v)
	},
	"timeout_sec": func(c *Config, v string) error {
		return setInt(&c.TimeoutSec, v)
	},
	"storage":        func(c *Config, v string) error { c.Storage = v; return nil },
	"log_level":      func(c *Config, v string) error { c.LogLevel = v; return nil },
	"dashboard.addr": func(c *Config, v string) error { c.Dashboard.Addr = v; return nil },
	"dashboard.allowed_origins": func(c *Config, v string) error {
		c.Dashboard.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Dashboard.AllowedOrigins = append(c.Dashboard.AllowedOrigins, origin)
			}
		}
		return nil
	},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", v)
	}
	*dst = n
	return nil
}

// Set assigns value to the dotted key and validates the result.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s (known keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return c.Validate()
}

// Keys lists the keys accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
