// Package config handles configuration and cookie management for campuschat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/diogo/campuschat/internal/models"
)

// EndpointEnv overrides the configured chat endpoint when set
const EndpointEnv = "CAMPUSCHAT_ENDPOINT"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	Endpoint string `json:"endpoint"`
	// RequestTimeout bounds connecting and waiting for response headers, in seconds.
	RequestTimeout int `json:"request_timeout"`
	// IdleTimeout fails a stream that sends nothing for this many seconds.
	// Zero disables it.
	IdleTimeout int `json:"idle_timeout"`
	// FlushTrailingLine applies a final stream line that has no newline.
	FlushTrailingLine bool `json:"flush_trailing_line"`
	// Verbose forces debug logging regardless of LogLevel.
	Verbose         bool           `json:"verbose"`
	LogLevel        string         `json:"log_level"`  // debug, info, warn, error
	LogFormat       string         `json:"log_format"` // text or json
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:          models.DefaultEndpoint,
		RequestTimeout:    int(models.DefaultRequestTimeout / time.Second),
		IdleTimeout:       int(models.DefaultIdleTimeout / time.Second),
		FlushTrailingLine: true,
		Verbose:           false,
		LogLevel:          "warn",
		LogFormat:         "text",
		CopyToClipboard:   false,
		TUITheme:          "campus",
		Markdown:          DefaultMarkdownConfig(),
	}
}

// RequestTimeoutDuration returns RequestTimeout as a duration
func (c Config) RequestTimeoutDuration() time.Duration {
	if c.RequestTimeout <= 0 {
		return models.DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// IdleTimeoutDuration returns IdleTimeout as a duration; zero means disabled
func (c Config) IdleTimeoutDuration() time.Duration {
	if c.IdleTimeout <= 0 {
		return 0
	}
	return time.Duration(c.IdleTimeout) * time.Second
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".campuschat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: holds the session cookie
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetCookiesPath returns the path to the cookies file
func GetCookiesPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cookies.json"), nil
}

// GetHistoryDir returns the directory where finished sessions are stored
func GetHistoryDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "history"), nil
}

// LoadConfig loads the configuration from disk. Missing keys keep their
// defaults and CAMPUSCHAT_ENDPOINT overrides the endpoint.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if env := strings.TrimSpace(os.Getenv(EndpointEnv)); env != "" {
		cfg.Endpoint = env
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setters maps the keys accepted by Set to their parsers
var setters = map[string]func(*Config, string) error{
	"endpoint": func(c *Config, v string) error {
		c.Endpoint = v
		return nil
	},
	"request_timeout": intSetter(func(c *Config, n int) { c.RequestTimeout = n }),
	"idle_timeout":    intSetter(func(c *Config, n int) { c.IdleTimeout = n }),
	"flush_trailing_line": boolSetter(func(c *Config, b bool) {
		c.FlushTrailingLine = b
	}),
	"verbose":           boolSetter(func(c *Config, b bool) { c.Verbose = b }),
	"copy_to_clipboard": boolSetter(func(c *Config, b bool) { c.CopyToClipboard = b }),
	"log_level": func(c *Config, v string) error {
		switch v {
		case "debug", "info", "warn", "error":
			c.LogLevel = v
			return nil
		}
		return fmt.Errorf("invalid log level %q: use debug, info, warn or error", v)
	},
	"log_format": func(c *Config, v string) error {
		if v != "text" && v != "json" {
			return fmt.Errorf("invalid log format %q: use text or json", v)
		}
		c.LogFormat = v
		return nil
	},
	"tui_theme": func(c *Config, v string) error {
		c.TUITheme = v
		return nil
	},
	"markdown.style": func(c *Config, v string) error {
		c.Markdown.Style = v
		return nil
	},
}

func intSetter(apply func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("expected a non-negative number of seconds, got %q", v)
		}
		apply(c, n)
		return nil
	}
}

func boolSetter(apply func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		apply(c, b)
		return nil
	}
}

// Set updates one configuration key from its string form
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, strings.TrimSpace(value))
}

// Keys returns the keys accepted by Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
