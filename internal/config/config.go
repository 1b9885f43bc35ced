// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Notifications NotificationsConfig `toml:"notifications"`
	LLM           LLMConfig           `toml:"llm"`
	Storage       StorageConfig       `toml:"storage"`
	UI            UIConfig            `toml:"ui"`
	Log           LogConfig           `toml:"log"`
}

// ServerConfig holds the task manager server settings.
type ServerConfig struct {
	BaseURL    string `toml:"base_url"`   // e.g., "http://localhost:8000"
	TimeoutMs  int    `toml:"timeout_ms"` // per request
	CSRFCookie string `toml:"csrf_cookie"`
	CSRFMeta   string `toml:"csrf_meta"` // name attribute of the fallback meta tag
}

// NotificationsConfig holds notification settings.
type NotificationsConfig struct {
	DurationMs      int  `toml:"duration_ms"`       // auto-dismiss delay
	HideAnimationMs int  `toml:"hide_animation_ms"` // removal animation length
	Desktop         bool `toml:"desktop"`           // mirror to freedesktop notifications
}

// LLMConfig holds settings for locally generated insights.
type LLMConfig struct {
	Provider string `toml:"provider"` // "ollama", "lmstudio"
	Model    string `toml:"model"`    // e.g., "llama3.1"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// StorageConfig holds local key/value store settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme           string `toml:"theme"` // "light" or "dark", used until the user toggles
	AutosaveDelayMs int    `toml:"autosave_delay_ms"`
	SearchDelayMs   int    `toml:"search_delay_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutMs:  30000,
			CSRFCookie: "csrftoken",
			CSRFMeta:   "csrf-token",
		},
		Notifications: NotificationsConfig{
			DurationMs:      5000,
			HideAnimationMs: 150,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1",
			BaseURL:  "http://localhost:11434",
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(dataDir(), "taskdesk.db"),
		},
		UI: UIConfig{
			Theme:           "light",
			AutosaveDelayMs: 1000,
			SearchDelayMs:   500,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dataDir(), "taskdesk.log"),
		},
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "taskdesk")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "taskdesk", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKDESK_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("TASKDESK_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.TimeoutMs = n
		}
	}
	if v := os.Getenv("TASKDESK_NOTIFY_DURATION_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Notifications.DurationMs = n
		}
	}
	if v := os.Getenv("TASKDESK_DESKTOP_NOTIFICATIONS"); v != "" {
		cfg.Notifications.Desktop = v == "1" || strings.EqualFold(v, "true")
	}

	if v := os.Getenv("TASKDESK_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("TASKDESK_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TASKDESK_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("TASKDESK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("TASKDESK_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("TASKDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TASKDESK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

var validThemes = map[string]bool{"light": true, "dark": true}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL, got %q", c.Server.BaseURL)
	}
	if c.Server.TimeoutMs <= 0 {
		return errors.New("timeout_ms must be positive")
	}
	if c.Server.CSRFCookie == "" {
		return errors.New("csrf_cookie must be set")
	}
	if c.Notifications.DurationMs < 0 {
		return errors.New("duration_ms cannot be negative")
	}
	if c.Notifications.HideAnimationMs < 0 {
		return errors.New("hide_animation_ms cannot be negative")
	}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}
	if c.UI.AutosaveDelayMs < 0 || c.UI.SearchDelayMs < 0 {
		return errors.New("ui delays cannot be negative")
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutMs) * time.Millisecond
}

// NotifyDuration returns the default auto-dismiss delay.
func (c *Config) NotifyDuration() time.Duration {
	return time.Duration(c.Notifications.DurationMs) * time.Millisecond
}

// HideAnimation returns the notification removal animation length.
func (c *Config) HideAnimation() time.Duration {
	return time.Duration(c.Notifications.HideAnimationMs) * time.Millisecond
}

// AutosaveDelay returns the form autosave debounce delay.
func (c *Config) AutosaveDelay() time.Duration {
	return time.Duration(c.UI.AutosaveDelayMs) * time.Millisecond
}

// SearchDelay returns the search debounce delay.
func (c *Config) SearchDelay() time.Duration {
	return time.Duration(c.UI.SearchDelayMs) * time.Millisecond
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
