package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("expected base_url http://localhost:8000, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.CSRFCookie != "csrftoken" {
		t.Errorf("expected csrf_cookie csrftoken, got %s", cfg.Server.CSRFCookie)
	}
	if cfg.Server.CSRFMeta != "csrf-token" {
		t.Errorf("expected csrf_meta csrf-token, got %s", cfg.Server.CSRFMeta)
	}
	if cfg.NotifyDuration() != 5*time.Second {
		t.Errorf("expected notify duration 5s, got %s", cfg.NotifyDuration())
	}
	if cfg.AutosaveDelay() != time.Second {
		t.Errorf("expected autosave delay 1s, got %s", cfg.AutosaveDelay())
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("expected theme light, got %s", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.TimeoutMs != 30000 {
		t.Errorf("expected default timeout_ms, got %d", cfg.Server.TimeoutMs)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[server]
base_url = "https://tasks.example.com/"
timeout_ms = 5000

[notifications]
duration_ms = 2000
desktop = true

[llm]
provider = "lmstudio"
model = "qwen2.5"

[storage]
db_path = "/tmp/test.db"

[ui]
theme = "dark"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.BaseURL != "https://tasks.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Server.BaseURL)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", cfg.Timeout())
	}
	if cfg.NotifyDuration() != 2*time.Second {
		t.Errorf("expected duration 2s, got %s", cfg.NotifyDuration())
	}
	if !cfg.Notifications.Desktop {
		t.Error("expected desktop notifications enabled")
	}
	if cfg.LLM.Provider != "lmstudio" {
		t.Errorf("expected provider lmstudio, got %s", cfg.LLM.Provider)
	}
	// Unset keys keep their defaults
	if cfg.Server.CSRFCookie != "csrftoken" {
		t.Errorf("expected default csrf_cookie, got %s", cfg.Server.CSRFCookie)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected theme dark, got %s", cfg.UI.Theme)
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[server\nbase_url ="), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[server]
base_url = "http://file.example.com"

[llm]
model = "mistral"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("TASKDESK_BASE_URL", "http://env.example.com")
	t.Setenv("TASKDESK_NOTIFY_DURATION_MS", "1500")
	t.Setenv("TASKDESK_DESKTOP_NOTIFICATIONS", "true")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.BaseURL != "http://env.example.com" {
		t.Errorf("expected base_url from env, got %s", cfg.Server.BaseURL)
	}
	if cfg.LLM.Model != "mistral" {
		t.Errorf("expected model mistral from file, got %s", cfg.LLM.Model)
	}
	if cfg.Notifications.DurationMs != 1500 {
		t.Errorf("expected duration_ms 1500 from env, got %d", cfg.Notifications.DurationMs)
	}
	if !cfg.Notifications.Desktop {
		t.Error("expected desktop notifications from env")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/tasks" }},
		{"zero timeout", func(c *Config) { c.Server.TimeoutMs = 0 }},
		{"missing csrf cookie", func(c *Config) { c.Server.CSRFCookie = "" }},
		{"negative duration", func(c *Config) { c.Notifications.DurationMs = -1 }},
		{"negative animation", func(c *Config) { c.Notifications.HideAnimationMs = -1 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"negative autosave", func(c *Config) { c.UI.AutosaveDelayMs = -5 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test.db", filepath.Join(home, "test.db")},
		{"/absolute/path.db", "/absolute/path.db"},
		{"relative/path.db", "relative/path.db"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := expandPath(tc.input)
			if got != tc.want {
				t.Errorf("expandPath(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://127.0.0.1:9000"
	cfg.UI.Theme = "dark"
	cfg.Notifications.DurationMs = 3000

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.Server.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("expected base_url http://127.0.0.1:9000, got %s", loaded.Server.BaseURL)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("expected theme dark, got %s", loaded.UI.Theme)
	}
	if loaded.Notifications.DurationMs != 3000 {
		t.Errorf("expected duration_ms 3000, got %d", loaded.Notifications.DurationMs)
	}
}
