package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Key != "task-manager-tasks" {
		t.Errorf("Storage.Key = %q, want %q", cfg.Storage.Key, "task-manager-tasks")
	}
	if cfg.Storage.QuotaBytes != 5*1024*1024 {
		t.Errorf("Storage.QuotaBytes = %d, want 5 MiB", cfg.Storage.QuotaBytes)
	}
	if filepath.Base(cfg.Storage.Path) != "taskflow.db" {
		t.Errorf("Storage.Path = %q, want a taskflow.db file", cfg.Storage.Path)
	}
	if cfg.Persist.Debounce() != 300*time.Millisecond {
		t.Errorf("Persist.Debounce() = %v, want 300ms", cfg.Persist.Debounce())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.UI.Theme != "system" {
		t.Errorf("UI.Theme = %q, want system", cfg.UI.Theme)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", ValidationErrors(errs))
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != "/custom/config/taskflow" {
			t.Errorf("ConfigDir() = %q", got)
		}
		if got := ConfigFile(); got != "/custom/config/taskflow/config.yaml" {
			t.Errorf("ConfigFile() = %q", got)
		}
		if got := DefaultDBPath(); got != "/custom/config/taskflow/taskflow.db" {
			t.Errorf("DefaultDBPath() = %q", got)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "taskflow")
		if got := ConfigDir(); got != expected {
			t.Errorf("ConfigDir() = %q, want %q", got, expected)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Persist.DebounceMs != 300 || cfg.Storage.Key != "task-manager-tasks" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `storage:
  path: /tmp/other.db
  quota_bytes: 1024
persist:
  debounce_ms: 50
ui:
  theme: dark
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Path != "/tmp/other.db" || cfg.Storage.QuotaBytes != 1024 {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Persist.Debounce() != 50*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Persist.Debounce())
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	// Untouched keys keep their defaults.
	if cfg.Storage.Key != "task-manager-tasks" {
		t.Errorf("Key = %q", cfg.Storage.Key)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.AutomaticEnv()
	viper.SetEnvPrefix("TASKFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	t.Setenv("TASKFLOW_LOGGING_LEVEL", "debug")
	t.Setenv("TASKFLOW_PERSIST_DEBOUNCE_MS", "1000")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Persist.DebounceMs != 1000 {
		t.Errorf("Persist.DebounceMs = %d, want 1000", cfg.Persist.DebounceMs)
	}
}

func TestLoadInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("ui.theme", "purple")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verrs ValidationErrors
	if ve, ok := err.(ValidationErrors); ok {
		verrs = ve
	}
	if len(verrs) != 1 || verrs[0].Field != "ui.theme" {
		t.Fatalf("unexpected errors %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"blank key", func(c *Config) { c.Storage.Key = "  " }, "storage.key"},
		{"negative quota", func(c *Config) { c.Storage.QuotaBytes = -1 }, "storage.quota_bytes"},
		{"negative debounce", func(c *Config) { c.Persist.DebounceMs = -5 }, "persist.debounce_ms"},
		{"huge debounce", func(c *Config) { c.Persist.DebounceMs = 120_000 }, "persist.debounce_ms"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 || errs[0].Field != tt.field {
				t.Fatalf("Validate() = %v, want one error on %s", errs, tt.field)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") || !strings.Contains(msg, "b: worse (got: 2)") {
		t.Fatalf("unexpected message %q", msg)
	}
	if ValidationErrors(nil).Error() != "" {
		t.Fatal("empty errors should have empty message")
	}
}
