package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the file and environment configuration, loaded through viper.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Persist PersistConfig `mapstructure:"persist"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
}

// StorageConfig controls where the task list lives.
type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// Key is the entry the task list is stored under.
	Key string `mapstructure:"key"`
	// QuotaBytes caps the bytes of all stored keys and values. 0 disables it.
	QuotaBytes int64 `mapstructure:"quota_bytes"`
}

type PersistConfig struct {
	// DebounceMs is the quiet period before changes are written.
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Debounce returns DebounceMs as a duration.
func (p PersistConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File receives log output. The TUI owns the terminal, so logs never go
	// to stdout.
	File string `mapstructure:"file"`
}

type UIConfig struct {
	// Theme is "system", "light" or "dark". A theme chosen inside the app
	// takes precedence.
	Theme string `mapstructure:"theme"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       DefaultDBPath(),
			Key:        "task-manager-tasks",
			QuotaBytes: 5 * 1024 * 1024,
		},
		Persist: PersistConfig{
			DebounceMs: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(ConfigDir(), "taskflow.log"),
		},
		UI: UIConfig{
			Theme: "system",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("storage.path", defaults.Storage.Path)
	viper.SetDefault("storage.key", defaults.Storage.Key)
	viper.SetDefault("storage.quota_bytes", defaults.Storage.QuotaBytes)

	viper.SetDefault("persist.debounce_ms", defaults.Persist.DebounceMs)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("ui.theme", defaults.UI.Theme)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskflow"
	}
	return filepath.Join(home, ".config", "taskflow")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	return filepath.Join(ConfigDir(), "taskflow.db")
}
