// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Build modes selected at link time.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// DefaultHost is the backend used in development and when no host is set.
const DefaultHost = "http://localhost:5001"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Backend  BackendConfig  `toml:"backend"`
	Practice PracticeConfig `toml:"practice"`
	Log      LogConfig      `toml:"log"`
}

// BackendConfig maps the judge backend location.
type BackendConfig struct {
	Host *string `toml:"host"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	AutosaveMs     *int `toml:"autosave-ms"`
	ReviewPageSize *int `toml:"review-page-size"`
}

// LogConfig maps diagnostics settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// BaseURL returns the API root for a build mode. Development always talks
// to the local backend.
func BaseURL(mode string, cfg FileConfig) (string, error) {
	switch mode {
	case "", ModeDevelopment:
		return DefaultHost + "/api", nil
	case ModeProduction:
		host := DefaultHost
		if cfg.Backend.Host != nil && strings.TrimSpace(*cfg.Backend.Host) != "" {
			host = strings.TrimRight(strings.TrimSpace(*cfg.Backend.Host), "/")
		}
		return host + "/api", nil
	default:
		return "", fmt.Errorf("unknown build mode %q", mode)
	}
}

// Autosave returns the configured autosave delay, or def.
func (c FileConfig) Autosave(def time.Duration) (time.Duration, error) {
	if c.Practice.AutosaveMs == nil {
		return def, nil
	}
	if *c.Practice.AutosaveMs <= 0 {
		return 0, fmt.Errorf("autosave-ms must be > 0")
	}
	return time.Duration(*c.Practice.AutosaveMs) * time.Millisecond, nil
}

// LogLevel parses the configured level. Unset means info.
func (c FileConfig) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == nil {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(*c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", *c.Log.Level, err)
	}
	return level, nil
}
