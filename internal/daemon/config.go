// Package daemon manages the Twin daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Remote    RemoteConfig    `toml:"remote"`
	Suggest   SuggestConfig   `toml:"suggest"`
	App       AppConfig       `toml:"app"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// RemoteConfig points at the hosted blob store. An empty URL runs the
// app fully offline against the local cache.
type RemoteConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// SuggestConfig points at the generative suggestion endpoint.
type SuggestConfig struct {
	URL       string `toml:"url"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	Timeout   string `toml:"timeout"`
}

// AppConfig controls application behavior.
type AppConfig struct {
	Language     string `toml:"language"`
	SaveDebounce string `toml:"save_debounce"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7411,
		},
		Remote: RemoteConfig{
			Timeout: "10s",
		},
		Suggest: SuggestConfig{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "TWIN_SUGGEST_KEY",
			Timeout:   "30s",
		},
		App: AppConfig{
			Language:     "en",
			SaveDebounce: "2s",
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
	}
}

// LoadConfig reads config from ~/.twin/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(twinHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.twin/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(twinHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// twinHome returns the Twin data directory.
func twinHome() string {
	if env := os.Getenv("TWIN_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".twin")
}

// TwinHome is exported for use by other packages.
func TwinHome() string {
	return twinHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
