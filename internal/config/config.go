// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"TRAVELCAL_LOG_LEVEL" env-default:"info"`
	// Format is "json" or "console".
	Format string `yaml:"format" env:"TRAVELCAL_LOG_FORMAT" env-default:"console"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" env:"TRAVELCAL_LISTEN" env-default:":8099"`

	// DataDir holds the SQLite database file.
	DataDir string `yaml:"data_dir" env:"TRAVELCAL_DATA_DIR" env-default:"./data"`

	// ShareBaseURL is the public URL of the calendar UI, used when
	// building shareable links (the data token is appended as a query
	// parameter). Empty means tokens are returned without a URL.
	ShareBaseURL string `yaml:"share_base_url" env:"TRAVELCAL_SHARE_BASE_URL" env-default:""`

	// DefaultRefreshMin is the fallback refresh interval for saved
	// comparison subscriptions that don't specify one.
	DefaultRefreshMin int `yaml:"default_refresh_min" env:"TRAVELCAL_DEFAULT_REFRESH_MIN" env-default:"60"`

	Log LogConfig `yaml:"log"`
}

// Load reads configuration from the given path, falling back to
// environment variables and defaults when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("reading config %q: %w", path, err)
			}
			return cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}
	return cfg, nil
}
