// Package config loads tool configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the checker needs to reach a CMS and record runs.
// Authentication is either a static API key or username/password credentials,
// at least one of which must be present.
type Config struct {
	BaseURL string `env:"CMS_BASE_URL"`

	APIKey   string `env:"CMS_API_KEY"`
	Username string `env:"CMS_USERNAME"`
	Password string `env:"CMS_PASSWORD"`

	RequestTimeout time.Duration `env:"CMS_REQUEST_TIMEOUT" env-default:"30s"`
	PaceInterval   time.Duration `env:"CMS_CHECK_PACE" env-default:"250ms"`

	// HistoryPath is the SQLite archive location; empty selects the default
	// under the user's home directory.
	HistoryPath string `env:"CMS_CHECK_HISTORY"`

	LogLevel string `env:"CMS_CHECK_LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("CMS_BASE_URL is required")
	}
	if c.APIKey == "" && (c.Username == "" || c.Password == "") {
		return errors.New("either CMS_API_KEY or CMS_USERNAME and CMS_PASSWORD are required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.PaceInterval < 0 {
		return errors.New("pace interval must not be negative")
	}
	return nil
}
