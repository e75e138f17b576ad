// Package config loads timespent configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither config file nor environment set a value.
const (
	DefaultGitLabURL    = "https://gitlab.com"
	DefaultHistoryLimit = 10
	DefaultHourlyRate   = 7.0
	DefaultExchangeRate = 24500.0
)

// Config holds all settings for the timespent CLI.
type Config struct {
	GitLabURL string `yaml:"gitlab_url"`
	Token     string `yaml:"token"`
	UserEmail string `yaml:"user_email"`
	DBPath    string `yaml:"db_path"`

	// Income estimation used by report stats.
	HourlyRate   float64 `yaml:"hourly_rate"`
	ExchangeRate float64 `yaml:"exchange_rate"`
}

// DefaultPath returns the default config file location:
// ~/.config/timespent/config.yml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "timespent", "config.yml"), nil
}

// DefaultDBPath returns the default database location:
// ~/.cache/timespent/timespent.db
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cache", "timespent", "timespent.db"), nil
}

// Load reads configuration in increasing order of precedence:
// built-in defaults, the YAML config file at path (missing file is fine),
// a .env file in the working directory, then process environment variables.
// Pass an empty path to use DefaultPath.
func Load(path string) (*Config, error) {
	cfg := &Config{
		GitLabURL:    DefaultGitLabURL,
		HourlyRate:   DefaultHourlyRate,
		ExchangeRate: DefaultExchangeRate,
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Best-effort .env load; absence is not an error.
	_ = godotenv.Load()

	applyEnv(cfg)

	if cfg.DBPath == "" {
		dbPath, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = dbPath
	}

	return cfg, nil
}

// applyEnv overrides config fields from environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GITLAB_URL"); v != "" {
		cfg.GitLabURL = v
	}
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("GITLAB_USER_EMAIL"); v != "" {
		cfg.UserEmail = v
	}
	if v := os.Getenv("TIMESPENT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TIMESPENT_HOURLY_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HourlyRate = rate
		}
	}
}

// Validate checks that the settings required for talking to GitLab are set.
func (c *Config) Validate() error {
	if c.GitLabURL == "" {
		return fmt.Errorf("gitlab_url is not set")
	}
	if c.Token == "" {
		return fmt.Errorf("token is not set: add it to the config file or set GITLAB_TOKEN")
	}
	if c.UserEmail == "" {
		return fmt.Errorf("user_email is not set: add it to the config file or set GITLAB_USER_EMAIL")
	}
	return nil
}
