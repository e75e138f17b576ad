package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every variable Load consults so tests see a clean slate.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITLAB_URL", "GITLAB_TOKEN", "GITLAB_USER_EMAIL",
		"TIMESPENT_DB_PATH", "TIMESPENT_HOURLY_RATE",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	// A path that does not exist falls back to built-in defaults.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.GitLabURL != DefaultGitLabURL {
		t.Errorf("GitLabURL = %q, want %q", cfg.GitLabURL, DefaultGitLabURL)
	}
	if cfg.HourlyRate != DefaultHourlyRate {
		t.Errorf("HourlyRate = %v, want %v", cfg.HourlyRate, DefaultHourlyRate)
	}
	if cfg.ExchangeRate != DefaultExchangeRate {
		t.Errorf("ExchangeRate = %v, want %v", cfg.ExchangeRate, DefaultExchangeRate)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath is empty, want the default database location")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
gitlab_url: https://gitlab.example.com
token: glpat-abc123
user_email: me@example.com
db_path: /tmp/custom.db
hourly_rate: 12.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.GitLabURL != "https://gitlab.example.com" {
		t.Errorf("GitLabURL = %q", cfg.GitLabURL)
	}
	if cfg.Token != "glpat-abc123" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.UserEmail != "me@example.com" {
		t.Errorf("UserEmail = %q", cfg.UserEmail)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.HourlyRate != 12.5 {
		t.Errorf("HourlyRate = %v, want 12.5", cfg.HourlyRate)
	}
	// Unset file values keep their defaults.
	if cfg.ExchangeRate != DefaultExchangeRate {
		t.Errorf("ExchangeRate = %v, want %v", cfg.ExchangeRate, DefaultExchangeRate)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
gitlab_url: https://file.example.com
token: from-file
user_email: file@example.com
`)

	t.Setenv("GITLAB_TOKEN", "from-env")
	t.Setenv("GITLAB_USER_EMAIL", "env@example.com")
	t.Setenv("TIMESPENT_HOURLY_RATE", "20")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Token != "from-env" {
		t.Errorf("Token = %q, want the environment value", cfg.Token)
	}
	if cfg.UserEmail != "env@example.com" {
		t.Errorf("UserEmail = %q, want the environment value", cfg.UserEmail)
	}
	if cfg.HourlyRate != 20 {
		t.Errorf("HourlyRate = %v, want 20", cfg.HourlyRate)
	}
	// File values not overridden by env stay in place.
	if cfg.GitLabURL != "https://file.example.com" {
		t.Errorf("GitLabURL = %q, want the file value", cfg.GitLabURL)
	}
}

func TestLoadBadHourlyRateEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMESPENT_HOURLY_RATE", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.HourlyRate != DefaultHourlyRate {
		t.Errorf("HourlyRate = %v, want default %v", cfg.HourlyRate, DefaultHourlyRate)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "gitlab_url: [unclosed")

	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for malformed YAML, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "complete",
			cfg:  Config{GitLabURL: "https://gitlab.com", Token: "t", UserEmail: "me@example.com"},
		},
		{
			name:    "missing token",
			cfg:     Config{GitLabURL: "https://gitlab.com", UserEmail: "me@example.com"},
			wantErr: true,
		},
		{
			name:    "missing user email",
			cfg:     Config{GitLabURL: "https://gitlab.com", Token: "t"},
			wantErr: true,
		},
		{
			name:    "missing url",
			cfg:     Config{Token: "t", UserEmail: "me@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
