package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalConfig = `
database:
  host: "localhost"
  dbname: "matcher"
search:
  base_url: "https://api.tmsandbox.co.nz/v1"
matcher:
  cron_secret: "test-secret"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":8090" {
		t.Errorf("Server.Address = %q, want :8090", cfg.Server.Address)
	}
	if cfg.Database.Port != "5432" {
		t.Errorf("Database.Port = %q, want 5432", cfg.Database.Port)
	}
	if cfg.Search.Timeout != DefaultSearchTimeout {
		t.Errorf("Search.Timeout = %v, want %v", cfg.Search.Timeout, DefaultSearchTimeout)
	}
	if cfg.Search.MaxResults != DefaultMaxResults {
		t.Errorf("Search.MaxResults = %d, want %d", cfg.Search.MaxResults, DefaultMaxResults)
	}
	if cfg.Matcher.RunInterval != DefaultRunInterval {
		t.Errorf("Matcher.RunInterval = %v, want %v", cfg.Matcher.RunInterval, DefaultRunInterval)
	}
	if cfg.Redis.DedupTTL != DefaultDedupTTL {
		t.Errorf("Redis.DedupTTL = %v, want %v", cfg.Redis.DedupTTL, DefaultDedupTTL)
	}
	if cfg.Email.BaseURL != "https://api.resend.com" {
		t.Errorf("Email.BaseURL = %q", cfg.Email.BaseURL)
	}
	if cfg.Email.Enabled {
		t.Error("email should be disabled without an API key")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("RESEND_API_KEY", "re_key")
	t.Setenv("CRON_SECRET", "env-secret")
	t.Setenv("RUN_INTERVAL", "30m")
	t.Setenv("MATCHER_PORT", "9999")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if !cfg.Email.Enabled || cfg.Email.APIKey != "re_key" {
		t.Error("RESEND_API_KEY should enable email and set the key")
	}
	if cfg.Matcher.CronSecret != "env-secret" {
		t.Errorf("Matcher.CronSecret = %q, want env-secret", cfg.Matcher.CronSecret)
	}
	if cfg.Matcher.RunInterval != 30*time.Minute {
		t.Errorf("Matcher.RunInterval = %v, want 30m", cfg.Matcher.RunInterval)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("Server.Address = %q, want :9999", cfg.Server.Address)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis.internal:6379" {
		t.Error("REDIS_ADDR should enable redis and set the address")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name: "missing database host",
			content: `
search:
  base_url: "https://api.tmsandbox.co.nz/v1"
matcher:
  cron_secret: "s"
`,
		},
		{
			name: "missing cron secret",
			content: `
database:
  host: "localhost"
  dbname: "matcher"
search:
  base_url: "https://api.tmsandbox.co.nz/v1"
`,
		},
		{
			name: "email enabled without key",
			content: minimalConfig + `
email:
  enabled: true
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Error("Load() should fail validation")
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "1", "yes", "TRUE", " Yes "}
	for _, v := range truthy {
		if !parseBool(v) {
			t.Errorf("parseBool(%q) = false, want true", v)
		}
	}
	falsy := []string{"false", "0", "no", "", "maybe"}
	for _, v := range falsy {
		if parseBool(v) {
			t.Errorf("parseBool(%q) = true, want false", v)
		}
	}
}
