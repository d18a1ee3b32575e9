// Package config loads and validates the matcher service configuration
// from a YAML file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultReadTimeout is the default HTTP read timeout.
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default HTTP write timeout.
	DefaultWriteTimeout = 30 * time.Second
	// DefaultSearchTimeout is the default per-request search provider timeout.
	DefaultSearchTimeout = 15 * time.Second
	// DefaultEmailTimeout is the default per-request email provider timeout.
	DefaultEmailTimeout = 10 * time.Second
	// DefaultMaxResults caps how many candidate listings one search returns.
	DefaultMaxResults = 20
	// DefaultRunInterval is how often the worker triggers a pipeline run.
	DefaultRunInterval = time.Hour
	// DefaultDedupTTL is how long seen-URL cache keys live in Redis.
	DefaultDedupTTL = 7 * 24 * time.Hour
)

type Config struct {
	Debug    bool           `yaml:"debug"` // Controls log level and gin mode
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Search   SearchConfig   `yaml:"search"`
	Email    EmailConfig    `yaml:"email"`
	Matcher  MatcherConfig  `yaml:"matcher"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`       // e.g. ":8090"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 30s
	CORSOrigins  []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Enabled  bool          `yaml:"enabled"`   // Seen-URL cache is optional; Postgres stays authoritative
	DedupTTL time.Duration `yaml:"dedup_ttl"` // Default: 168h
}

type SearchConfig struct {
	BaseURL    string        `yaml:"base_url"`    // Trade Me API base, e.g. "https://api.tmsandbox.co.nz/v1"
	ListingURL string        `yaml:"listing_url"` // Public listing URL base, e.g. "https://www.tmsandbox.co.nz/a"
	Timeout    time.Duration `yaml:"timeout"`
	MaxResults int           `yaml:"max_results"`
}

type EmailConfig struct {
	BaseURL string        `yaml:"base_url"` // Resend API base, e.g. "https://api.resend.com"
	APIKey  string        `yaml:"api_key"`
	From    string        `yaml:"from"` // e.g. "Netic <notifications@netic.app>"
	Timeout time.Duration `yaml:"timeout"`
	Enabled bool          `yaml:"enabled"`
}

type MatcherConfig struct {
	CronSecret  string        `yaml:"cron_secret"`  // Shared secret gating the trigger endpoint
	RunInterval time.Duration `yaml:"run_interval"` // Worker schedule, default 1h
	RunOnStart  bool          `yaml:"run_on_start"` // Run one pipeline pass immediately on worker start
}

// Validate checks the server configuration and sets defaults.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		c.Address = ":8090"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return nil
}

// Validate checks the configuration and returns an error if it is unusable.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Search.BaseURL == "" {
		return errors.New("search.base_url is required")
	}
	if c.Matcher.CronSecret == "" {
		return errors.New("matcher.cron_secret is required")
	}
	if c.Matcher.RunInterval <= 0 {
		return fmt.Errorf("matcher.run_interval must be positive, got %v", c.Matcher.RunInterval)
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return errors.New("email.api_key is required when email.enabled is true")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis.enabled is true")
	}
	return nil
}

// setDefaults fills zero-valued configuration fields.
func setDefaults(cfg *Config) {
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = DefaultSearchTimeout
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = DefaultMaxResults
	}
	if cfg.Search.ListingURL == "" {
		cfg.Search.ListingURL = "https://www.tmsandbox.co.nz/a"
	}
	if cfg.Email.Timeout == 0 {
		cfg.Email.Timeout = DefaultEmailTimeout
	}
	if cfg.Email.BaseURL == "" {
		cfg.Email.BaseURL = "https://api.resend.com"
	}
	if cfg.Email.From == "" {
		cfg.Email.From = "Netic <notifications@netic.app>"
	}
	if cfg.Matcher.RunInterval == 0 {
		cfg.Matcher.RunInterval = DefaultRunInterval
	}
	if cfg.Redis.DedupTTL == 0 {
		cfg.Redis.DedupTTL = DefaultDedupTTL
	}
}

// overrideWithEnvVars overrides configuration with environment variables.
// The cron shared secret is resolved here, once at process start, and
// carried in the config from then on.
func overrideWithEnvVars(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TRADEME_BASE_URL"); v != "" {
		cfg.Search.BaseURL = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		cfg.Email.APIKey = v
		cfg.Email.Enabled = true
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.Matcher.CronSecret = v
	}
	if v := os.Getenv("RUN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Matcher.RunInterval = d
		}
	}
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Debug = parseBool(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.Server.CORSOrigins = origins
	}
	if v := os.Getenv("MATCHER_PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			cfg.Server.Address = ":" + v
		}
	}
}

// Load reads the YAML config at path, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnvVars(&cfg)

	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("server config validation: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseBool parses a string as a boolean. Returns true for "true", "1",
// "yes" (case-insensitive), false otherwise.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
