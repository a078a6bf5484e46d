// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigin  string        `yaml:"allowed_origin"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // lifetime of an idle signup wizard
}

// Account providers.
const (
	ProviderHTTP         = "http"
	ProviderPostgres     = "postgres"
	ProviderMemory       = "memory"
	ProviderUnconfigured = "unconfigured"
)

type AccountConfig struct {
	Provider string        `yaml:"provider"` // http | postgres | memory | unconfigured
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SecurityConfig struct {
	EncryptionKey string        `yaml:"encryption_key"`
	JWTSecret     string        `yaml:"jwt_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	CookieDomain  string        `yaml:"cookie_domain"`
}

type RateLimitConfig struct {
	SignupStarts int           `yaml:"signup_starts"`
	Window       time.Duration `yaml:"window"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Account   AccountConfig   `yaml:"account"`
	Security  SecurityConfig  `yaml:"security"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies defaults and validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse is LoadConfig without the file read.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Redis.TTL = normalizeTTL(c.Redis.TTL, 15*time.Minute)
	c.Account.Provider = strings.ToLower(strings.TrimSpace(c.Account.Provider))
	if c.Account.Provider == "" {
		c.Account.Provider = ProviderUnconfigured
	}
	c.Account.Timeout = normalizeTTL(c.Account.Timeout, 10*time.Second)
	c.Security.SessionTTL = normalizeTTL(c.Security.SessionTTL, 24*time.Hour)
	if c.RateLimit.SignupStarts <= 0 {
		c.RateLimit.SignupStarts = 20
	}
	c.RateLimit.Window = normalizeTTL(c.RateLimit.Window, time.Minute)
}

func (c *Config) validate() error {
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	switch c.Account.Provider {
	case ProviderHTTP:
		if c.Account.BaseURL == "" {
			return errors.New("account.base_url is required for the http provider")
		}
	case ProviderPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres provider")
		}
	case ProviderMemory:
		if !c.Runtime.Dev {
			return errors.New("account.provider memory is only allowed in dev mode")
		}
	case ProviderUnconfigured:
	default:
		return fmt.Errorf("account.provider %q is not supported", c.Account.Provider)
	}
	if c.Runtime.Dev {
		return nil
	}
	if c.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret is required")
	}
	if len(c.Security.EncryptionKey) != 32 {
		return errors.New("security.encryption_key must be 32 bytes")
	}
	return nil
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
