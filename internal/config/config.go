// Package config loads service configuration from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Viewer account stores.
const (
	ViewerStoreStore  = "store"
	ViewerStoreCookie = "cookie"
)

// Config represents configuration loaded from YAML and the environment.
type Config struct {
	Addr     string `yaml:"addr"`
	WebDir   string `yaml:"webDir"`
	LogLevel string `yaml:"logLevel"`

	SessionSecret string `yaml:"sessionSecret"`
	AdminEmail    string `yaml:"adminEmail"`
	AdminPassword string `yaml:"adminPassword"`
	SecureCookies bool   `yaml:"secureCookies"`

	Storage       string `yaml:"storage"`
	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	ViewerStore   string `yaml:"viewerStore"`
	SeedDir       string `yaml:"seedDir"`

	LoginRateLimitPerMinute  int `yaml:"loginRateLimitPerMinute"`
	SignupRateLimitPerMinute int `yaml:"signupRateLimitPerMinute"`

	DefaultLanguage string `yaml:"defaultLanguage"`
	DefaultTheme    string `yaml:"defaultTheme"`

	OIDCIssuer       string `yaml:"oidcIssuer"`
	OIDCClientID     string `yaml:"oidcClientID"`
	OIDCClientSecret string `yaml:"oidcClientSecret"`
	OIDCRedirectURL  string `yaml:"oidcRedirectURL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		WebDir:          "web",
		LogLevel:        "info",
		AdminEmail:      "admin@novastore.com",
		AdminPassword:   "admin123",
		Storage:         StorageMemory,
		ViewerStore:     ViewerStoreStore,
		DefaultLanguage: "en",
		DefaultTheme:    "system",
	}
}

// Load reads config from path, if given, then applies environment overrides
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str("ADDR", &cfg.Addr)
	str("WEB_DIR", &cfg.WebDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("ADMIN_EMAIL", &cfg.AdminEmail)
	str("STORAGE", &cfg.Storage)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("VIEWER_STORE", &cfg.ViewerStore)
	str("SEED_DIR", &cfg.SeedDir)
	str("DEFAULT_LANGUAGE", &cfg.DefaultLanguage)
	str("DEFAULT_THEME", &cfg.DefaultTheme)
	str("OIDC_ISSUER", &cfg.OIDCIssuer)
	str("OIDC_CLIENT_ID", &cfg.OIDCClientID)
	str("OIDC_REDIRECT_URL", &cfg.OIDCRedirectURL)

	// Secrets are taken verbatim.
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("OIDC_CLIENT_SECRET"); v != "" {
		cfg.OIDCClientSecret = v
	}

	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.SecureCookies = b
		}
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.LoginRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("SIGNUP_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.SignupRateLimitPerMinute = n
		}
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SessionSecret) == "" {
		return errors.New("config: session secret is required (set sessionSecret or SESSION_SECRET)")
	}
	if strings.TrimSpace(c.AdminEmail) == "" || c.AdminPassword == "" {
		return errors.New("config: admin email and password are required")
	}
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: databaseURL is required for postgres storage")
		}
	case StorageRedis:
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	if c.NeedsRedis() && strings.TrimSpace(c.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for redis storage and rate limiting")
	}
	switch c.ViewerStore {
	case ViewerStoreStore, ViewerStoreCookie:
	default:
		return fmt.Errorf("config: unknown viewerStore %q", c.ViewerStore)
	}
	if c.LoginRateLimitPerMinute < 0 || c.SignupRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	switch c.DefaultLanguage {
	case "en", "tr":
	default:
		return fmt.Errorf("config: unknown defaultLanguage %q", c.DefaultLanguage)
	}
	switch c.DefaultTheme {
	case "light", "dark", "system":
	default:
		return fmt.Errorf("config: unknown defaultTheme %q", c.DefaultTheme)
	}
	if c.SSOEnabled() && (c.OIDCClientID == "" || c.OIDCRedirectURL == "") {
		return errors.New("config: oidcClientID and oidcRedirectURL are required when oidcIssuer is set")
	}
	return nil
}

// NeedsRedis reports whether any configured component uses Redis.
func (c Config) NeedsRedis() bool {
	return c.Storage == StorageRedis || c.LoginRateLimitPerMinute > 0 || c.SignupRateLimitPerMinute > 0
}

// SSOEnabled reports whether OIDC login is configured.
func (c Config) SSOEnabled() bool {
	return strings.TrimSpace(c.OIDCIssuer) != ""
}
