// Package config loads storefront settings from an optional YAML file,
// a .env file and STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete storefront configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the local HTTP listener.
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	TLS       bool   `mapstructure:"tls"`
	TLSPort   string `mapstructure:"tls_port"`
	CertFile  string `mapstructure:"cert_file"`
	KeyFile   string `mapstructure:"key_file"`
	PublicURL string `mapstructure:"public_url"`
}

// APIConfig points at the remote store API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls the token cookie and the identity cache.
type SessionConfig struct {
	CookieName   string        `mapstructure:"cookie_name"`
	Secret       string        `mapstructure:"secret"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// RateLimitConfig throttles sign-in and sign-up per client IP.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// SMTPConfig enables order confirmation mail when User and Pass are set.
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	From string `mapstructure:"from"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Option adjusts the viper instance before configuration is read, for
// example to bind command-line flags.
type Option func(v *viper.Viper) error

// Load reads configuration. cfgFile may be empty, in which case
// ./storefront.yaml is used when present.
func Load(cfgFile string, opts ...Option) (*Config, error) {
	// .env is optional; a missing file is the normal case in containers.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/storefront")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("applying config option: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8082")
	v.SetDefault("server.tls", false)
	v.SetDefault("server.tls_port", "8443")
	v.SetDefault("server.cert_file", "")
	v.SetDefault("server.key_file", "")
	v.SetDefault("server.public_url", "http://localhost:8082")

	v.SetDefault("api.base_url", "https://ecommerce.routemisr.com/api/v1")
	v.SetDefault("api.timeout", 15*time.Second)

	v.SetDefault("session.cookie_name", "userToken")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("session.max_age", 7*24*time.Hour)
	v.SetDefault("session.cache_ttl", 5*time.Minute)

	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.from", "noreply@storefront.local")

	v.SetDefault("logging.level", "info")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL: %s", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	if c.Session.CacheTTL <= 0 {
		return errors.New("session.cache_ttl must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("ratelimit.rps and ratelimit.burst must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}

// Enabled reports whether SMTP credentials are configured.
func (s SMTPConfig) Enabled() bool {
	return s.User != "" && s.Pass != ""
}
