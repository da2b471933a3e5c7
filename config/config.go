// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
)

const minBcryptCost = 10

// Config is the process configuration
type Config struct {
	Port            int           `env:"PORT" envDefault:"3000"`
	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"file:authlab.db?cache=shared"`
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer       string        `env:"JWT_ISSUER"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	LoginMode       string        `env:"LOGIN_MODE" envDefault:"pair"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"12"`
	APIPrefix       string        `env:"API_PREFIX" envDefault:"/api"`
	CORSOrigins     string        `env:"CORS_ORIGINS" envDefault:"*"`
	AuthRateLimit   int           `env:"AUTH_RATE_LIMIT" envDefault:"20"`
	EmailFrom       string        `env:"EMAIL_FROM"`
	EmailPassword   string        `env:"EMAIL_PASSWORD"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	Debug           bool          `env:"DEBUG" envDefault:"false"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the configuration
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.AccessTokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RefreshTokenTTL, validation.Required, validation.Min(c.AccessTokenTTL)),
		validation.Field(&c.LoginMode, validation.In("pair", "legacy")),
		validation.Field(&c.BcryptCost, validation.Min(minBcryptCost), validation.Max(31)),
		validation.Field(&c.AuthRateLimit, validation.Min(0)),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// Addr is the listen address
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Redacted returns a copy safe to print, secrets are masked
func (c Config) Redacted() Config {
	c.JWTSecret = mask(c.JWTSecret)
	c.EmailPassword = mask(c.EmailPassword)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return strings.Repeat("*", 8)
}
