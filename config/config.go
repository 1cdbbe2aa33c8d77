package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"3001" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	Storage     string `env:"STORAGE" envDefault:"postgres" validate:"oneof=postgres memory"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=Storage postgres"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret    string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"24h" validate:"min=1m"`
	CookieName   string        `env:"COOKIE_NAME" envDefault:"access_token" validate:"required"`
	CookieMaxAge time.Duration `env:"COOKIE_MAX_AGE" envDefault:"168h" validate:"min=1m"`

	// Empty reflects any request origin.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	AuthRateRPS   float64 `env:"AUTH_RATE_RPS" envDefault:"5" validate:"gt=0"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"10" validate:"min=1"`

	ImportMaxBytes int64 `env:"IMPORT_MAX_BYTES" envDefault:"5242880" validate:"min=1"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SecureCookies reports whether the session cookie needs the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}
