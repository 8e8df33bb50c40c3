package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string        `env:"APP_ENV" envDefault:"dev"`
	HTTPPort    string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string        `env:"DATABASE_URL,required"`
	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"taskboard"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	RateRPS     int           `env:"RATE_RPS" envDefault:"100"`
	Migrate     bool          `env:"APP_MIGRATE" envDefault:"true"`
	Workers     int           `env:"WORKERS" envDefault:"4"`
	CORSOrigins []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the process configuration from the environment, loading .env first when present.
// A missing database URL or signing secret is an error: the server must not start without them.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}
