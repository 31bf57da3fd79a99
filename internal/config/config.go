package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full configuration surface, read from the environment.
type Config struct {
	Port        string `env:"PORT" env-default:"4000"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret       string `env:"JWT_SECRET"`
	JWTAlgorithm    string `env:"JWT_ALGORITHM" env-default:"HS256"`
	TokenTTLMinutes int    `env:"TOKEN_TTL_MINUTES" env-default:"30"`

	DBMaxOpenConns    int `env:"DB_MAX_OPEN" env-default:"25"`
	DBMaxIdleConns    int `env:"DB_MAX_IDLE" env-default:"25"`
	DBConnMaxLifetime int `env:"DB_MAX_LIFETIME" env-default:"300"`
}

// TokenTTL returns the configured token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("config: TOKEN_TTL_MINUTES must be positive")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	return nil
}
