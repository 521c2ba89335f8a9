// Package config loads process configuration from the environment (optionally
// seeded from a .env file) and storefront settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string `env:"APP_ENV,default=local"`
	HTTPAddr     string `env:"HTTP_ADDR,default=:8080"`
	GRPCAddr     string `env:"GRPC_ADDR,default=:9090"`
	DatabasePath string `env:"DATABASE_PATH,default=./data/storefront.db"`
	RedisAddr    string `env:"REDIS_ADDR"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SettingsPath string `env:"SETTINGS_PATH"`

	JWTSecret string        `env:"JWT_SECRET,default=local-development-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=24h"`

	SessionTTL           time.Duration `env:"SESSION_TTL,default=72h"`
	IdempotencyTTL       time.Duration `env:"IDEMPOTENCY_TTL,default=24h"`
	BankTransferWindow   time.Duration `env:"BANK_TRANSFER_WINDOW,default=120h"`
	HousekeepingSchedule string        `env:"HOUSEKEEPING_SCHEDULE,default=@every 15m"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=10"`

	// Bootstrap back-office account, created on start when no user exists.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

const minSecretLength = 16

// Load reads envFile (or ./.env when envFile is empty and the file exists) and
// decodes the environment into a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config: decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Environment != "local" && c.Environment != "test" && len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters outside local", minSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("config: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("config: ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}
