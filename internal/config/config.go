package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string  `env:"PORT"             envDefault:"8080"`
	AdminPort      string  `env:"ADMIN_PORT"       envDefault:"9090"`
	DBPath         string  `env:"DB_PATH"          envDefault:"/data/seating.db"`
	SeedFile       string  `env:"SEED_FILE"`
	SeedEvent      string  `env:"SEED_EVENT"       envDefault:"default"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
	GinMode        string  `env:"GIN_MODE"         envDefault:"release"`
	LogLevel       string  `env:"LOG_LEVEL"        envDefault:"info"`

	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"seating"`
	// OTLPAddr is the collector's gRPC address; tracing is off when empty.
	OTLPAddr string `env:"OTLP_GRPC_ADDR"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, fills variables that are not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %v rps burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return &cfg, nil
}
