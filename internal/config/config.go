package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Port         string        `env:"FAMILI_PORT" env-default:"8080"`
	DBPath       string        `env:"FAMILI_DB_PATH" env-default:"famili.db"`
	LogLevel     string        `env:"FAMILI_LOG_LEVEL" env-default:"info"`
	PollInterval time.Duration `env:"FAMILI_POLL_INTERVAL" env-default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}
