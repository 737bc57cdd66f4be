package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded from environment variables.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Generator selects the narrative backend: anthropic, openai, or
	// template. Template needs no credentials and is the default.
	Generator        string        `env:"GENERATOR_PROVIDER" envDefault:"template"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	ModelName        string        `env:"MODEL_NAME"`
	GeneratorTimeout time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"30s"`

	// ContentRating controls output softening. Ratings of PG-13 and
	// below replace strong language in generated narration.
	ContentRating string `env:"CONTENT_RATING" envDefault:"PG13"`

	// Storage selects the persistence backend: memory, redis, or sqlite.
	Storage    string        `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisURL   string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SqlitePath string        `env:"SQLITE_PATH" envDefault:"./data/books.db"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured log level string to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
