package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"storysim/internal/observability"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is everything a story run needs, read from the environment. Command
// line flags override individual fields after parsing.
type Config struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"STORY_MODEL" envDefault:"llama-3.2-Korean-Bllossom-3B"`
	Mode    string `env:"STORY_ENGINE_MODE" envDefault:"completion"`

	HistoryBackend string `env:"STORY_HISTORY_BACKEND" envDefault:"json"`
	HistoryPath    string `env:"STORY_HISTORY_PATH" envDefault:"dialogue_history.json"`
	CompletionsDB  string `env:"STORY_COMPLETIONS_DB" envDefault:"completions.db"`
	CastFile       string `env:"STORY_CAST_FILE"`

	MaxIterations int `env:"STORY_MAX_ITERATIONS" envDefault:"12"`
	ContextTurns  int `env:"STORY_CONTEXT_TURNS" envDefault:"3"`
	TokenBudget   int `env:"STORY_TOKEN_BUDGET" envDefault:"150"`
	MaxRetries    int `env:"STORY_MAX_RETRIES" envDefault:"0"`

	Debug bool `env:"DEBUG"`

	Tracing observability.Config
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case "completion", "chat":
	default:
		return fmt.Errorf("STORY_ENGINE_MODE must be completion or chat, got %q", c.Mode)
	}
	switch c.HistoryBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("STORY_HISTORY_BACKEND must be json or sqlite, got %q", c.HistoryBackend)
	}
	if c.HistoryPath == "" {
		return fmt.Errorf("STORY_HISTORY_PATH must not be empty")
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("STORY_MAX_ITERATIONS must not be negative")
	}
	if c.ContextTurns < 1 {
		return fmt.Errorf("STORY_CONTEXT_TURNS must be at least 1")
	}
	if c.TokenBudget < 1 {
		return fmt.Errorf("STORY_TOKEN_BUDGET must be at least 1")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("STORY_MAX_RETRIES must not be negative")
	}
	return nil
}
