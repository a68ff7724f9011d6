// Package config loads process configuration from the environment.
//
// A `.env` file in the working directory is read first (development only;
// a missing file is not an error), then the tagged Config is parsed.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/rpsplus/internal/commentary"
	"github.com/robalobadob/rpsplus/internal/game"
)

// Config holds every setting used by the server, MCP and CLI entrypoints.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP session cookie.
	ClientOrigin  string `env:"CLIENT_ORIGIN"  envDefault:"http://localhost:5173"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	CookieName    string `env:"COOKIE_NAME"    envDefault:"rps_session"`
	Production    bool   `env:"PRODUCTION"     envDefault:"false"`

	// Rate limiting on /api/play. Empty RedisAddr disables it.
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB"          envDefault:"0"`
	PlayRateLimit  int           `env:"PLAY_RATE_LIMIT"   envDefault:"60"`
	PlayRateWindow time.Duration `env:"PLAY_RATE_WINDOW"  envDefault:"1m"`

	// Commentary model. Empty LLMAPIKey means canned commentary only.
	LLMURL        string        `env:"LLM_RESPONSES_URL" envDefault:"https://api.openai.com/v1/responses"`
	LLMAPIKey     string        `env:"LLM_API_KEY"`
	LLMModel      string        `env:"LLM_MODEL"         envDefault:"gpt-4o-mini"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT"       envDefault:"10s"`
	LLMRetries    uint          `env:"LLM_RETRIES"       envDefault:"2"`
	LLMRetryDelay time.Duration `env:"LLM_RETRY_DELAY"   envDefault:"2s"`

	// Opponent. Seed 0 draws a fresh seed at startup.
	BombChance float64 `env:"BOT_BOMB_CHANCE" envDefault:"0.15"`
	Seed       uint64  `env:"BOT_SEED"        envDefault:"0"`

	// MCP tool server.
	MCPTransport    string `env:"MCP_TRANSPORT"     envDefault:"stdio"`
	MCPHTTPAddr     string `env:"MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	MCPDefaultMatch string `env:"MCP_DEFAULT_MATCH" envDefault:"default"`
}

// Load reads `.env` if present and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LLM returns the commentary model settings.
func (c Config) LLM() commentary.LLMConfig {
	return commentary.LLMConfig{
		ResponsesURL: c.LLMURL,
		APIKey:       c.LLMAPIKey,
		Model:        c.LLMModel,
		Timeout:      c.LLMTimeout,
		MaxRetries:   c.LLMRetries,
		RetryDelay:   c.LLMRetryDelay,
	}
}

// Chooser builds the opponent, drawing a seed when none is configured.
func (c Config) Chooser() (*game.RandomChooser, error) {
	seed := c.Seed
	if seed == 0 {
		s, err := game.NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return game.NewRandomChooser(seed, c.BombChance), nil
}
