// Package llm talks to text-in/text-out decision endpoints.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrEmptyResponse = errors.New("empty response")
	ErrNotConfigured = errors.New("no endpoint configured")
)

// Completer sends a prompt and returns the free text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

const (
	ProviderChatflow = "chatflow"
	ProviderOpenAI   = "openai"
)

// Config selects and configures the remote endpoint.
type Config struct {
	Provider string        `env:"RISK_LLM_PROVIDER" envDefault:"chatflow"`
	Endpoint string        `env:"RISK_LLM_ENDPOINT"`
	APIKey   string        `env:"RISK_LLM_API_KEY"`
	Model    string        `env:"RISK_LLM_MODEL" envDefault:"gpt-4o-mini"`
	Timeout  time.Duration `env:"RISK_LLM_TIMEOUT" envDefault:"30s"`
}

// ParseConfig loads the endpoint configuration from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Configured reports whether cfg has enough to reach an endpoint.
func (c Config) Configured() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.APIKey != "" || c.Endpoint != ""
	default:
		return c.Endpoint != ""
	}
}

// New builds the Completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	switch cfg.Provider {
	case ProviderChatflow, "":
		return NewChatflowClient(cfg.Endpoint, WithTimeout(cfg.Timeout)), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
