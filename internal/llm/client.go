// Package llm provides the text generation collaborator used by the response
// synthesizer. Two providers are supported: Groq (OpenAI-compatible chat
// completions) and Google Gemini. Calls are synchronous and never retried; a
// failed call is terminal for the turn that made it.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Client is the interface for text generation providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds provider-independent client configuration.
type Config struct {
	Provider string // "groq" or "gemini"
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New creates a client for the configured provider.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured for provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case "groq", "":
		return NewGroqClient(cfg), nil
	case "gemini":
		return NewGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s (use 'groq' or 'gemini')", cfg.Provider)
	}
}
