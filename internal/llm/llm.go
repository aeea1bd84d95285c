package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wikiexplorer/internal/config"
)

// ErrMissingAPIKey is returned when a provider is built without a credential.
var ErrMissingAPIKey = errors.New("API key is required")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// TextGenerationOptions contains options for one generation call.
type TextGenerationOptions struct {
	System      string  // Optional system instruction
	MaxTokens   int64   // Maximum number of tokens to generate, zero keeps the provider default
	Temperature float64 // Sampling temperature, zero keeps the provider default
}

// Provider generates text from a prompt.
type Provider interface {
	// Name returns a stable provider identifier for logs.
	Name() string
	// GenerateText returns the model's reply to prompt.
	GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error)
}

// NewFromConfig builds the provider selected by cfg.Provider.
func NewFromConfig(ctx context.Context, cfg config.AI) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Timeout:     config.Duration(cfg.OpenAI.Timeout, 0),
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		})
	case "gemini":
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			Timeout:     config.Duration(cfg.Gemini.Timeout, 0),
			MaxTokens:   cfg.Gemini.MaxTokens,
			Temperature: cfg.Gemini.Temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
