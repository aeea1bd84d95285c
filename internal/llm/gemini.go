package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-flash-lite-latest"

// GeminiConfig configures one Gemini provider.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string // Optional endpoint override
	Timeout     time.Duration
	MaxTokens   int32
	Temperature float32
}

// GeminiProvider generates text through the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	cfg    GeminiConfig
}

// NewGeminiProvider creates a Gemini client.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("new gemini provider: %w", ErrMissingAPIKey)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		clientCfg.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: cfg.Model, cfg: cfg}, nil
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// GenerateText wraps Models.GenerateContent.
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("gemini generate text: prompt cannot be empty")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  genai.RoleUser,
	}}

	genCfg := &genai.GenerateContentConfig{}
	if options.System != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: options.System}}}
	}
	maxTokens := int32(options.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = p.cfg.MaxTokens
	}
	if maxTokens > 0 {
		genCfg.MaxOutputTokens = maxTokens
	}
	temp := float32(options.Temperature)
	if temp <= 0 {
		temp = p.cfg.Temperature
	}
	if temp > 0 {
		genCfg.Temperature = &temp
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate text: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini generate text: %w", ErrEmptyResponse)
	}
	return text, nil
}

var _ Provider = (*GeminiProvider)(nil)
