package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIConfig configures one OpenAI chat-completion provider.
type OpenAIConfig struct {
	// APIKey is the bearer credential.
	APIKey string
	// BaseURL optionally overrides the OpenAI endpoint.
	BaseURL string
	// Model is the chat model name.
	Model string
	// Timeout bounds each request. Zero keeps the SDK default.
	Timeout time.Duration
	// MaxTokens and Temperature are defaults for calls that leave them unset.
	MaxTokens   int64
	Temperature float64
	// MaxRetries optionally overrides the SDK retry count.
	//
	// Nil keeps the SDK default behavior.
	MaxRetries *int
}

// OpenAIProvider generates text through the chat completions endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
	cfg    OpenAIConfig
}

// NewOpenAIProvider builds one OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	normalized, err := normalizeOpenAIConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("new openai provider: %w", err)
	}

	options := make([]option.RequestOption, 0, 4)
	options = append(options, option.WithAPIKey(normalized.APIKey))
	if normalized.BaseURL != "" {
		options = append(options, option.WithBaseURL(normalized.BaseURL))
	}
	if normalized.Timeout > 0 {
		options = append(options, option.WithRequestTimeout(normalized.Timeout))
	}
	if normalized.MaxRetries != nil {
		options = append(options, option.WithMaxRetries(*normalized.MaxRetries))
	}

	return &OpenAIProvider{
		client: openai.NewClient(options...),
		model:  normalized.Model,
		cfg:    normalized,
	}, nil
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the configured chat model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// GenerateText sends one chat completion request.
func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("openai generate text: prompt cannot be empty")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if options.System != "" {
		messages = append(messages, openai.SystemMessage(options.System))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	}

	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.cfg.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(maxTokens)
	}
	temperature := options.Temperature
	if temperature <= 0 {
		temperature = p.cfg.Temperature
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai generate text: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai generate text: %w", ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai generate text: %w", ErrEmptyResponse)
	}
	return text, nil
}

func normalizeOpenAIConfig(cfg OpenAIConfig) (OpenAIConfig, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)

	if cfg.APIKey == "" {
		return OpenAIConfig{}, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return OpenAIConfig{}, fmt.Errorf("parse base_url: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return OpenAIConfig{}, fmt.Errorf("parse base_url: must include scheme and host")
		}
	}
	if cfg.MaxRetries != nil && *cfg.MaxRetries < 0 {
		return OpenAIConfig{}, fmt.Errorf("max_retries must be >= 0")
	}

	return cfg, nil
}

var _ Provider = (*OpenAIProvider)(nil)
