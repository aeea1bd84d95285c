package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"wikiexplorer/internal/config"
	"wikiexplorer/internal/llm"
	"wikiexplorer/internal/logger"
)

// Strategy names reported by Service.Strategy.
const (
	StrategyLLM       = "llm"
	StrategyHeuristic = "heuristic"
)

// ErrEmptyText is returned when there is nothing to summarize.
var ErrEmptyText = errors.New("text is empty")

// Service condenses section text and suggests related topics.
// Implementations are safe for concurrent use.
type Service interface {
	// Summarize returns a short summary of text.
	Summarize(ctx context.Context, text string) (string, error)
	// GenerateTopics suggests topics related to an article.
	GenerateTopics(ctx context.Context, title, text string) ([]string, error)
	// Strategy reports which strategy was selected at construction.
	Strategy() string
}

// SummarizerOptions configures the summarizer behavior
type SummarizerOptions struct {
	MaxSentences int // Sentences kept by the heuristic summary
	MaxTopics    int // Topics returned by GenerateTopics

	// Logger receives fallback warnings. Nil selects logger.Get().
	Logger *slog.Logger
}

// DefaultSummarizerOptions returns the defaults used by New.
func DefaultSummarizerOptions() SummarizerOptions {
	return SummarizerOptions{
		MaxSentences: 3,
		MaxTopics:    5,
	}
}

func (o SummarizerOptions) withDefaults() SummarizerOptions {
	d := DefaultSummarizerOptions()
	if o.MaxSentences <= 0 {
		o.MaxSentences = d.MaxSentences
	}
	if o.MaxTopics <= 0 {
		o.MaxTopics = d.MaxTopics
	}
	if o.Logger == nil {
		o.Logger = logger.Get()
	}
	return o
}

// New selects the summarization strategy once from cfg.
//
// The LLM strategy is used when the configured provider has a credential
// and its client can be built; otherwise the heuristic strategy is used.
// A missing credential is not an error.
func New(ctx context.Context, cfg config.AI, opts SummarizerOptions) Service {
	opts = opts.withDefaults()

	if cfg.Provider == StrategyHeuristic || !cfg.HasCredential() {
		opts.Logger.Info("Using heuristic summarizer", "provider", cfg.Provider)
		return NewHeuristic(opts)
	}

	provider, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		opts.Logger.Warn("LLM provider unavailable, using heuristic summarizer",
			"provider", cfg.Provider, "error", err)
		return NewHeuristic(opts)
	}

	opts.Logger.Info("Using LLM summarizer", "provider", provider.Name())
	return NewLLM(provider, opts)
}

// LLMSummarizer summarizes through a language model and falls back to the
// heuristic per call when the model fails or replies with nothing.
type LLMSummarizer struct {
	provider  llm.Provider
	heuristic *HeuristicSummarizer
	opts      SummarizerOptions
	log       *slog.Logger
}

// NewLLM creates an LLM-backed summarizer.
func NewLLM(provider llm.Provider, opts SummarizerOptions) *LLMSummarizer {
	opts = opts.withDefaults()
	return &LLMSummarizer{
		provider:  provider,
		heuristic: NewHeuristic(opts),
		opts:      opts,
		log:       opts.Logger,
	}
}

// Strategy returns StrategyLLM.
func (s *LLMSummarizer) Strategy() string {
	return StrategyLLM
}

// Summarize asks the model for a 2-3 sentence summary.
// Only a cancelled context or empty input is reported as an error.
func (s *LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(tagRegex.ReplaceAllString(text, "")) == "" {
		return "", ErrEmptyText
	}

	summary, err := s.provider.GenerateText(ctx, BuildSectionPrompt(text), llm.TextGenerationOptions{
		System: SectionSystemPrompt,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("summarize: %w", ctxErr)
		}
		s.log.Warn("LLM summary failed, using heuristic", "provider", s.provider.Name(), "error", err)
		return s.heuristic.Summarize(ctx, text)
	}

	return summary, nil
}

// GenerateTopics asks the model for related article titles.
func (s *LLMSummarizer) GenerateTopics(ctx context.Context, title, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	response, err := s.provider.GenerateText(ctx, BuildTopicsPrompt(title, text, s.opts.MaxTopics), llm.TextGenerationOptions{
		System: TopicsSystemPrompt,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("generate topics: %w", ctxErr)
		}
		s.log.Warn("LLM topics failed, using heuristic", "provider", s.provider.Name(), "error", err)
		return s.heuristic.GenerateTopics(ctx, title, text)
	}

	topics := ParseTopicList(response, title, s.opts.MaxTopics)
	if len(topics) == 0 {
		return s.heuristic.GenerateTopics(ctx, title, text)
	}
	return topics, nil
}

var (
	_ Service = (*LLMSummarizer)(nil)
	_ Service = (*HeuristicSummarizer)(nil)
)
