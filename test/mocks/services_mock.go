package mocks

import (
	"context"
	"strings"
	"sync"

	"wikiexplorer/internal/cache"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/llm"
)

// MockSummarizationService provides a mock implementation of summarize.Service
type MockSummarizationService struct {
	SummarizeFunc      func(ctx context.Context, text string) (string, error)
	GenerateTopicsFunc func(ctx context.Context, title, text string) ([]string, error)
	StrategyName       string

	mu    sync.Mutex
	calls int
}

func (m *MockSummarizationService) Summarize(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return text[:i+1], nil
	}
	return text, nil
}

func (m *MockSummarizationService) GenerateTopics(ctx context.Context, title, text string) ([]string, error) {
	if m.GenerateTopicsFunc != nil {
		return m.GenerateTopicsFunc(ctx, title, text)
	}
	return []string{"Mock topic"}, nil
}

func (m *MockSummarizationService) Strategy() string {
	if m.StrategyName != "" {
		return m.StrategyName
	}
	return "mock"
}

// SummarizeCalls returns how many times Summarize ran.
func (m *MockSummarizationService) SummarizeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockLLMProvider provides a mock implementation of llm.Provider
type MockLLMProvider struct {
	GenerateTextFunc func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

func (m *MockLLMProvider) Name() string { return "mock" }

func (m *MockLLMProvider) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt, options)
	}
	return "Mock summary.", nil
}

// MockArticleCache provides a mock implementation of server.ArticleCache
type MockArticleCache struct {
	GetNextArticleFunc func(ctx context.Context, req core.Request) (core.Article, error)

	mu          sync.Mutex
	Requests    []core.Request
	Initialized int
	Cleared     int
	Closed      bool
}

func (m *MockArticleCache) GetNextArticle(ctx context.Context, req core.Request) (core.Article, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.GetNextArticleFunc != nil {
		return m.GetNextArticleFunc(ctx, req)
	}
	title := "Mock Article"
	if req.Kind == core.KindRelated {
		title = "Related to " + req.Title
	}
	return core.Article{Title: title, Extract: title + " is a mock."}, nil
}

func (m *MockArticleCache) Initialize() {
	m.mu.Lock()
	m.Initialized++
	m.mu.Unlock()
}

func (m *MockArticleCache) Clear() {
	m.mu.Lock()
	m.Cleared++
	m.mu.Unlock()
}

func (m *MockArticleCache) Status() cache.Status {
	return cache.Status{Capacity: cache.DefaultCapacity, Entries: []cache.EntryInfo{}}
}

func (m *MockArticleCache) Close() {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
}
