package summarize

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"wikiexplorer/internal/config"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/llm"
	"wikiexplorer/internal/logger"
	"wikiexplorer/test/mocks"
)

// MockProvider implements llm.Provider for testing
type MockProvider struct {
	mu        sync.Mutex
	response  string
	err       error
	callCount int
	prompts   []string
	systems   []string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, options.System)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func testOptions() SummarizerOptions {
	opts := DefaultSummarizerOptions()
	opts.Logger = logger.Discard()
	return opts
}

func TestTruncateToSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		max      int
		expected string
	}{
		{"keeps first three", "One. Two! Three? Four.", 3, "One. Two. Three."},
		{"strips tags", "<p>The <b>octopus</b> has eight arms.</p> It is clever.", 3, "The octopus has eight arms. It is clever."},
		{"fewer than max", "Single sentence without period", 3, "Single sentence without period."},
		{"collapses ellipses", "Wait... what?! Yes.", 2, "Wait. what."},
		{"empty", "   ", 3, ""},
		{"only markup", "<br/><hr>", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateToSentences(tt.text, tt.max); got != tt.expected {
				t.Errorf("TruncateToSentences(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractTopics(t *testing.T) {
	text := "The Octopus lives in the Pacific Ocean. Octopus species in the Pacific Ocean include the Giant Pacific Octopus. " +
		"Aristotle described them. The Pacific Ocean is large."

	topics := ExtractTopics("Octopus", text, 2)
	expected := []string{"Pacific Ocean", "Giant Pacific Octopus"}
	if !reflect.DeepEqual(topics, expected) {
		t.Errorf("Expected %v, got %v", expected, topics)
	}
}

func TestHeuristicSummarizer(t *testing.T) {
	h := NewHeuristic(testOptions())
	if h.Strategy() != StrategyHeuristic {
		t.Errorf("Expected heuristic strategy, got %q", h.Strategy())
	}

	summary, err := h.Summarize(context.Background(), "A. B. C. D.")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "A. B. C." {
		t.Errorf("Unexpected summary %q", summary)
	}

	if _, err := h.Summarize(context.Background(), ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Summarize(ctx, "Some text."); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLLMSummarizerSummarize(t *testing.T) {
	mock := &MockProvider{response: "Octopuses are clever."}
	s := NewLLM(mock, testOptions())

	summary, err := s.Summarize(context.Background(), "Octopuses solve puzzles. They escape tanks.")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "Octopuses are clever." {
		t.Errorf("Expected model summary, got %q", summary)
	}
	if mock.systems[0] != SectionSystemPrompt {
		t.Errorf("Expected section system prompt, got %q", mock.systems[0])
	}
	if !strings.Contains(mock.prompts[0], "Octopuses solve puzzles.") {
		t.Errorf("Prompt should include section text, got %q", mock.prompts[0])
	}
}

func TestLLMSummarizerFallsBackOnError(t *testing.T) {
	mock := &MockProvider{err: errors.New("rate limited")}
	s := NewLLM(mock, testOptions())

	summary, err := s.Summarize(context.Background(), "One. Two. Three. Four.")
	if err != nil {
		t.Fatalf("Expected heuristic fallback, got error %v", err)
	}
	if summary != "One. Two. Three." {
		t.Errorf("Expected heuristic summary, got %q", summary)
	}
}

func TestLLMSummarizerCancelled(t *testing.T) {
	mock := &MockProvider{err: context.Canceled}
	s := NewLLM(mock, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Summarize(ctx, "One. Two."); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation error, got %v", err)
	}
}

func TestLLMSummarizerEmptyText(t *testing.T) {
	mock := &MockProvider{response: "unused"}
	s := NewLLM(mock, testOptions())

	if _, err := s.Summarize(context.Background(), "<p> </p>"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}
	if mock.callCount != 0 {
		t.Errorf("Provider should not be called for empty text, got %d calls", mock.callCount)
	}
}

func TestLLMSummarizerGenerateTopics(t *testing.T) {
	mock := &MockProvider{response: "1. Cephalopod\n- Squid\n\"Octopus\"\n* Nautilus\nSquid\n"}
	s := NewLLM(mock, testOptions())

	topics, err := s.GenerateTopics(context.Background(), "Octopus", "Octopuses are cephalopods.")
	if err != nil {
		t.Fatalf("GenerateTopics failed: %v", err)
	}
	expected := []string{"Cephalopod", "Squid", "Nautilus"}
	if !reflect.DeepEqual(topics, expected) {
		t.Errorf("Expected %v, got %v", expected, topics)
	}
}

func TestLLMSummarizerTopicsFallback(t *testing.T) {
	mock := &MockProvider{response: "   "}
	s := NewLLM(mock, testOptions())

	topics, err := s.GenerateTopics(context.Background(), "Octopus", "The Octopus lives near Japan. Fishermen in Japan catch them.")
	if err != nil {
		t.Fatalf("GenerateTopics failed: %v", err)
	}
	if len(topics) == 0 || topics[0] != "Japan" {
		t.Errorf("Expected heuristic topics led by Japan, got %v", topics)
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.AI
		expected string
	}{
		{"no credential", config.AI{Provider: "openai"}, StrategyHeuristic},
		{"placeholder credential", config.AI{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "your-api-key"}}, StrategyHeuristic},
		{"explicit heuristic", config.AI{Provider: "heuristic", OpenAI: config.OpenAIConfig{APIKey: "sk-real"}}, StrategyHeuristic},
		{"openai credential", config.AI{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "sk-real"}}, StrategyLLM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(context.Background(), tt.cfg, testOptions())
			if svc.Strategy() != tt.expected {
				t.Errorf("Expected %s strategy, got %s", tt.expected, svc.Strategy())
			}
		})
	}
}

func TestTopicInput(t *testing.T) {
	article := core.Article{
		Title:   "Octopus",
		Extract: "Extract.",
		Sections: []core.Section{
			{Title: "A", Content: "content a", Summary: "Summary A."},
			{Title: "B", Content: strings.Repeat("b", 300)},
			{Title: "C", Content: "content c", Summary: "Summary C."},
			{Title: "D", Content: "content d", Summary: "Summary D."},
		},
	}

	input := TopicInput(article)
	expected := "Extract. Summary A. " + strings.Repeat("b", 200) + " Summary C."
	if input != expected {
		t.Errorf("Unexpected topic input:\n got %q\nwant %q", input, expected)
	}

	article.Extract = strings.Repeat("x", 2000)
	if got := len([]rune(TopicInput(article))); got != 1000 {
		t.Errorf("Expected input capped at 1000 chars, got %d", got)
	}
}

func TestRelatedTopics(t *testing.T) {
	article := core.Article{Title: "Octopus", Extract: "Octopuses are cephalopods."}

	topics := RelatedTopics(context.Background(), NewLLM(&MockProvider{response: "Squid"}, testOptions()), article, logger.Discard())
	if !reflect.DeepEqual(topics, []string{"Squid"}) {
		t.Errorf("Expected [Squid], got %v", topics)
	}

	empty := RelatedTopics(context.Background(), NewHeuristic(testOptions()), core.Article{Title: "Empty"}, logger.Discard())
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil list on failure, got %#v", empty)
	}
}

func TestLLMSummarizerTopicsRespectLimit(t *testing.T) {
	var system string
	provider := &mocks.MockLLMProvider{GenerateTextFunc: func(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
		system = options.System
		return "1. Squid\n2. Cuttlefish\n3. Nautilus\n4. Octopus\n5. Cephalopod\n6. Mollusca\n7. Kraken\n8. Argonaut", nil
	}}
	s := NewLLM(provider, testOptions())

	topics, err := s.GenerateTopics(context.Background(), "Octopus", "The octopus is a cephalopod.")
	if err != nil {
		t.Fatalf("GenerateTopics failed: %v", err)
	}
	want := []string{"Squid", "Cuttlefish", "Nautilus", "Cephalopod", "Mollusca"}
	if !reflect.DeepEqual(topics, want) {
		t.Errorf("Expected %v, got %v", want, topics)
	}
	if system != TopicsSystemPrompt {
		t.Errorf("Expected topics system prompt, got %q", system)
	}
}
