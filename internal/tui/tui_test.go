package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"wikiexplorer/internal/core"
)

// MockSource implements ArticleSource for testing
type MockSource struct {
	NextFunc func(ctx context.Context, req core.Request) (core.Article, error)
	Requests    []core.Request
	Cleared     int
	Initialized int
}

func (m *MockSource) GetNextArticle(ctx context.Context, req core.Request) (core.Article, error) {
	m.Requests = append(m.Requests, req)
	return m.NextFunc(ctx, req)
}

func (m *MockSource) Initialize() {
	m.Initialized++
}

func (m *MockSource) Clear() {
	m.Cleared++
}

func titled(titles ...string) *MockSource {
	i := 0
	return &MockSource{NextFunc: func(ctx context.Context, req core.Request) (core.Article, error) {
		if i >= len(titles) {
			return core.Article{}, errors.New("exhausted")
		}
		a := core.Article{Title: titles[i], Extract: "About " + titles[i] + "."}
		i++
		return a, nil
	}}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and runs the resulting command once, feeding its
// message back into the model.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func start(t *testing.T, source ArticleSource, saver Saver) Model {
	t.Helper()
	m := NewModel(source, saver, 0)
	next, _ := m.Update(m.Init()())
	return next.(Model)
}

func TestInitLoadsRandomArticle(t *testing.T) {
	source := titled("Octopus")
	m := start(t, source, nil)

	current, ok := m.Current()
	if !ok || current.Title != "Octopus" {
		t.Fatalf("Expected Octopus, got %+v", current)
	}
	if source.Requests[0] != core.RandomRequest() {
		t.Errorf("Expected random request, got %+v", source.Requests[0])
	}
	if !strings.Contains(m.View(), "Octopus") {
		t.Error("View should show the current article")
	}
}

func TestRelatedUsesCurrentTitle(t *testing.T) {
	source := titled("Octopus", "Squid")
	m := start(t, source, nil)

	m = step(t, m, key("r"))
	if got := source.Requests[1]; got != core.RelatedRequest("Octopus") {
		t.Errorf("Expected related(Octopus), got %+v", got)
	}
	if current, _ := m.Current(); current.Title != "Squid" {
		t.Errorf("Expected Squid, got %q", current.Title)
	}
}

func TestBackClearsCache(t *testing.T) {
	source := titled("Octopus", "Squid", "Tulip")
	m := start(t, source, nil)
	m = step(t, m, key("n"))

	m = step(t, m, key("b"))
	if current, _ := m.Current(); current.Title != "Octopus" {
		t.Errorf("Expected Octopus after back, got %q", current.Title)
	}
	if source.Cleared != 1 {
		t.Errorf("Expected cache clear on back, got %d", source.Cleared)
	}
	if source.Initialized != 1 {
		t.Errorf("Expected cache re-warm after clear, got %d", source.Initialized)
	}

	m = step(t, m, key("b"))
	if source.Cleared != 1 || source.Initialized != 1 {
		t.Error("Back at the first article should do nothing")
	}

	m = step(t, m, key("n"))
	if len(m.history) != 2 || m.history[1].Title != "Tulip" {
		t.Errorf("Expected forward history to be replaced, got %+v", m.history)
	}
}

func TestFailureKeepsPreviousArticle(t *testing.T) {
	source := titled("Octopus")
	m := start(t, source, nil)

	m = step(t, m, key("n"))
	if current, _ := m.Current(); current.Title != "Octopus" {
		t.Errorf("Expected previous article to stay, got %q", current.Title)
	}
	if !strings.Contains(m.View(), loadFailedMessage) {
		t.Error("View should report the failure")
	}

	// No random substitution after a failed related request.
	m = step(t, m, key("r"))
	if len(source.Requests) != 3 || source.Requests[2].Kind != core.KindRelated {
		t.Errorf("Unexpected requests %+v", source.Requests)
	}
}

func TestSave(t *testing.T) {
	var saved []string
	saver := SaverFunc(func(ctx context.Context, a core.Article) error {
		saved = append(saved, a.Title)
		return nil
	})
	m := start(t, titled("Octopus"), saver)

	m = step(t, m, key("s"))
	if len(saved) != 1 || saved[0] != "Octopus" {
		t.Errorf("Expected Octopus saved, got %v", saved)
	}
	if !strings.Contains(m.status, "Saved") {
		t.Errorf("Unexpected status %q", m.status)
	}
}

func TestQuit(t *testing.T) {
	m := start(t, titled("Octopus"), nil)
	next, cmd := m.Update(key("q"))
	if cmd == nil || !next.(Model).quitting {
		t.Error("Expected quit")
	}
}
