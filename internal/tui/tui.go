// Package tui is an interactive terminal explorer over the article cache.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wikiexplorer/internal/core"
)

// Shown whenever a next-article request fails.
const loadFailedMessage = "failed to load article"

// ArticleSource serves the next article. *cache.Cache satisfies it.
type ArticleSource interface {
	GetNextArticle(ctx context.Context, req core.Request) (core.Article, error)
	Initialize()
	Clear()
}

// Saver stores the current article. Optional.
type Saver interface {
	Save(ctx context.Context, article core.Article) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, article core.Article) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, article core.Article) error {
	return f(ctx, article)
}

type articleMsg struct {
	article core.Article
}

type errMsg struct {
	err error
}

type savedMsg struct {
	title string
	err   error
}

// Model holds the explorer state.
type Model struct {
	source  ArticleSource
	saver   Saver
	timeout time.Duration

	history []core.Article
	current int // index into history, -1 before the first article

	loading bool
	status  string
	err     error

	width    int
	height   int
	quitting bool
}

// NewModel returns the initial explorer state. saver may be nil.
func NewModel(source ArticleSource, saver Saver, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return Model{
		source:  source,
		saver:   saver,
		timeout: timeout,
		current: -1,
		loading: true,
	}
}

// Current returns the article on screen.
func (m Model) Current() (core.Article, bool) {
	if m.current < 0 || m.current >= len(m.history) {
		return core.Article{}, false
	}
	return m.history[m.current], true
}

// Init loads the first random article.
func (m Model) Init() tea.Cmd {
	return m.fetch(core.RandomRequest())
}

func (m Model) fetch(req core.Request) tea.Cmd {
	source, timeout := m.source, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		article, err := source.GetNextArticle(ctx, req)
		if err != nil {
			return errMsg{err: err}
		}
		return articleMsg{article: article}
	}
}

func (m Model) save(article core.Article) tea.Cmd {
	saver, timeout := m.saver, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return savedMsg{title: article.Title, err: saver.Save(ctx, article)}
	}
}

// Update handles messages and updates the model accordingly.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case articleMsg:
		m.loading = false
		m.err = nil
		m.status = ""
		// Navigating from a past article drops the forward history.
		m.history = append(m.history[:m.current+1], msg.article)
		m.current = len(m.history) - 1

	case errMsg:
		m.loading = false
		m.err = msg.err

	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not save %q: %v", msg.title, msg.err)
		} else {
			m.status = fmt.Sprintf("Saved %q", msg.title)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "n":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.fetch(core.RandomRequest())

	case "r":
		current, ok := m.Current()
		if m.loading || !ok {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.fetch(core.RelatedRequest(current.Title))

	case "b", "left":
		if m.loading || m.current <= 0 {
			return m, nil
		}
		m.current--
		m.err = nil
		m.status = ""
		// Buffered articles were chosen for where we came from.
		m.source.Clear()
		m.source.Initialize()

	case "s":
		current, ok := m.Current()
		if m.saver == nil || !ok {
			return m, nil
		}
		m.status = "Saving..."
		return m, m.save(current)
	}

	return m, nil
}

var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	summaryStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	width := m.width - 6
	if width < 40 {
		width = 76
	}
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	if article, ok := m.Current(); ok {
		b.WriteString(titleStyle.Render(article.Title))
		b.WriteString(helpStyle.Render(fmt.Sprintf("  (%d/%d)", m.current+1, len(m.history))))
		b.WriteString("\n\n")
		b.WriteString(body.Render(article.Extract))
		b.WriteString("\n")

		for _, section := range article.Sections {
			b.WriteString("\n")
			b.WriteString(headingStyle.Render(section.Title))
			b.WriteString("\n")
			text := section.Summary
			if text == "" {
				text = section.Content
				b.WriteString(body.Render(text))
			} else {
				b.WriteString(summaryStyle.Width(width).Render(text))
			}
			b.WriteString("\n")
		}
		if url := article.URL(); url != "" {
			b.WriteString("\n")
			b.WriteString(helpStyle.Render(url))
			b.WriteString("\n")
		}
	} else if !m.loading {
		b.WriteString("No article loaded.\n")
	}

	b.WriteString("\n")
	if m.loading {
		b.WriteString("Loading...\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(loadFailedMessage))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	help := "[n] Random | [r] Related | [b] Back | [q] Quit"
	if m.saver != nil {
		help = "[n] Random | [r] Related | [b] Back | [s] Save | [q] Quit"
	}
	b.WriteString(helpStyle.Render(help))

	return docStyle.Render(b.String())
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(source ArticleSource, saver Saver, timeout time.Duration) error {
	p := tea.NewProgram(NewModel(source, saver, timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
