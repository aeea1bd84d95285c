package fetch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"wikiexplorer/internal/core"
	"wikiexplorer/internal/logger"
	"wikiexplorer/internal/parser"
)

// DefaultSummaryConcurrency bounds parallel section summaries per article.
const DefaultSummaryConcurrency = 4

// HTMLSource returns the rendered markup of an article.
type HTMLSource interface {
	FetchArticleHTML(ctx context.Context, title string) (string, error)
}

// SectionSummarizer condenses one section's text.
type SectionSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Processor enriches raw article summaries with summarized sections.
type Processor struct {
	source      HTMLSource
	summarizer  SectionSummarizer
	parser      *parser.Parser
	concurrency int
	log         *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithParser replaces the section parser.
func WithParser(p *parser.Parser) ProcessorOption {
	return func(pr *Processor) {
		if p != nil {
			pr.parser = p
		}
	}
}

// WithSummaryConcurrency bounds how many sections are summarized at once.
func WithSummaryConcurrency(n int) ProcessorOption {
	return func(pr *Processor) {
		if n > 0 {
			pr.concurrency = n
		}
	}
}

// WithProcessorLogger injects a logger.
func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(pr *Processor) {
		if l != nil {
			pr.log = l
		}
	}
}

// NewProcessor creates a processor reading markup from source.
func NewProcessor(source HTMLSource, summarizer SectionSummarizer, opts ...ProcessorOption) *Processor {
	p := &Processor{
		source:      source,
		summarizer:  summarizer,
		parser:      parser.NewParser(parser.DefaultMaxSections),
		concurrency: DefaultSummaryConcurrency,
		log:         logger.Get(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessArticle fetches the article's markup, extracts its sections and
// summarizes each of them in parallel.
//
// It never fails. When the markup cannot be fetched or parsed the input is
// returned unchanged. A section whose summary fails is kept without one.
func (p *Processor) ProcessArticle(ctx context.Context, raw core.Article) core.Article {
	html, err := p.source.FetchArticleHTML(ctx, raw.Title)
	if err != nil {
		p.log.Warn("Article markup unavailable, returning summary only",
			"error", &ProcessingError{Title: raw.Title, Err: err})
		return raw
	}

	sections, err := p.parser.ParseSections(html)
	if err != nil {
		p.log.Warn("Article markup unparseable, returning summary only",
			"error", &ProcessingError{Title: raw.Title, Err: err})
		return raw
	}

	p.log.Debug("Parsed sections, starting summarization", "title", raw.Title, "sections", len(sections))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i := range sections {
		g.Go(func() error {
			summary, err := p.summarizer.Summarize(ctx, sections[i].Content)
			if err != nil {
				p.log.Warn("Section summary failed, keeping original content",
					"error", &ProcessingError{Title: raw.Title, Section: sections[i].Title, Err: err})
				return nil
			}
			sections[i].Summary = summary
			return nil
		})
	}
	_ = g.Wait()

	enriched := raw.Clone()
	enriched.Sections = sections
	return enriched
}
