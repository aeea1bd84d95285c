package summarize

import (
	"context"
	"log/slog"
	"strings"

	"wikiexplorer/internal/core"
)

const (
	topicSections     = 3
	topicSectionChars = 200
	topicInputChars   = 1000
)

// TopicInput condenses an article into the text used for topic generation:
// the extract followed by the first sections' summaries, or the start of
// their content when a section has no summary.
func TopicInput(article core.Article) string {
	input := article.Extract

	if len(article.Sections) > 0 {
		n := min(len(article.Sections), topicSections)
		parts := make([]string, 0, n)
		for _, section := range article.Sections[:n] {
			if section.Summary != "" {
				parts = append(parts, section.Summary)
			} else {
				parts = append(parts, prefix(section.Content, topicSectionChars))
			}
		}
		input = input + " " + strings.Join(parts, " ")
	}

	return strings.TrimSpace(prefix(input, topicInputChars))
}

// RelatedTopics suggests topics for article. Failures are logged and
// produce an empty list.
func RelatedTopics(ctx context.Context, svc Service, article core.Article, log *slog.Logger) []string {
	topics, err := svc.GenerateTopics(ctx, article.Title, TopicInput(article))
	if err != nil {
		if log != nil {
			log.Warn("Failed to generate related topics", "title", article.Title, "error", err)
		}
		return []string{}
	}
	if topics == nil {
		return []string{}
	}
	return topics
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
