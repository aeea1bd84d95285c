package summarize

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

var (
	tagRegex           = regexp.MustCompile(`<[^>]*>`)
	sentenceSplitRegex = regexp.MustCompile(`[.!?]+`)
	capitalPhraseRegex = regexp.MustCompile(`\b[A-Z][a-zA-Z'-]+(?:\s+(?:of|the|and|de|von)?\s*[A-Z][a-zA-Z'-]+)*\b`)
)

// Capitalised words that start sentences far more often than they name things.
var topicStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "it": true, "its": true,
	"this": true, "these": true, "those": true, "that": true, "there": true,
	"they": true, "he": true, "she": true, "his": true, "her": true, "their": true,
	"on": true, "at": true, "as": true, "by": true, "for": true, "from": true,
	"after": true, "before": true, "during": true, "when": true, "while": true,
	"however": true, "although": true, "some": true, "many": true, "most": true,
	"other": true, "such": true, "both": true, "also": true, "since": true,
	"with": true, "but": true, "and": true, "or": true, "of": true, "to": true,
}

// HeuristicSummarizer works entirely offline.
type HeuristicSummarizer struct {
	opts SummarizerOptions
}

// NewHeuristic creates a summarizer that needs no credentials.
func NewHeuristic(opts SummarizerOptions) *HeuristicSummarizer {
	return &HeuristicSummarizer{opts: opts.withDefaults()}
}

// Strategy returns StrategyHeuristic.
func (h *HeuristicSummarizer) Strategy() string {
	return StrategyHeuristic
}

// Summarize keeps the first few sentences of text.
func (h *HeuristicSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	summary := TruncateToSentences(text, h.opts.MaxSentences)
	if summary == "" {
		return "", ErrEmptyText
	}
	return summary, nil
}

// GenerateTopics returns the most frequent capitalised phrases in text.
func (h *HeuristicSummarizer) GenerateTopics(ctx context.Context, title, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return ExtractTopics(title, text, h.opts.MaxTopics), nil
}

// TruncateToSentences strips markup and keeps at most maxSentences
// sentences, joined with ". " and terminated with a period. It returns the
// empty string when text holds no sentence.
func TruncateToSentences(text string, maxSentences int) string {
	clean := tagRegex.ReplaceAllString(text, "")

	var sentences []string
	for _, s := range sentenceSplitRegex.Split(clean, -1) {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
		if maxSentences > 0 && len(sentences) >= maxSentences {
			break
		}
	}

	if len(sentences) == 0 {
		return ""
	}
	return strings.Join(sentences, ". ") + "."
}

// ExtractTopics ranks capitalised phrases by frequency, then by first
// appearance, skipping the title itself and common sentence openers.
func ExtractTopics(title, text string, limit int) []string {
	clean := tagRegex.ReplaceAllString(text, " ")
	titleKey := strings.ToLower(strings.TrimSpace(title))

	type candidate struct {
		phrase string
		count  int
		first  int
	}
	byKey := make(map[string]*candidate)
	var ordered []*candidate

	for i, match := range capitalPhraseRegex.FindAllString(clean, -1) {
		phrase := trimStopwords(match)
		if len(phrase) < 3 {
			continue
		}
		key := strings.ToLower(phrase)
		if key == titleKey {
			continue
		}
		if c, ok := byKey[key]; ok {
			c.count++
			continue
		}
		c := &candidate{phrase: phrase, count: 1, first: i}
		byKey[key] = c
		ordered = append(ordered, c)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].first < ordered[j].first
	})

	topics := make([]string, 0, limit)
	for _, c := range ordered {
		if limit > 0 && len(topics) >= limit {
			break
		}
		topics = append(topics, c.phrase)
	}
	return topics
}

// trimStopwords drops leading and trailing stopwords from a phrase.
func trimStopwords(phrase string) string {
	words := strings.Fields(phrase)
	for len(words) > 0 && topicStopwords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && topicStopwords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}
