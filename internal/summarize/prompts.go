package summarize

import (
	"fmt"
	"strings"
)

// SectionSystemPrompt frames every section summarization request.
const SectionSystemPrompt = "You are a helpful assistant that summarizes Wikipedia content. " +
	"Provide clear, concise summaries that preserve important facts and maintain readability. " +
	"Keep summaries to 2-3 sentences."

// TopicsSystemPrompt frames topic suggestion requests.
const TopicsSystemPrompt = "You suggest Wikipedia articles a curious reader might explore next. " +
	"Answer with existing article titles only."

// BuildSectionPrompt creates the user prompt for one section summary.
func BuildSectionPrompt(text string) string {
	return fmt.Sprintf("Summarize this Wikipedia section in 2-3 clear, informative sentences while preserving all important facts: %s",
		truncateContent(text, 4000))
}

// BuildTopicsPrompt creates the user prompt for related topic suggestions.
func BuildTopicsPrompt(title, text string, count int) string {
	return fmt.Sprintf(`Suggest %d Wikipedia topics related to the article below.

**Title:** %s

**Summary:** %s

**Output Format:**
Return exactly %d article titles, one per line, without numbering or commentary.`,
		count, title, truncateContent(text, 1000), count)
}

// truncateContent truncates content to a maximum character length
func truncateContent(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}

	truncated := content[:maxChars]

	// Try to break at sentence boundary
	lastPeriod := strings.LastIndex(truncated, ". ")
	if lastPeriod > maxChars/2 {
		truncated = truncated[:lastPeriod+1]
	} else {
		lastSpace := strings.LastIndex(truncated, " ")
		if lastSpace > 0 {
			truncated = truncated[:lastSpace]
		}
	}

	return truncated + "..."
}

// ParseTopicList extracts topic titles from a line-oriented model reply.
// Bullets, numbering and surrounding quotes are removed; duplicates and the
// source title are dropped.
func ParseTopicList(response, title string, limit int) []string {
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(title)): true}
	var topics []string

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(strings.TrimLeft(line, "-•*"))
		} else if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
			line = strings.TrimSpace(line[2:])
		}
		line = strings.Trim(line, `"'`)

		key := strings.ToLower(line)
		if line == "" || seen[key] || len(line) > 100 {
			continue
		}
		seen[key] = true
		topics = append(topics, line)

		if limit > 0 && len(topics) >= limit {
			break
		}
	}

	return topics
}
