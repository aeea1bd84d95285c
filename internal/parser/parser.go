package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"wikiexplorer/internal/core"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultMaxSections bounds how many sections are extracted per article.
	DefaultMaxSections = 5
	// DefaultRelatedLimit bounds how many related titles are extracted.
	DefaultRelatedLimit = 15
)

var (
	// Sections that carry no prose worth summarizing.
	skipSectionRegex = regexp.MustCompile(`(?i)^(references|external links|see also|notes|further reading|bibliography|sources|citations|footnotes)$`)

	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Parser extracts sections and links from rendered article markup.
type Parser struct {
	maxSections int
}

// NewParser creates a Parser that keeps at most maxSections sections.
// A non-positive value selects DefaultMaxSections.
func NewParser(maxSections int) *Parser {
	if maxSections <= 0 {
		maxSections = DefaultMaxSections
	}
	return &Parser{maxSections: maxSections}
}

// MaxSections returns the section bound.
func (p *Parser) MaxSections() int {
	return p.maxSections
}

// ParseSections returns the article's content sections in document order.
//
// A section starts at an h2 or h3 heading and collects the paragraphs that
// follow it up to the next heading. Sections with no paragraph text are
// dropped, as are reference-style sections.
func (p *Parser) ParseSections(html string) ([]core.Section, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article html: %w", err)
	}

	doc.Find("sup.reference, sup.mw-ref, span.mw-editsection, style, script").Remove()

	sections := make([]core.Section, 0, p.maxSections)
	doc.Find("h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		title := collapse(heading.Text())
		if title == "" || skipSectionRegex.MatchString(title) {
			return true
		}

		// Newer markup wraps headings in <div class="mw-heading">.
		start := heading
		if heading.Parent().HasClass("mw-heading") {
			start = heading.Parent()
		}

		var text, original []string
		for s := start.Next(); s.Length() > 0; s = s.Next() {
			if isHeading(s) {
				break
			}
			if !s.Is("p") {
				continue
			}
			if t := collapse(s.Text()); t != "" {
				text = append(text, t)
				inner, _ := s.Html()
				original = append(original, strings.TrimSpace(inner))
			}
		}

		if len(text) == 0 {
			return true
		}

		sections = append(sections, core.Section{
			Title:           title,
			Content:         strings.Join(text, " "),
			OriginalContent: strings.Join(original, " "),
		})
		return len(sections) < p.maxSections
	})

	return sections, nil
}

// ExtractRelatedTitles collects article titles linked from the sections'
// original markup, in order of first appearance, without duplicates.
func (p *Parser) ExtractRelatedTitles(article core.Article, limit int) []string {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	seen := make(map[string]bool)
	var titles []string

	for _, section := range article.Sections {
		markup := section.OriginalContent
		if markup == "" {
			markup = section.Content
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err != nil {
			continue
		}

		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if strings.TrimSpace(a.Text()) == "" {
				return true
			}
			title, ok := titleFromHref(href)
			if !ok || !usableTitle(title, article.Title) {
				return true
			}
			key := strings.ToLower(title)
			if seen[key] {
				return true
			}
			seen[key] = true
			titles = append(titles, title)
			return len(titles) < limit
		})

		if len(titles) >= limit {
			break
		}
	}

	return titles
}

// titleFromHref maps /wiki/X and ./X links to a display title.
func titleFromHref(href string) (string, bool) {
	var raw string
	switch {
	case strings.HasPrefix(href, "#"):
		return "", false
	case strings.Contains(href, "/wiki/"):
		raw = href[strings.Index(href, "/wiki/")+len("/wiki/"):]
	case strings.HasPrefix(href, "./"):
		raw = strings.TrimPrefix(href, "./")
	default:
		return "", false
	}

	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(strings.ReplaceAll(raw, "_", " ")), true
}

// usableTitle drops namespaced pages, anchors, self links and very short titles.
func usableTitle(title, self string) bool {
	if len(title) <= 2 {
		return false
	}
	if strings.ContainsAny(title, ":#") {
		return false
	}
	return !strings.EqualFold(title, strings.ReplaceAll(self, "_", " "))
}

func isHeading(s *goquery.Selection) bool {
	return s.Is("h2, h3") || s.HasClass("mw-heading")
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
