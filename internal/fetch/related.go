package fetch

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"wikiexplorer/internal/core"
)

// randomFallbackAttempts bounds how often a random fallback is re-drawn when
// it happens to land on the source article.
const randomFallbackAttempts = 3

type queryResponse struct {
	Query struct {
		Pages           []queryPage `json:"pages"`
		CategoryMembers []queryItem `json:"categorymembers"`
	} `json:"query"`
}

type queryPage struct {
	Title      string      `json:"title"`
	Missing    bool        `json:"missing"`
	Links      []queryItem `json:"links"`
	Categories []queryItem `json:"categories"`
}

type queryItem struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

// FetchRelatedArticle discovers an article related to sourceTitle.
//
// Discovery walks outbound links first, then members of the source's first
// category. When neither yields a candidate, or the candidate's summary
// cannot be fetched, it falls back to a random article. The returned
// article never has the source title. Only a random-fetch failure escapes.
func (c *Client) FetchRelatedArticle(ctx context.Context, sourceTitle string) (core.Article, error) {
	sourceTitle = strings.TrimSpace(sourceTitle)

	candidate, err := c.discoverRelated(ctx, sourceTitle)
	if err == nil {
		article, err := c.FetchSummary(ctx, candidate)
		switch {
		case err != nil:
			c.log.Warn("Related candidate summary failed, falling back to random",
				"source", sourceTitle, "candidate", candidate, "error", err)
		case core.SameTitle(article.Title, sourceTitle):
			// Redirects can resolve back to the source.
			c.log.Debug("Related candidate resolved to source, falling back to random",
				"source", sourceTitle, "candidate", candidate)
		default:
			c.log.Debug("Found related article", "source", sourceTitle, "title", article.Title)
			return article, nil
		}
	} else {
		c.log.Info("No related candidate, falling back to random", "source", sourceTitle, "reason", err)
	}

	return c.fetchRandomExcluding(ctx, sourceTitle)
}

func (c *Client) discoverRelated(ctx context.Context, source string) (string, error) {
	links, err := c.fetchLinks(ctx, source)
	if err != nil {
		c.log.Warn("Link query failed", "source", source, "error", err)
	}
	if len(links) > 0 {
		return links[c.pick(len(links))], nil
	}

	category, err := c.fetchFirstCategory(ctx, source)
	if err != nil {
		c.log.Warn("Category query failed", "source", source, "error", err)
		return "", &NotFoundError{Source: source, Stage: "categories"}
	}
	if category == "" {
		return "", &NotFoundError{Source: source, Stage: "categories"}
	}

	members, err := c.fetchCategoryMembers(ctx, category, source)
	if err != nil {
		c.log.Warn("Category member query failed", "category", category, "error", err)
	}
	if len(members) == 0 {
		return "", &NotFoundError{Source: source, Stage: "category members"}
	}
	return members[c.pick(len(members))], nil
}

func (c *Client) fetchLinks(ctx context.Context, source string) ([]string, error) {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"links"},
		"titles":        {source},
		"plnamespace":   {"0"},
		"pllimit":       {strconv.Itoa(c.linkLimit)},
	}

	var resp queryResponse
	if err := c.getJSON(ctx, "links", c.actionBaseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	var titles []string
	for _, page := range resp.Query.Pages {
		for _, link := range page.Links {
			if usableLink(link, source) {
				titles = append(titles, link.Title)
			}
		}
	}
	return titles, nil
}

func (c *Client) fetchFirstCategory(ctx context.Context, source string) (string, error) {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"categories"},
		"titles":        {source},
		"clshow":        {"!hidden"},
		"cllimit":       {"1"},
	}

	var resp queryResponse
	if err := c.getJSON(ctx, "categories", c.actionBaseURL+"?"+params.Encode(), &resp); err != nil {
		return "", err
	}

	for _, page := range resp.Query.Pages {
		for _, cat := range page.Categories {
			if cat.Title != "" {
				return cat.Title, nil
			}
		}
	}
	return "", nil
}

func (c *Client) fetchCategoryMembers(ctx context.Context, category, source string) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"list":        {"categorymembers"},
		"cmtitle":     {category},
		"cmnamespace": {"0"},
		"cmlimit":     {strconv.Itoa(c.categoryLimit)},
	}

	var resp queryResponse
	if err := c.getJSON(ctx, "category members", c.actionBaseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	var titles []string
	for _, member := range resp.Query.CategoryMembers {
		if member.NS == 0 && member.Title != "" && !core.SameTitle(member.Title, source) {
			titles = append(titles, member.Title)
		}
	}
	return titles, nil
}

func (c *Client) fetchRandomExcluding(ctx context.Context, source string) (core.Article, error) {
	for attempt := 0; attempt < randomFallbackAttempts; attempt++ {
		article, err := c.FetchRandomArticle(ctx)
		if err != nil {
			return core.Article{}, err
		}
		if !core.SameTitle(article.Title, source) {
			return article, nil
		}
	}
	// Reported as a failure of the random fetch itself.
	return core.Article{}, &FetchError{
		Op:  "random summary",
		URL: c.restBaseURL + "/page/random/summary",
		Err: &NotFoundError{Source: source, Stage: "random fallback"},
	}
}

// usableLink drops namespaced pages, list pages and self links.
func usableLink(link queryItem, source string) bool {
	if link.NS != 0 || link.Title == "" {
		return false
	}
	if strings.HasPrefix(strings.ToLower(link.Title), "list of") {
		return false
	}
	return !core.SameTitle(link.Title, source)
}

// IsNotFound reports whether err means no related candidate was discoverable.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
