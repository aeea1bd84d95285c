package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"wikiexplorer/internal/config"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/logger"
)

const (
	// DefaultRESTBaseURL is the Wikipedia REST v1 endpoint.
	DefaultRESTBaseURL = "https://en.wikipedia.org/api/rest_v1"
	// DefaultActionBaseURL is the MediaWiki Action API query endpoint.
	DefaultActionBaseURL = "https://en.wikipedia.org/w/api.php"
	// DefaultUserAgent identifies the client per Wikimedia API etiquette.
	DefaultUserAgent = "wikiexplorer/1.0"

	defaultTimeout       = 15 * time.Second
	defaultLinkLimit     = 50
	defaultCategoryLimit = 20
	maxBodyBytes         = 8 << 20
)

// Client retrieves article summaries and markup from the encyclopedia API.
// It holds no article state; every call is independent I/O.
type Client struct {
	httpClient    *http.Client
	restBaseURL   string
	actionBaseURL string
	userAgent     string
	linkLimit     int
	categoryLimit int
	log           *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRESTBaseURL points the client at a different REST v1 endpoint.
func WithRESTBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.restBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithActionBaseURL points the client at a different Action API endpoint.
func WithActionBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.actionBaseURL = base
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLimits sets how many links and category members are listed per query.
func WithLimits(links, categoryMembers int) Option {
	return func(c *Client) {
		if links > 0 {
			c.linkLimit = links
		}
		if categoryMembers > 0 {
			c.categoryLimit = categoryMembers
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRand makes candidate selection deterministic.
func WithRand(r *rand.Rand) Option {
	return func(c *Client) {
		if r != nil {
			c.rng = r
		}
	}
}

// NewClient creates a client with Wikipedia defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: defaultTimeout},
		restBaseURL:   DefaultRESTBaseURL,
		actionBaseURL: DefaultActionBaseURL,
		userAgent:     DefaultUserAgent,
		linkLimit:     defaultLinkLimit,
		categoryLimit: defaultCategoryLimit,
		log:           logger.Get(),
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a client from the wikipedia config section.
func NewClientFromConfig(cfg config.Wikipedia, opts ...Option) *Client {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: config.Duration(cfg.Timeout, defaultTimeout)}),
		WithRESTBaseURL(cfg.RESTBaseURL),
		WithActionBaseURL(cfg.ActionBaseURL),
		WithUserAgent(cfg.UserAgent),
		WithLimits(cfg.LinkLimit, cfg.CategoryLimit),
	}
	return NewClient(append(base, opts...)...)
}

// FetchRandomArticle returns the summary of a random article.
func (c *Client) FetchRandomArticle(ctx context.Context) (core.Article, error) {
	var article core.Article
	if err := c.getJSON(ctx, "random summary", c.restBaseURL+"/page/random/summary", &article); err != nil {
		return core.Article{}, err
	}
	c.log.Debug("Fetched random article", "title", article.Title)
	return article, nil
}

// FetchSummary returns the summary of the named article.
func (c *Client) FetchSummary(ctx context.Context, title string) (core.Article, error) {
	var article core.Article
	if err := c.getJSON(ctx, "summary", c.restBaseURL+"/page/summary/"+escapeTitle(title), &article); err != nil {
		return core.Article{}, err
	}
	return article, nil
}

// FetchArticleHTML returns the full rendered markup of the named article.
func (c *Client) FetchArticleHTML(ctx context.Context, title string) (string, error) {
	body, err := c.get(ctx, "article html", c.restBaseURL+"/page/html/"+escapeTitle(title))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, dst any) error {
	body, err := c.get(ctx, op, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &FetchError{Op: op, URL: rawURL, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Op: op, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Op: op, URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Op: op, URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (c *Client) pick(n int) int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.IntN(n)
}

// escapeTitle converts a display title to the path form the REST API expects.
func escapeTitle(title string) string {
	return url.PathEscape(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}
