// Package cache keeps a small buffer of fully processed articles ready to
// serve, refilling it in the background after every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wikiexplorer/internal/core"
	"wikiexplorer/internal/logger"
)

const (
	// DefaultCapacity is the number of buffered articles.
	DefaultCapacity = 2
	// DefaultRefillTimeout bounds one background refill.
	DefaultRefillTimeout = 90 * time.Second
)

// ErrSourceReturned is returned when a related lookup resolved to the
// article it started from.
var ErrSourceReturned = errors.New("related article resolved to its source")

// Fetcher retrieves raw article summaries.
type Fetcher interface {
	FetchRandomArticle(ctx context.Context) (core.Article, error)
	FetchRelatedArticle(ctx context.Context, sourceTitle string) (core.Article, error)
}

// Processor enriches a raw article. It never fails.
type Processor interface {
	ProcessArticle(ctx context.Context, raw core.Article) core.Article
}

type entry struct {
	request core.Request
	article core.Article
	addedAt time.Time
}

// Cache serves enriched articles, from its buffer when possible.
//
// The buffer holds at most capacity entries, each tagged with the request
// that produced it. A served entry leaves the buffer. At most one refill
// runs at a time; Clear invalidates any refill already under way so its
// result is discarded instead of inserted.
type Cache struct {
	fetcher       Fetcher
	processor     Processor
	capacity      int
	refillTimeout time.Duration
	log           *slog.Logger

	// baseCtx parents every refill; Close cancels it.
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu         sync.Mutex
	entries    []entry
	refilling  bool
	generation uint64
	closed     bool
	stats      Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity sets the buffer size.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRefillTimeout bounds each background refill.
func WithRefillTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.refillTimeout = d
		}
	}
}

// New creates an empty cache.
func New(fetcher Fetcher, processor Processor, opts ...Option) *Cache {
	c := &Cache{
		fetcher:       fetcher,
		processor:     processor,
		capacity:      DefaultCapacity,
		refillTimeout: DefaultRefillTimeout,
		log:           logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseCtx, c.cancel = context.WithCancel(context.Background())
	return c
}

// GetNextArticle returns the next article for req.
//
// A buffered entry matching req is removed and returned without network
// access. Otherwise the article is fetched and processed before returning.
// Either way a background refill is started afterwards. Failures on the
// synchronous path are returned; another kind is never substituted.
func (c *Cache) GetNextArticle(ctx context.Context, req core.Request) (core.Article, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return core.Article{}, err
	}

	if article, ok := c.take(req); ok {
		c.log.Debug("Serving buffered article", "request", req.String(), "title", article.Title)
		c.triggerRefill(req)
		return article, nil
	}

	c.log.Debug("No buffered article, fetching", "request", req.String())
	article, err := c.load(ctx, req)
	if err != nil {
		return core.Article{}, fmt.Errorf("failed to load %s article: %w", req, err)
	}

	c.triggerRefill(req)
	return article, nil
}

// Initialize starts warming the buffer with a random article. It does not
// block and may be called any number of times.
func (c *Cache) Initialize() {
	c.log.Info("Initializing article cache", "capacity", c.capacity)
	c.triggerRefill(core.RandomRequest())
}

// Clear empties the buffer and releases the refill guard. A refill already
// under way keeps running but its results are dropped.
func (c *Cache) Clear() {
	c.mu.Lock()
	dropped := len(c.entries)
	c.entries = nil
	c.refilling = false
	c.generation++
	c.mu.Unlock()

	c.log.Info("Cleared article cache", "dropped", dropped)
}

// Wait blocks until every refill started so far has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight refills, waits for them and stops new ones.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// take removes and returns the first entry matching req.
func (c *Cache) take(req core.Request) (core.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.entries {
		if e.request.Matches(req) {
			c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
			c.stats.Hits++
			return e.article, true
		}
	}
	c.stats.Misses++
	return core.Article{}, false
}

// load fetches and processes one article for req.
func (c *Cache) load(ctx context.Context, req core.Request) (core.Article, error) {
	var (
		raw core.Article
		err error
	)
	switch req.Kind {
	case core.KindRelated:
		raw, err = c.fetcher.FetchRelatedArticle(ctx, req.Title)
	default:
		raw, err = c.fetcher.FetchRandomArticle(ctx)
	}
	if err != nil {
		return core.Article{}, err
	}

	if req.Kind == core.KindRelated && core.SameTitle(raw.Title, req.Title) {
		return core.Article{}, fmt.Errorf("%w: %q", ErrSourceReturned, req.Title)
	}

	return c.processor.ProcessArticle(ctx, raw), nil
}

// triggerRefill spawns a refill unless one is running or the buffer is full.
func (c *Cache) triggerRefill(trigger core.Request) {
	c.mu.Lock()
	if c.closed || c.refilling || len(c.entries) >= c.capacity {
		c.mu.Unlock()
		return
	}
	c.refilling = true
	gen := c.generation
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.refill(gen, trigger)
	}()
}

// refill keeps one random entry buffered and, after a related request,
// one entry related to the same title while room remains.
func (c *Cache) refill(gen uint64, trigger core.Request) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Article refill panicked", "panic", r)
			c.recordFailure()
		}
		c.mu.Lock()
		if c.generation == gen {
			c.refilling = false
		}
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(c.baseCtx, c.refillTimeout)
	defer cancel()

	targets := []core.Request{core.RandomRequest()}
	if trigger.Kind == core.KindRelated {
		targets = append(targets, trigger)
	}

	for _, req := range targets {
		if !c.wants(gen, req) {
			continue
		}

		article, err := c.load(ctx, req)
		if err != nil {
			c.log.Warn("Article refill failed", "request", req.String(), "error", err)
			c.recordFailure()
			return
		}

		if !c.insert(gen, req, article) {
			c.log.Debug("Discarded refilled article", "request", req.String(), "title", article.Title)
			return
		}
		c.log.Debug("Buffered article", "request", req.String(), "title", article.Title)
	}
}

// wants reports whether an entry for req may still be added.
func (c *Cache) wants(gen uint64, req core.Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.admissible(gen, req)
}

// insert adds an entry if the generation is current, the buffer has room
// and no entry for the same request is buffered.
func (c *Cache) insert(gen uint64, req core.Request, article core.Article) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.admissible(gen, req) {
		return false
	}
	c.entries = append(c.entries, entry{request: req, article: article, addedAt: time.Now()})
	c.stats.Refilled++
	return true
}

// admissible must be called with c.mu held.
func (c *Cache) admissible(gen uint64, req core.Request) bool {
	if c.closed || gen != c.generation || len(c.entries) >= c.capacity {
		return false
	}
	for _, e := range c.entries {
		if e.request.Matches(req) {
			return false
		}
	}
	return true
}

func (c *Cache) recordFailure() {
	c.mu.Lock()
	c.stats.RefillFailures++
	c.mu.Unlock()
}
