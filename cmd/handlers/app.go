package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"wikiexplorer/internal/cache"
	"wikiexplorer/internal/config"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/fetch"
	"wikiexplorer/internal/logger"
	"wikiexplorer/internal/parser"
	"wikiexplorer/internal/store"
	"wikiexplorer/internal/summarize"
)

// app bundles the services every command is built from.
type app struct {
	cfg        *config.Config
	log        *slog.Logger
	client     *fetch.Client
	parser     *parser.Parser
	summarizer summarize.Service
	processor  *fetch.Processor
	cache      *cache.Cache
	store      *store.Store
}

// newApp wires config, logging, the fetcher, the summarizer and the cache.
// The collections store is opened only when withStore is set.
func newApp(ctx context.Context, withStore bool) (*app, error) {
	cfg := config.Get()
	logging := config.GetLogging()
	log := logger.Configure(logging.Level, logging.Format)

	wiki := config.GetWikipedia()
	aiCfg := config.GetAI()
	cacheCfg := config.GetCache()

	client := fetch.NewClientFromConfig(wiki, fetch.WithLogger(log))
	summarizer := summarize.New(ctx, aiCfg, summarize.SummarizerOptions{Logger: log})
	p := parser.NewParser(wiki.MaxSections)

	processor := fetch.NewProcessor(client, summarizer,
		fetch.WithParser(p),
		fetch.WithSummaryConcurrency(aiCfg.SummaryConcurrency),
		fetch.WithProcessorLogger(log),
	)

	articleCache := cache.New(client, processor,
		cache.WithCapacity(cacheCfg.Capacity),
		cache.WithRefillTimeout(config.Duration(cacheCfg.RefillTimeout, cache.DefaultRefillTimeout)),
		cache.WithLogger(log),
	)

	a := &app{
		cfg:        cfg,
		log:        log,
		client:     client,
		parser:     p,
		summarizer: summarizer,
		processor:  processor,
		cache:      articleCache,
	}

	if withStore {
		st, err := store.NewStore(config.GetStore().DataDir)
		if err != nil {
			articleCache.Close()
			return nil, fmt.Errorf("failed to open collections store: %w", err)
		}
		a.store = st
	}

	log.Debug("Services ready", "summarizer", summarizer.Strategy(), "cache_capacity", cacheCfg.Capacity)
	return a, nil
}

// loadArticle fetches and enriches one article by title.
func (a *app) loadArticle(ctx context.Context, title string) (core.Article, error) {
	raw, err := a.client.FetchSummary(ctx, title)
	if err != nil {
		return core.Article{}, err
	}
	return a.processor.ProcessArticle(ctx, raw), nil
}

// Close stops background refills and closes the store.
func (a *app) Close() {
	a.cache.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close store", "error", err)
		}
	}
}
