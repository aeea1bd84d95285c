package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"wikiexplorer/internal/cache"
	"wikiexplorer/internal/config"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/logger"
	"wikiexplorer/internal/parser"
	"wikiexplorer/internal/store"
	"wikiexplorer/internal/summarize"
)

// ArticleCache is the prefetching article source behind the API.
type ArticleCache interface {
	GetNextArticle(ctx context.Context, req core.Request) (core.Article, error)
	Initialize()
	Clear()
	Status() cache.Status
	Close()
}

// CollectionStore persists saved articles.
type CollectionStore interface {
	CreateCollection(ctx context.Context, name, description string) (core.Collection, error)
	ListCollections(ctx context.Context) ([]core.Collection, error)
	GetCollection(ctx context.Context, id string) (core.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	SaveArticle(ctx context.Context, collectionID string, article core.Article) (core.SavedArticle, error)
	ListArticles(ctx context.Context, collectionID string) ([]core.SavedArticle, error)
	RemoveArticle(ctx context.Context, collectionID, title string) error
	GetStats(ctx context.Context) (*store.Stats, error)
}

// Deps are the services the API is built on. Store may be nil, which
// disables the collections routes.
type Deps struct {
	Cache      ArticleCache
	Summarizer summarize.Service
	Store      CollectionStore
	Parser     *parser.Parser
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cache      ArticleCache
	summarizer summarize.Service
	store      CollectionStore
	parser     *parser.Parser
	config     config.Server
	log        *slog.Logger
	startedAt  time.Time
}

// New creates a new HTTP server instance
func New(deps Deps, cfg config.Server) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		cache:      deps.Cache,
		summarizer: deps.Summarizer,
		store:      deps.Store,
		parser:     deps.Parser,
		config:     cfg,
		log:        logger.Get(),
		startedAt:  time.Now(),
	}
	if s.parser == nil {
		s.parser = parser.NewParser(parser.DefaultMaxSections)
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.Duration(cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: config.Duration(cfg.WriteTimeout, 120*time.Second),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// A cache miss fetches and summarizes synchronously.
	s.router.Use(middleware.Timeout(config.Duration(s.config.WriteTimeout, 120*time.Second)))

	s.router.Use(securityHeaders)

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.With(noCache).Get("/next", s.handleNextArticle)
			r.Post("/related-titles", s.handleRelatedTitles)
			r.Post("/topics", s.handleTopics)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/status", s.handleCacheStatus)
			r.Post("/clear", s.handleCacheClear)
			r.Post("/init", s.handleCacheInit)
		})

		if s.store != nil {
			r.Route("/collections", func(r chi.Router) {
				r.Get("/", s.handleListCollections)
				r.Post("/", s.handleCreateCollection)
				r.Get("/{id}", s.handleGetCollection)
				r.Delete("/{id}", s.handleDeleteCollection)
				r.Get("/{id}/articles", s.handleListCollectionArticles)
				r.Post("/{id}/articles", s.handleSaveArticle)
				r.Delete("/{id}/articles/{title}", s.handleRemoveArticle)
			})
		}
	})
}

// Start warms the article cache and serves until Shutdown.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	s.cache.Initialize()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown stops accepting requests, drains in-flight ones and then stops
// background cache refills.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.cache.Close()
	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
