package server

import (
	"errors"
	"net/http"

	"wikiexplorer/internal/cache"
	"wikiexplorer/internal/core"
	"wikiexplorer/internal/fetch"
	"wikiexplorer/internal/summarize"
)

// User-facing message for any failed next-article request.
const loadFailedMessage = "failed to load article"

// TitlesResponse lists related article titles
type TitlesResponse struct {
	Titles []string `json:"titles"`
}

// TopicsResponse lists suggested topics
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// handleNextArticle handles GET /api/articles/next?kind=random|related&title=T
func (s *Server) handleNextArticle(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseRequestKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := core.Request{Kind: kind, Title: r.URL.Query().Get("title")}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	article, err := s.cache.GetNextArticle(r.Context(), req)
	if err != nil {
		status := nextArticleStatus(err)
		s.log.Error("Failed to load article", "request", req.String(), "status", status, "error", err)
		s.respondError(w, status, loadFailedMessage)
		return
	}

	s.respondJSON(w, http.StatusOK, article)
}

// nextArticleStatus maps a next-article failure to an HTTP status.
func nextArticleStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidRequest):
		return http.StatusBadRequest
	case fetch.IsNotFound(err), errors.Is(err, cache.ErrSourceReturned):
		return http.StatusNotFound
	case fetch.IsFetchError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleRelatedTitles handles POST /api/articles/related-titles
func (s *Server) handleRelatedTitles(w http.ResponseWriter, r *http.Request) {
	var article core.Article
	if err := decodeJSON(r, &article); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	titles := s.parser.ExtractRelatedTitles(article, 0)
	if titles == nil {
		titles = []string{}
	}
	s.respondJSON(w, http.StatusOK, TitlesResponse{Titles: titles})
}

// handleTopics handles POST /api/articles/topics
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	var article core.Article
	if err := decodeJSON(r, &article); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if article.Title == "" {
		s.respondError(w, http.StatusBadRequest, "Article title is required")
		return
	}
	if s.summarizer == nil {
		s.respondJSON(w, http.StatusOK, TopicsResponse{Topics: []string{}})
		return
	}

	topics := summarize.RelatedTopics(r.Context(), s.summarizer, article, s.log)
	s.respondJSON(w, http.StatusOK, TopicsResponse{Topics: topics})
}

// handleCacheStatus handles GET /api/cache/status
func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.cache.Status())
}

// handleCacheClear handles POST /api/cache/clear
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	s.respondJSON(w, http.StatusOK, s.cache.Status())
}

// handleCacheInit handles POST /api/cache/init
func (s *Server) handleCacheInit(w http.ResponseWriter, r *http.Request) {
	s.cache.Initialize()
	s.respondJSON(w, http.StatusAccepted, s.cache.Status())
}
