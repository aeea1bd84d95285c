package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"wikiexplorer/internal/core"
	"wikiexplorer/internal/store"
)

// CreateCollectionRequest is the body of POST /api/collections
type CreateCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CollectionResponse is a collection with its saved articles
type CollectionResponse struct {
	core.Collection
	Articles []core.SavedArticle `json:"articles,omitempty"`
}

// handleListCollections handles GET /api/collections
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.store.ListCollections(r.Context())
	if err != nil {
		s.log.Error("Failed to list collections", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}
	s.respondJSON(w, http.StatusOK, collections)
}

// handleCreateCollection handles POST /api/collections
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	collection, err := s.store.CreateCollection(r.Context(), req.Name, req.Description)
	if err != nil {
		s.storeError(w, "Failed to create collection", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, collection)
}

// handleGetCollection handles GET /api/collections/{id}
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	collection, err := s.store.GetCollection(ctx, id)
	if err != nil {
		s.storeError(w, "Failed to get collection", err)
		return
	}
	articles, err := s.store.ListArticles(ctx, id)
	if err != nil {
		s.storeError(w, "Failed to list articles", err)
		return
	}
	s.respondJSON(w, http.StatusOK, CollectionResponse{Collection: collection, Articles: articles})
}

// handleDeleteCollection handles DELETE /api/collections/{id}
func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCollection(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.storeError(w, "Failed to delete collection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListCollectionArticles handles GET /api/collections/{id}/articles
func (s *Server) handleListCollectionArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.ListArticles(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, "Failed to list articles", err)
		return
	}
	s.respondJSON(w, http.StatusOK, articles)
}

// handleSaveArticle handles POST /api/collections/{id}/articles
func (s *Server) handleSaveArticle(w http.ResponseWriter, r *http.Request) {
	var article core.Article
	if err := decodeJSON(r, &article); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if article.Title == "" {
		s.respondError(w, http.StatusBadRequest, "Article title is required")
		return
	}

	saved, err := s.store.SaveArticle(r.Context(), chi.URLParam(r, "id"), article)
	if err != nil {
		s.storeError(w, "Failed to save article", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, saved)
}

// handleRemoveArticle handles DELETE /api/collections/{id}/articles/{title}
func (s *Server) handleRemoveArticle(w http.ResponseWriter, r *http.Request) {
	title, err := articleTitleParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid article title")
		return
	}

	if err := s.store.RemoveArticle(r.Context(), chi.URLParam(r, "id"), title); err != nil {
		s.storeError(w, "Failed to remove article", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// articleTitleParam returns the decoded {title} segment. chi decodes the
// path itself unless it carried escaped slashes, in which case routing ran
// on RawPath and the segment is still escaped.
func articleTitleParam(r *http.Request) (string, error) {
	title := chi.URLParam(r, "title")
	if r.URL.RawPath == "" {
		return title, nil
	}
	return url.PathUnescape(title)
}

// storeError maps store failures to HTTP statuses.
func (s *Server) storeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrInvalidName):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error(message, "error", err)
		s.respondError(w, http.StatusInternalServerError, message)
	}
}
