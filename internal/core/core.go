package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest is returned when an article request is malformed.
var ErrInvalidRequest = errors.New("invalid article request")

// RequestKind identifies which fetch strategy produces an article.
type RequestKind string

const (
	// KindRandom asks for a uniformly random article.
	KindRandom RequestKind = "random"
	// KindRelated asks for an article related to a source title.
	KindRelated RequestKind = "related"
)

// ParseRequestKind converts user input into a RequestKind.
// An empty string defaults to KindRandom.
func ParseRequestKind(s string) (RequestKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(KindRandom):
		return KindRandom, nil
	case string(KindRelated):
		return KindRelated, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, s)
	}
}

// Request describes the article a caller wants next.
type Request struct {
	Kind  RequestKind `json:"kind"`            // Fetch strategy
	Title string      `json:"title,omitempty"` // Source title, only meaningful for KindRelated
}

// RandomRequest returns a request for a random article.
func RandomRequest() Request {
	return Request{Kind: KindRandom}
}

// RelatedRequest returns a request for an article related to title.
func RelatedRequest(title string) Request {
	return Request{Kind: KindRelated, Title: strings.TrimSpace(title)}
}

// Normalize drops the title from random requests so that comparison is by
// kind and parameter only.
func (r Request) Normalize() Request {
	if r.Kind == "" {
		r.Kind = KindRandom
	}
	if r.Kind == KindRandom {
		r.Title = ""
	}
	r.Title = strings.TrimSpace(r.Title)
	return r
}

// Validate checks that the request is well formed.
func (r Request) Validate() error {
	switch r.Kind {
	case KindRandom, "":
		return nil
	case KindRelated:
		if strings.TrimSpace(r.Title) == "" {
			return fmt.Errorf("%w: related request requires a source title", ErrInvalidRequest)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}
}

// Matches reports whether two requests select the same strategy and parameter.
func (r Request) Matches(other Request) bool {
	return r.Normalize() == other.Normalize()
}

func (r Request) String() string {
	n := r.Normalize()
	if n.Kind == KindRelated {
		return fmt.Sprintf("related(%s)", n.Title)
	}
	return string(n.Kind)
}

// SameTitle compares two titles ignoring underscores, surrounding space and case.
func SameTitle(a, b string) bool {
	norm := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	}
	return strings.EqualFold(norm(a), norm(b))
}

// Thumbnail is the lead image of an article.
type Thumbnail struct {
	Source string `json:"source"` // Image URL
	Width  int    `json:"width"`  // Width in pixels
	Height int    `json:"height"` // Height in pixels
}

// PageURL holds the canonical page URL for one platform.
type PageURL struct {
	Page string `json:"page"`
}

// ContentURLs holds canonical page URLs as returned by the summary endpoint.
type ContentURLs struct {
	Desktop PageURL `json:"desktop"`
	Mobile  PageURL `json:"mobile,omitempty"`
}

// Section is one content section of an enriched article.
type Section struct {
	Title           string `json:"title"`             // Heading text
	Content         string `json:"content"`           // Rendered plain text
	OriginalContent string `json:"original_content"`  // Unprocessed paragraph HTML, links intact
	Summary         string `json:"summary,omitempty"` // Condensed text, empty when summarization failed
}

// Article is an encyclopedia article summary, optionally enriched with sections.
// An Article is treated as immutable once built; holders own their copy.
type Article struct {
	Title       string      `json:"title"`
	Extract     string      `json:"extract"`
	Thumbnail   *Thumbnail  `json:"thumbnail,omitempty"`
	ContentURLs ContentURLs `json:"content_urls"`
	Sections    []Section   `json:"sections,omitempty"`
}

// URL returns the canonical desktop page URL.
func (a Article) URL() string {
	return a.ContentURLs.Desktop.Page
}

// Enriched reports whether the article carries processed sections.
func (a Article) Enriched() bool {
	return len(a.Sections) > 0
}

// Clone returns a deep copy so that callers never share section slices.
func (a Article) Clone() Article {
	out := a
	if a.Thumbnail != nil {
		thumb := *a.Thumbnail
		out.Thumbnail = &thumb
	}
	if a.Sections != nil {
		out.Sections = make([]Section, len(a.Sections))
		copy(out.Sections, a.Sections)
	}
	return out
}

// Collection is a named, user-curated list of saved articles.
type Collection struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ArticleCount int       `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// SavedArticle is an article stored in a collection.
type SavedArticle struct {
	CollectionID string    `json:"collection_id"`
	Article      Article   `json:"article"`
	SavedAt      time.Time `json:"saved_at"`
}
