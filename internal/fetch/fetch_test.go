package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"wikiexplorer/internal/logger"
)

// fakeWiki serves the subset of the REST and Action APIs the client uses.
type fakeWiki struct {
	mu sync.Mutex

	random       []string            // Titles served by /page/random/summary, in order
	randomStatus int                 // Non-zero forces a status for random requests
	links        map[string][]string // Source title -> linked titles ("NS:Title" for namespaced)
	categories   map[string]string   // Source title -> first category
	members      map[string][]string // Category -> member titles
	redirects    map[string]string   // Summary title -> resolved title
	failSummary  map[string]bool     // Summary titles answered with 500
	html         map[string]string   // Title -> rendered markup

	requests   []string
	userAgents []string
	randomHits int
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{
		links:       map[string][]string{},
		categories:  map[string]string{},
		members:     map[string][]string{},
		redirects:   map[string]string{},
		failSummary: map[string]bool{},
		html:        map[string]string{},
	}
}

func (f *fakeWiki) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeWiki) client(srv *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithRESTBaseURL(srv.URL + "/rest"),
		WithActionBaseURL(srv.URL + "/w/api.php"),
		WithLogger(logger.Discard()),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	return NewClient(append(base, opts...)...)
}

func (f *fakeWiki) randomCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.randomHits
}

func (f *fakeWiki) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeWiki) agentLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.userAgents...)
}

func (f *fakeWiki) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.EscapedPath()
	f.requests = append(f.requests, path+"?"+r.URL.RawQuery)
	f.userAgents = append(f.userAgents, r.Header.Get("User-Agent"))

	switch {
	case path == "/rest/page/random/summary":
		if f.randomStatus != 0 {
			w.WriteHeader(f.randomStatus)
			return
		}
		if len(f.random) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		title := f.random[f.randomHits%len(f.random)]
		f.randomHits++
		writeSummary(w, title)

	case strings.HasPrefix(path, "/rest/page/summary/"):
		title := pathTitle(strings.TrimPrefix(path, "/rest/page/summary/"))
		if f.failSummary[title] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if target, ok := f.redirects[title]; ok {
			title = target
		}
		writeSummary(w, title)

	case strings.HasPrefix(path, "/rest/page/html/"):
		title := pathTitle(strings.TrimPrefix(path, "/rest/page/html/"))
		html, ok := f.html[title]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))

	case path == "/w/api.php":
		f.serveQuery(w, r.URL.Query())

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeWiki) serveQuery(w http.ResponseWriter, q url.Values) {
	var resp queryResponse
	title := q.Get("titles")

	switch {
	case q.Get("prop") == "links":
		page := queryPage{Title: title}
		for _, l := range f.links[title] {
			page.Links = append(page.Links, item(l))
		}
		resp.Query.Pages = append(resp.Query.Pages, page)

	case q.Get("prop") == "categories":
		page := queryPage{Title: title}
		if c, ok := f.categories[title]; ok {
			page.Categories = []queryItem{{NS: 14, Title: c}}
		}
		resp.Query.Pages = append(resp.Query.Pages, page)

	case q.Get("list") == "categorymembers":
		for _, m := range f.members[q.Get("cmtitle")] {
			resp.Query.CategoryMembers = append(resp.Query.CategoryMembers, item(m))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// item maps "Category:X" style titles to their namespace.
func item(title string) queryItem {
	switch {
	case strings.HasPrefix(title, "Category:"):
		return queryItem{NS: 14, Title: title}
	case strings.HasPrefix(title, "Template:"):
		return queryItem{NS: 10, Title: title}
	default:
		return queryItem{NS: 0, Title: title}
	}
}

func pathTitle(escaped string) string {
	title, err := url.PathUnescape(escaped)
	if err != nil {
		title = escaped
	}
	return strings.ReplaceAll(title, "_", " ")
}

func writeSummary(w http.ResponseWriter, title string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"title":   title,
		"extract": title + " is an article.",
		"content_urls": map[string]any{
			"desktop": map[string]string{"page": "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(title, " ", "_")},
		},
	})
}

func TestFetchRandomArticle(t *testing.T) {
	wiki := newFakeWiki()
	wiki.random = []string{"Banana"}
	srv := wiki.start(t)

	article, err := wiki.client(srv, WithUserAgent("wikiexplorer-test/1.0")).FetchRandomArticle(context.Background())
	if err != nil {
		t.Fatalf("FetchRandomArticle failed: %v", err)
	}
	if article.Title != "Banana" {
		t.Errorf("Expected Banana, got %q", article.Title)
	}
	if article.URL() != "https://en.wikipedia.org/wiki/Banana" {
		t.Errorf("Expected canonical URL, got %q", article.URL())
	}
	if wiki.agentLog()[0] != "wikiexplorer-test/1.0" {
		t.Errorf("Expected User-Agent header, got %q", wiki.agentLog()[0])
	}
}

func TestFetchRandomArticle_HTTPError(t *testing.T) {
	wiki := newFakeWiki()
	wiki.randomStatus = http.StatusTooManyRequests
	srv := wiki.start(t)

	_, err := wiki.client(srv).FetchRandomArticle(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", fe.StatusCode)
	}
	if !IsFetchError(err) {
		t.Error("IsFetchError should report true")
	}
}

func TestFetchRandomArticle_TransportError(t *testing.T) {
	wiki := newFakeWiki()
	srv := wiki.start(t)
	client := wiki.client(srv)
	srv.Close()

	_, err := client.FetchRandomArticle(context.Background())
	if !IsFetchError(err) {
		t.Errorf("Expected FetchError for closed server, got %v", err)
	}
}

func TestFetchSummary_EscapesTitle(t *testing.T) {
	wiki := newFakeWiki()
	srv := wiki.start(t)

	article, err := wiki.client(srv).FetchSummary(context.Background(), "AC/DC live")
	if err != nil {
		t.Fatalf("FetchSummary failed: %v", err)
	}
	if article.Title != "AC/DC live" {
		t.Errorf("Expected title round trip, got %q", article.Title)
	}
	if !strings.HasPrefix(wiki.requestLog()[0], "/rest/page/summary/AC%2FDC_live") {
		t.Errorf("Expected escaped path, got %q", wiki.requestLog()[0])
	}
}

func TestFetchArticleHTML(t *testing.T) {
	wiki := newFakeWiki()
	wiki.html["Octopus"] = "<h2>Anatomy</h2><p>Eight arms.</p>"
	srv := wiki.start(t)
	client := wiki.client(srv)

	html, err := client.FetchArticleHTML(context.Background(), "Octopus")
	if err != nil {
		t.Fatalf("FetchArticleHTML failed: %v", err)
	}
	if !strings.Contains(html, "Eight arms.") {
		t.Errorf("Unexpected markup %q", html)
	}

	if _, err := client.FetchArticleHTML(context.Background(), "Missing"); !IsFetchError(err) {
		t.Errorf("Expected FetchError for missing page, got %v", err)
	}
}
