package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"wikiexplorer/internal/core"
)

// DefaultCollectionName is used by quick-save actions.
const DefaultCollectionName = "Reading list"

var (
	// ErrNotFound is returned for unknown collections or articles.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned when a collection name is blank.
	ErrInvalidName = errors.New("collection name is required")
)

// Store persists article collections in SQLite
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "wikiexplorer.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	collectionsTable := `
	CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME NOT NULL
	);`

	// Articles are keyed by title within a collection; saving again replaces.
	articlesTable := `
	CREATE TABLE IF NOT EXISTS collection_articles (
		collection_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT,
		article TEXT NOT NULL,
		saved_at DATETIME NOT NULL,
		PRIMARY KEY (collection_id, title),
		FOREIGN KEY (collection_id) REFERENCES collections (id) ON DELETE CASCADE
	);`

	tables := []string{collectionsTable, articlesTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateCollection stores a new, empty collection.
func (s *Store) CreateCollection(ctx context.Context, name, description string) (core.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Collection{}, ErrInvalidName
	}

	c := core.Collection{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		return core.Collection{}, fmt.Errorf("failed to create collection: %w", err)
	}
	return c, nil
}

// EnsureCollection returns the oldest collection called name, creating it
// when none exists.
func (s *Store) EnsureCollection(ctx context.Context, name string) (core.Collection, error) {
	row := s.db.QueryRowContext(ctx, collectionSelect+` WHERE c.name = ? GROUP BY c.id ORDER BY c.created_at LIMIT 1`,
		strings.TrimSpace(name))
	c, err := scanCollection(row)
	if errors.Is(err, ErrNotFound) {
		return s.CreateCollection(ctx, name, "")
	}
	return c, err
}

const collectionSelect = `
	SELECT c.id, c.name, c.description, c.created_at, COUNT(a.title)
	FROM collections c
	LEFT JOIN collection_articles a ON a.collection_id = c.id`

// ListCollections returns every collection, newest first.
func (s *Store) ListCollections(ctx context.Context) ([]core.Collection, error) {
	rows, err := s.db.QueryContext(ctx, collectionSelect+` GROUP BY c.id ORDER BY c.created_at DESC, c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	collections := []core.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// GetCollection returns one collection with its article count.
func (s *Store) GetCollection(ctx context.Context, id string) (core.Collection, error) {
	row := s.db.QueryRowContext(ctx, collectionSelect+` WHERE c.id = ? GROUP BY c.id`, id)
	return scanCollection(row)
}

// DeleteCollection removes a collection and its saved articles.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return requireAffected(res)
}

// SaveArticle adds article to a collection, replacing any earlier copy with
// the same title.
func (s *Store) SaveArticle(ctx context.Context, collectionID string, article core.Article) (core.SavedArticle, error) {
	if strings.TrimSpace(article.Title) == "" {
		return core.SavedArticle{}, fmt.Errorf("article title is required")
	}
	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return core.SavedArticle{}, err
	}

	payload, err := json.Marshal(article)
	if err != nil {
		return core.SavedArticle{}, fmt.Errorf("failed to encode article: %w", err)
	}

	saved := core.SavedArticle{
		CollectionID: collectionID,
		Article:      article,
		SavedAt:      time.Now().UTC(),
	}

	query := `
	INSERT OR REPLACE INTO collection_articles
	(collection_id, title, url, article, saved_at)
	VALUES (?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, collectionID, article.Title, article.URL(), string(payload), saved.SavedAt); err != nil {
		return core.SavedArticle{}, fmt.Errorf("failed to save article: %w", err)
	}
	return saved, nil
}

// ListArticles returns the articles of a collection, most recently saved first.
func (s *Store) ListArticles(ctx context.Context, collectionID string) ([]core.SavedArticle, error) {
	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT article, saved_at FROM collection_articles WHERE collection_id = ? ORDER BY saved_at DESC, title`,
		collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []core.SavedArticle{}
	for rows.Next() {
		var payload string
		saved := core.SavedArticle{CollectionID: collectionID}
		if err := rows.Scan(&payload, &saved.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &saved.Article); err != nil {
			return nil, fmt.Errorf("failed to decode article: %w", err)
		}
		articles = append(articles, saved)
	}
	return articles, rows.Err()
}

// RemoveArticle deletes one article from a collection.
func (s *Store) RemoveArticle(ctx context.Context, collectionID, title string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM collection_articles WHERE collection_id = ? AND title = ?`, collectionID, title)
	if err != nil {
		return fmt.Errorf("failed to remove article: %w", err)
	}
	return requireAffected(res)
}

// Stats holds store statistics
type Stats struct {
	CollectionCount int
	ArticleCount    int
	Size            int64
	LastUpdated     time.Time
}

// GetStats returns row counts and the database file size.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM collections":         &stats.CollectionCount,
		"SELECT COUNT(*) FROM collection_articles": &stats.ArticleCount,
	}

	for query, target := range queries {
		if err := s.db.QueryRowContext(ctx, query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.Size = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollection(row scanner) (core.Collection, error) {
	var c core.Collection
	var description sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &description, &c.CreatedAt, &c.ArticleCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Collection{}, ErrNotFound
		}
		return core.Collection{}, fmt.Errorf("failed to scan collection: %w", err)
	}
	c.Description = description.String
	return c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
