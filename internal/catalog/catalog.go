// Package catalog stores the tags and snippets served by the hint service.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/NikitaCOEUR/snipcomplete/internal/cerrors"
)

// MemoryPath opens a private in-memory catalog
const MemoryPath = ":memory:"

// DefaultLimit is the number of hints returned per query
const DefaultLimit = 10

// Tag is a tag slug with the number of snippets using it
type Tag struct {
	Slug  string `yaml:"slug" json:"tag"`
	Count int    `yaml:"count" json:"count"`
}

// Snippet is a searchable snippet title with its page URL
type Snippet struct {
	Title  string `yaml:"title" json:"title"`
	Author string `yaml:"author" json:"author"`
	URL    string `yaml:"url" json:"url"`
}

// Store is a SQLite-backed catalog
type Store struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

const schema = `
CREATE TABLE IF NOT EXISTS tags (
	slug  TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS snippets (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	title  TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	url    TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_tags_count ON tags(count DESC, slug);
`

// Open opens (and creates if needed) the catalog at path.
// MemoryPath gives an empty catalog that lives as long as the Store.
func Open(path string) (*Store, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, cerrors.NewCatalogError("open", "failed to create catalog directory", err)
		}
		// modernc.org/sqlite uses _pragma=name(value) syntax
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, cerrors.NewCatalogError("open", "failed to open catalog", err)
	}

	// A single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, cerrors.NewCatalogError("open", "failed to connect to catalog", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, cerrors.NewCatalogError("migrate", "failed to create schema", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// PutTag inserts a tag or replaces its count
func (s *Store) PutTag(ctx context.Context, tag Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (slug, count) VALUES (?, ?)
		 ON CONFLICT(slug) DO UPDATE SET count = excluded.count`,
		tag.Slug, tag.Count)
	if err != nil {
		return cerrors.NewCatalogError("put_tag", fmt.Sprintf("failed to store tag %q", tag.Slug), err)
	}
	return nil
}

// PutSnippet inserts a snippet or updates the one with the same URL
func (s *Store) PutSnippet(ctx context.Context, snippet Snippet) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snippets (title, author, url) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET title = excluded.title, author = excluded.author`,
		snippet.Title, snippet.Author, snippet.URL)
	if err != nil {
		return cerrors.NewCatalogError("put_snippet", fmt.Sprintf("failed to store snippet %q", snippet.URL), err)
	}
	return nil
}

// TagHints returns tags whose slug starts with prefix (case-sensitive),
// most used first, ties broken by slug
func (s *Store) TagHints(ctx context.Context, prefix string, limit int) ([]Tag, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, count FROM tags
		 WHERE substr(slug, 1, length(?)) = ?
		 ORDER BY count DESC, slug ASC
		 LIMIT ?`,
		prefix, prefix, limit)
	if err != nil {
		return nil, cerrors.NewCatalogError("tag_hints", "failed to query tags", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Slug, &t.Count); err != nil {
			return nil, cerrors.NewCatalogError("tag_hints", "failed to read tag", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewCatalogError("tag_hints", "failed to read tags", err)
	}
	return tags, nil
}

// SnippetHints returns snippets whose title contains q, ignoring case
func (s *Store) SnippetHints(ctx context.Context, q string, limit int) ([]Snippet, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, author, url FROM snippets
		 WHERE instr(lower(title), ?) > 0
		 ORDER BY title ASC, id ASC
		 LIMIT ?`,
		strings.ToLower(q), limit)
	if err != nil {
		return nil, cerrors.NewCatalogError("snippet_hints", "failed to query snippets", err)
	}
	defer rows.Close()

	snippets := []Snippet{}
	for rows.Next() {
		var sn Snippet
		if err := rows.Scan(&sn.Title, &sn.Author, &sn.URL); err != nil {
			return nil, cerrors.NewCatalogError("snippet_hints", "failed to read snippet", err)
		}
		snippets = append(snippets, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewCatalogError("snippet_hints", "failed to read snippets", err)
	}
	return snippets, nil
}

// Counts returns the number of stored tags and snippets
func (s *Store) Counts(ctx context.Context) (tags int, snippets int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM tags`).Scan(&tags); err != nil {
		return 0, 0, cerrors.NewCatalogError("counts", "failed to count tags", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM snippets`).Scan(&snippets); err != nil {
		return 0, 0, cerrors.NewCatalogError("counts", "failed to count snippets", err)
	}
	return tags, snippets, nil
}
