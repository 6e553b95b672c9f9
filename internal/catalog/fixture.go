package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/snipcomplete/internal/cerrors"
)

// Fixture is the YAML seed format of a catalog
type Fixture struct {
	Tags     []Tag     `yaml:"tags"`
	Snippets []Snippet `yaml:"snippets"`
}

// ParseFixture decodes a YAML fixture
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, cerrors.NewCatalogError("fixture", "invalid fixture", err)
	}

	for i, t := range f.Tags {
		if strings.TrimSpace(t.Slug) == "" {
			return nil, cerrors.NewCatalogError("fixture", fmt.Sprintf("tag %d has no slug", i), nil)
		}
	}
	for i, s := range f.Snippets {
		if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.URL) == "" {
			return nil, cerrors.NewCatalogError("fixture", fmt.Sprintf("snippet %d needs a title and a url", i), nil)
		}
	}
	return &f, nil
}

// LoadFixture reads and decodes a YAML fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.NewCatalogError("fixture", fmt.Sprintf("failed to read %s", path), err)
	}
	return ParseFixture(data)
}

// Seed stores every tag and snippet of f in one transaction
func (s *Store) Seed(ctx context.Context, f *Fixture) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.NewCatalogError("seed", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range f.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (slug, count) VALUES (?, ?)
			 ON CONFLICT(slug) DO UPDATE SET count = excluded.count`,
			t.Slug, t.Count); err != nil {
			return cerrors.NewCatalogError("seed", fmt.Sprintf("failed to seed tag %q", t.Slug), err)
		}
	}
	for _, sn := range f.Snippets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippets (title, author, url) VALUES (?, ?, ?)
			 ON CONFLICT(url) DO UPDATE SET title = excluded.title, author = excluded.author`,
			sn.Title, sn.Author, sn.URL); err != nil {
			return cerrors.NewCatalogError("seed", fmt.Sprintf("failed to seed snippet %q", sn.URL), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return cerrors.NewCatalogError("seed", "failed to commit seed", err)
	}
	return nil
}
