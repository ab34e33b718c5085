package tasks

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

//go:embed catalog.toml
var defaultCatalog []byte

// CatalogEntry is one skill or hobby in a seed catalog.
type CatalogEntry struct {
	Name        string `toml:"name"`
	Category    string `toml:"category"`
	Description string `toml:"description"`
}

// Catalog holds the vocabularies seeded into a fresh directory.
type Catalog struct {
	Skills  []CatalogEntry `toml:"skills"`
	Hobbies []CatalogEntry `toml:"hobbies"`
}

// Entries returns the catalog entries for kind.
func (c *Catalog) Entries(kind models.TagKind) []CatalogEntry {
	if kind == models.KindHobby {
		return c.Hobbies
	}
	return c.Skills
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog parses a TOML catalog with [[skills]] and [[hobbies]] tables.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: failed to parse catalog: %v", shared.ErrInvalidInput, err)
	}
	return &c, nil
}

// SeedResult counts the tags a seed run created and found.
type SeedResult struct {
	Kind     models.TagKind
	Created  int
	Existing int
}

// Seed creates every catalog entry of kind that does not exist yet. Existing tags are left untouched.
func Seed(store ImportStore, catalog *Catalog, kind models.TagKind, progress chan<- ProgressUpdate) (*SeedResult, error) {
	entries := catalog.Entries(kind)
	result := &SeedResult{Kind: kind}

	for i, entry := range entries {
		_, err := store.TagByName(kind, entry.Name)
		switch {
		case err == nil:
			result.Existing++
			sendProgress(progress, seedUpdate(i+1, len(entries), kind, entry.Name, false))
			continue
		case !errors.Is(err, shared.ErrNotFound):
			return result, fmt.Errorf("failed to look up %s %q: %w", kind, entry.Name, err)
		}

		if err := store.CreateTag(models.NewTag(kind, entry.Name, entry.Category, entry.Description)); err != nil {
			return result, fmt.Errorf("failed to create %s %q: %w", kind, entry.Name, err)
		}
		result.Created++
		sendProgress(progress, seedUpdate(i+1, len(entries), kind, entry.Name, true))
	}
	return result, nil
}
