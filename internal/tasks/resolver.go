package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

const startupKind = "startup"

// PlaceholderPrefix marks ids handed out for entities a dry run would create.
const PlaceholderPrefix = "pending-"

type cacheKey struct {
	kind string
	name string
}

type resolved struct {
	id      string
	startup *models.Startup
}

// Resolver finds or creates name-keyed entities (skills, hobbies, startups) for one import batch.
//
// Lookups are case-insensitive on the trimmed name. Results are cached per batch; entries created
// while processing a row stay pending until [Resolver.Commit] and are dropped by [Resolver.Discard],
// so a rolled-back row never leaks ids into later rows. A Resolver is not safe for concurrent use.
type Resolver struct {
	dryRun    bool
	committed map[cacheKey]resolved
	pending   map[cacheKey]resolved
}

// NewResolver creates a Resolver. In a dry run nothing is written and new entities get placeholder ids.
func NewResolver(dryRun bool) *Resolver {
	return &Resolver{
		dryRun:    dryRun,
		committed: make(map[cacheKey]resolved),
		pending:   make(map[cacheKey]resolved),
	}
}

func (r *Resolver) lookup(key cacheKey) (resolved, bool) {
	if e, ok := r.pending[key]; ok {
		return e, true
	}
	e, ok := r.committed[key]
	return e, ok
}

// Commit promotes everything resolved since the last Commit or Discard.
func (r *Resolver) Commit() {
	for k, e := range r.pending {
		r.committed[k] = e
	}
	clear(r.pending)
}

// Discard forgets everything resolved since the last Commit or Discard.
func (r *Resolver) Discard() {
	clear(r.pending)
}

// Cached returns the number of committed cache entries.
func (r *Resolver) Cached() int { return len(r.committed) }

func placeholderID() string { return PlaceholderPrefix + shared.GenerateID() }

// ResolveTag returns the id of the tag of kind named name, creating it when absent.
// An existing tag is returned unchanged.
func (r *Resolver) ResolveTag(store ImportStore, kind models.TagKind, name string) (string, error) {
	key := cacheKey{kind: string(kind), name: shared.NormalizeKey(name)}
	if key.name == "" {
		return "", fmt.Errorf("%w: blank %s name", shared.ErrInvalidInput, kind)
	}
	if e, ok := r.lookup(key); ok {
		return e.id, nil
	}

	tag, err := store.TagByName(kind, name)
	if err == nil {
		r.pending[key] = resolved{id: tag.ID()}
		return tag.ID(), nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return "", err
	}

	if r.dryRun {
		id := placeholderID()
		r.pending[key] = resolved{id: id}
		return id, nil
	}

	tag = models.NewTag(kind, name, "", "")
	if err := store.CreateTag(tag); err != nil {
		return "", err
	}
	r.pending[key] = resolved{id: tag.ID()}
	return tag.ID(), nil
}

// ResolveStartup returns the id of the startup named name, creating it with details when absent.
// For an existing startup only its empty descriptive fields are filled from details.
func (r *Resolver) ResolveStartup(store ImportStore, name string, details models.StartupDetails) (string, error) {
	key := cacheKey{kind: startupKind, name: shared.NormalizeKey(name)}
	if key.name == "" {
		return "", fmt.Errorf("%w: blank startup name", shared.ErrInvalidInput)
	}

	if e, ok := r.lookup(key); ok {
		return e.id, r.backfill(store, key, e, details)
	}

	startup, err := store.StartupByName(name)
	switch {
	case err == nil:
		e := resolved{id: startup.ID(), startup: startup}
		r.pending[key] = e
		return e.id, r.backfill(store, key, e, details)
	case !errors.Is(err, shared.ErrNotFound):
		return "", err
	}

	startup = models.NewStartup(name, models.StartupDetails{})
	startup.FillEmpty(details)

	if r.dryRun {
		startup.SetID(placeholderID())
	} else if err := store.SaveStartup(startup); err != nil {
		return "", err
	}

	r.pending[key] = resolved{id: startup.ID(), startup: startup}
	return startup.ID(), nil
}

// backfill fills empty startup fields on a copy, saving it outside dry runs, and stages the copy.
func (r *Resolver) backfill(store ImportStore, key cacheKey, e resolved, details models.StartupDetails) error {
	if e.startup == nil {
		return nil
	}

	updated := *e.startup
	if !updated.FillEmpty(details) {
		return nil
	}

	if !r.dryRun {
		if err := store.SaveStartup(&updated); err != nil {
			return fmt.Errorf("failed to update startup %q: %w", updated.Name, err)
		}
	}
	r.pending[key] = resolved{id: e.id, startup: &updated}
	return nil
}
