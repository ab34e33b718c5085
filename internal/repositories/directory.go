package repositories

import (
	"context"
	"database/sql"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/tasks"
)

// Directory bundles the repositories bound to one [Querier].
type Directory struct {
	db           *sql.DB
	Founders     *FounderRepository
	Startups     *StartupRepository
	Skills       *TagRepository
	Hobbies      *TagRepository
	HelpRequests *HelpRequestRepository
	Events       *EventRepository
	ImportRuns   *ImportRunRepository
}

// NewDirectory creates a [Directory] over the connection pool.
func NewDirectory(db *sql.DB) *Directory {
	d := bind(db)
	d.db = db
	return d
}

func bind(q Querier) *Directory {
	return &Directory{
		Founders:     NewFounderRepository(q),
		Startups:     NewStartupRepository(q),
		Skills:       NewTagRepository(q, models.KindSkill),
		Hobbies:      NewTagRepository(q, models.KindHobby),
		HelpRequests: NewHelpRequestRepository(q),
		Events:       NewEventRepository(q),
		ImportRuns:   NewImportRunRepository(q),
	}
}

// DB returns the underlying connection pool.
func (d *Directory) DB() *sql.DB { return d.db }

// Tags returns the repository for kind.
func (d *Directory) Tags(kind models.TagKind) *TagRepository {
	if kind == models.KindHobby {
		return d.Hobbies
	}
	return d.Skills
}

// InTx runs fn with a Directory bound to a single transaction.
func (d *Directory) InTx(ctx context.Context, fn func(*Directory) error) error {
	return RunInTx(ctx, d.db, func(q Querier) error {
		tx := bind(q)
		tx.db = d.db
		return fn(tx)
	})
}

// ImportAdapter implements [tasks.Transactor] using a [Directory].
//
// Reads outside Atomically go straight to the pool; each Atomically call is one transaction.
type ImportAdapter struct {
	dir *Directory
}

// NewImportAdapter creates a new [ImportAdapter] over dir
func NewImportAdapter(dir *Directory) *ImportAdapter {
	return &ImportAdapter{dir: dir}
}

func (a *ImportAdapter) FounderByEmail(email string) (*models.Founder, error) {
	return a.dir.Founders.GetByEmail(email)
}

// SaveFounder creates the founder when it has no ID yet and updates it otherwise.
func (a *ImportAdapter) SaveFounder(founder *models.Founder) error {
	if founder.ID() == "" {
		return a.dir.Founders.Create(founder)
	}
	return a.dir.Founders.Update(founder)
}

func (a *ImportAdapter) TagByName(kind models.TagKind, name string) (*models.Tag, error) {
	return a.dir.Tags(kind).GetByName(name)
}

func (a *ImportAdapter) CreateTag(tag *models.Tag) error {
	return a.dir.Tags(tag.Kind).Create(tag)
}

func (a *ImportAdapter) StartupByName(name string) (*models.Startup, error) {
	return a.dir.Startups.GetByName(name)
}

// SaveStartup creates the startup when it has no ID yet and updates it otherwise.
func (a *ImportAdapter) SaveStartup(startup *models.Startup) error {
	if startup.ID() == "" {
		return a.dir.Startups.Create(startup)
	}
	return a.dir.Startups.Update(startup)
}

// Atomically runs fn against an adapter bound to one transaction.
func (a *ImportAdapter) Atomically(ctx context.Context, fn func(tasks.ImportStore) error) error {
	return a.dir.InTx(ctx, func(tx *Directory) error {
		return fn(NewImportAdapter(tx))
	})
}
