package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/founders/internal/formatter"
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/repositories"
	"github.com/desertthunder/founders/internal/search"
	"github.com/desertthunder/founders/internal/shared"
	"github.com/desertthunder/founders/internal/tasks"
)

// ExportFounders writes founders to a CSV that the importer accepts unchanged.
func (r *Runner) ExportFounders(ctx context.Context, cmd *cli.Command) error {
	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	criteria := map[string]any{}
	if !cmd.Bool("include-hidden") {
		criteria["visible"] = true
	}
	founders, err := dir.Founders.List(criteria)
	if err != nil {
		return err
	}

	rows, err := exportRows(dir, founders)
	if err != nil {
		return err
	}

	path, err := formatter.WriteFoundersCSV(rows, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("export complete", "path", path, "founders", len(rows))
	r.writePlain("✓ Exported %d founders to %s\n", len(rows), path)
	return nil
}

// exportRows resolves startup and tag names for each founder.
func exportRows(dir *repositories.Directory, founders []*models.Founder) ([]formatter.FounderRow, error) {
	names := map[models.TagKind]map[string]string{}
	for _, kind := range []models.TagKind{models.KindSkill, models.KindHobby} {
		tags, err := dir.Tags(kind).List(map[string]any{})
		if err != nil {
			return nil, err
		}
		names[kind] = make(map[string]string, len(tags))
		for _, t := range tags {
			names[kind][t.ID()] = t.Name
		}
	}

	startups := map[string]*models.Startup{}
	rows := make([]formatter.FounderRow, 0, len(founders))
	for _, f := range founders {
		row := formatter.FounderRow{Founder: f}
		if f.StartupID != "" {
			s, ok := startups[f.StartupID]
			if !ok {
				var err error
				if s, err = dir.Startups.Get(f.StartupID); err != nil {
					return nil, fmt.Errorf("failed to load startup for %s: %w", f.Email, err)
				}
				startups[f.StartupID] = s
			}
			row.Startup = s
		}
		row.Skills = lookupNames(names[models.KindSkill], f.SkillIDs)
		row.Hobbies = lookupNames(names[models.KindHobby], f.HobbyIDs)
		rows = append(rows, row)
	}
	return rows, nil
}

func lookupNames(names map[string]string, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Seed creates the catalog's skills and hobbies that are missing. Safe to run repeatedly.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	var kinds []models.TagKind
	switch strings.ToLower(cmd.StringArg("kind")) {
	case "", "all":
		kinds = []models.TagKind{models.KindSkill, models.KindHobby}
	case "skills", "skill":
		kinds = []models.TagKind{models.KindSkill}
	case "hobbies", "hobby":
		kinds = []models.TagKind{models.KindHobby}
	default:
		return fmt.Errorf("%w: seed takes skills, hobbies or all, got %q", shared.ErrInvalidArgument, cmd.StringArg("kind"))
	}

	catalog, err := r.catalog(cmd.String("catalog"))
	if err != nil {
		return err
	}

	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	results := make([]*tasks.SeedResult, 0, len(kinds))
	err = repositories.NewImportAdapter(dir).Atomically(ctx, func(store tasks.ImportStore) error {
		for _, kind := range kinds {
			result, err := tasks.Seed(store, catalog, kind, nil)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	for _, result := range results {
		r.logger.Info("seeded", "kind", result.Kind, "created", result.Created, "existing", result.Existing)
		r.writePlain("✓ %s: %d created, %d already present\n", result.Kind.Table(), result.Created, result.Existing)
	}
	return nil
}

func (r *Runner) catalog(path string) (*tasks.Catalog, error) {
	if path == "" {
		return tasks.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return tasks.ParseCatalog(data)
}

// ListFounders prints founder profiles.
func (r *Runner) ListFounders(ctx context.Context, cmd *cli.Command) error {
	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if !cmd.Bool("hidden") {
		criteria["visible"] = true
	}
	founders, err := dir.Founders.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]founderJSON, 0, len(founders))
		for _, f := range founders {
			out = append(out, newFounderJSON(f))
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Founders (%d)", len(founders)))
	for _, f := range founders {
		marker := " "
		if !f.ProfileVisible {
			marker = "~"
		}
		r.writePlain("%s %-28s %-32s %s\n", marker, f.Name, f.Email, f.Location)
	}
	return nil
}

type founderJSON struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Bio            string   `json:"bio,omitempty"`
	Location       string   `json:"location,omitempty"`
	LinkedInURL    string   `json:"linkedin_url"`
	ProfileVisible bool     `json:"profile_visible"`
	StartupID      string   `json:"startup_id,omitempty"`
	SkillIDs       []string `json:"skill_ids"`
	HobbyIDs       []string `json:"hobby_ids"`
}

func newFounderJSON(f *models.Founder) founderJSON {
	return founderJSON{
		ID: f.ID(), Name: f.Name, Email: f.Email, Bio: f.Bio, Location: f.Location, LinkedInURL: f.LinkedInURL,
		ProfileVisible: f.ProfileVisible, StartupID: f.StartupID, SkillIDs: nonNil(f.SkillIDs), HobbyIDs: nonNil(f.HobbyIDs),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Search ranks visible founders, startups, skills and hobbies against the query argument.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	dir, closeDB, err := r.openDirectory()
	if err != nil {
		return err
	}
	defer closeDB()

	founders, err := dir.Founders.List(map[string]any{"visible": true})
	if err != nil {
		return err
	}
	startups, err := dir.Startups.List(map[string]any{})
	if err != nil {
		return err
	}
	docs := append(search.FounderDocuments(founders), search.StartupDocuments(startups)...)
	for _, kind := range []models.TagKind{models.KindSkill, models.KindHobby} {
		tags, err := dir.Tags(kind).List(map[string]any{})
		if err != nil {
			return err
		}
		docs = append(docs, search.TagDocuments(tags)...)
	}

	hits := search.Find(query, docs, int(cmd.Int("limit")))
	if cmd.Bool("json") {
		return r.writeJSON(hits, true)
	}

	if len(hits) == 0 {
		r.writePlain("No matches for %q\n", query)
		return nil
	}
	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	for _, h := range hits {
		r.writePlain("%-8s %-32s %s\n", h.Kind, h.Label, h.ID)
	}
	return nil
}
