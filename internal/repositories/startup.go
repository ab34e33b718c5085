package repositories

import (
	"fmt"
	"time"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

const startupColumns = `id, sequence, name, description, industry, stage, website_url, target_market, revenue_arr, created_at, updated_at`

// StartupRepository implements [models.Repository] for [models.Startup] persistence.
type StartupRepository struct {
	q Querier
}

// NewStartupRepository creates a new [StartupRepository] over q
func NewStartupRepository(q Querier) *StartupRepository {
	return &StartupRepository{q: q}
}

// Create inserts a new startup with generated ID and sequence
func (r *StartupRepository) Create(startup *models.Startup) error {
	if err := startup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.q, func(q Querier) error {
		sequence, err := NextSequence(q, "startups")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()
		query := `
			INSERT INTO startups (id, sequence, name, name_key, description, industry, stage, website_url,
				target_market, revenue_arr, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = q.Exec(query, id, sequence, startup.Name, startup.NameKey(),
			startup.Description, startup.Industry, startup.Stage, startup.WebsiteURL,
			startup.TargetMarket, startup.RevenueARR, startup.CreatedAt(), startup.UpdatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert startup: %w", err)
		}

		startup.SetID(id)
		startup.SetSequence(sequence)
		return nil
	})
}

// Get retrieves a startup by ID
func (r *StartupRepository) Get(id string) (*models.Startup, error) {
	startup, err := scanStartup(r.q.QueryRow(`SELECT `+startupColumns+` FROM startups WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "startup", id)
	}
	return startup, nil
}

// GetByName retrieves the oldest startup whose name matches, ignoring case and surrounding whitespace.
func (r *StartupRepository) GetByName(name string) (*models.Startup, error) {
	query := `SELECT ` + startupColumns + ` FROM startups WHERE name_key = ? ORDER BY sequence ASC LIMIT 1`
	startup, err := scanStartup(r.q.QueryRow(query, shared.NormalizeKey(name)))
	if err != nil {
		return nil, notFound(err, "startup", name)
	}
	return startup, nil
}

// Update modifies an existing startup
func (r *StartupRepository) Update(startup *models.Startup) error {
	if err := startup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE startups
		SET name = ?, name_key = ?, description = ?, industry = ?, stage = ?, website_url = ?,
			target_market = ?, revenue_arr = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.q.Exec(query, startup.Name, startup.NameKey(), startup.Description, startup.Industry,
		startup.Stage, startup.WebsiteURL, startup.TargetMarket, startup.RevenueARR, now, startup.ID())
	if err != nil {
		return fmt.Errorf("failed to update startup: %w", err)
	}
	if err := checkAffected(result, "startup", startup.ID()); err != nil {
		return err
	}

	startup.SetUpdatedAt(now)
	return nil
}

// Delete removes a startup; founders attached to it are detached by the foreign key.
func (r *StartupRepository) Delete(id string) error {
	result, err := r.q.Exec(`DELETE FROM startups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete startup: %w", err)
	}
	return checkAffected(result, "startup", id)
}

// List retrieves startups ordered by sequence. Supported criteria: "industry", "stage", "limit", "offset".
func (r *StartupRepository) List(criteria map[string]any) ([]*models.Startup, error) {
	query := `SELECT ` + startupColumns + ` FROM startups WHERE 1 = 1`
	args := []any{}

	if industry, ok := criteria["industry"].(string); ok && industry != "" {
		query += " AND industry = ?"
		args = append(args, industry)
	}
	if stage, ok := criteria["stage"].(string); ok && stage != "" {
		query += " AND stage = ?"
		args = append(args, stage)
	}
	query += " ORDER BY sequence ASC" + pagination(criteria)

	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query startups: %w", err)
	}
	defer rows.Close()

	var startups []*models.Startup
	for rows.Next() {
		startup, err := scanStartup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan startup: %w", err)
		}
		startups = append(startups, startup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return startups, nil
}

func scanStartup(row scanner) (*models.Startup, error) {
	var (
		id, name             string
		sequence             int
		details              models.StartupDetails
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &name, &details.Description, &details.Industry, &details.Stage,
		&details.WebsiteURL, &details.TargetMarket, &details.RevenueARR, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	startup := models.NewStartup(name, details)
	startup.SetID(id)
	startup.SetSequence(sequence)
	startup.SetCreatedAt(createdAt)
	startup.SetUpdatedAt(updatedAt)
	return startup, nil
}
