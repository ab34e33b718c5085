package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

const importRunColumns = `id, sequence, actor, source, dry_run, mode, status, archive_key, error_message,
	processed, created, updated, skipped, errors, completed_at, created_at, updated_at, deleted_at`

// ImportRunRepository implements [models.Repository] for [models.ImportRun] history.
//
// Runs are soft deleted and listed newest first.
type ImportRunRepository struct {
	q Querier
}

// NewImportRunRepository creates a new [ImportRunRepository] over q
func NewImportRunRepository(q Querier) *ImportRunRepository {
	return &ImportRunRepository{q: q}
}

// Create inserts a new import run with generated ID and sequence
func (r *ImportRunRepository) Create(run *models.ImportRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.q, func(q Querier) error {
		sequence, err := NextSequence(q, "import_runs")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()
		query := `
			INSERT INTO import_runs (
				id, sequence, actor, source, dry_run, mode, status, archive_key, error_message,
				processed, created, updated, skipped, errors, completed_at, created_at, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = q.Exec(query,
			id, sequence, run.Actor, run.Source, run.DryRun, run.Mode, run.Status,
			nullString(run.ArchiveKey), nullString(run.Error),
			run.Processed, run.Created, run.Updated, run.Skipped, run.Errors,
			run.CompletedAt, run.CreatedAt(), run.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert import run: %w", err)
		}

		run.SetID(id)
		run.SetSequence(sequence)
		return nil
	})
}

// Get retrieves an import run by ID, excluding soft-deleted runs
func (r *ImportRunRepository) Get(id string) (*models.ImportRun, error) {
	query := `SELECT ` + importRunColumns + ` FROM import_runs WHERE id = ? AND deleted_at IS NULL`
	run, err := scanImportRun(r.q.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, "import run", id)
	}
	return run, nil
}

// Update records the outcome of a run
func (r *ImportRunRepository) Update(run *models.ImportRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE import_runs
		SET status = ?, archive_key = ?, error_message = ?, processed = ?, created = ?, updated = ?,
			skipped = ?, errors = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.q.Exec(query,
		run.Status, nullString(run.ArchiveKey), nullString(run.Error),
		run.Processed, run.Created, run.Updated, run.Skipped, run.Errors,
		run.CompletedAt, now, run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update import run: %w", err)
	}
	if err := checkAffected(result, "import run", run.ID()); err != nil {
		return err
	}

	run.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes an import run by ID
func (r *ImportRunRepository) Delete(id string) error {
	result, err := r.q.Exec(
		`UPDATE import_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete import run: %w", err)
	}
	return checkAffected(result, "import run", id)
}

// List retrieves import runs, newest first. Supported criteria: "actor", "status", "limit", "offset".
func (r *ImportRunRepository) List(criteria map[string]any) ([]*models.ImportRun, error) {
	query := `SELECT ` + importRunColumns + ` FROM import_runs WHERE deleted_at IS NULL`
	args := []any{}

	if actor, ok := criteria["actor"].(string); ok && actor != "" {
		query += " AND actor = ?"
		args = append(args, actor)
	}
	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY sequence DESC" + pagination(criteria)

	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ImportRun
	for rows.Next() {
		run, err := scanImportRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

func scanImportRun(row scanner) (*models.ImportRun, error) {
	var (
		id, actor, source, mode, status string
		sequence                        int
		dryRun                          bool
		archiveKey, errorMessage        sql.NullString
		processed, created, updated     int
		skipped, errs                   int
		completedAt, deletedAt          sql.NullTime
		createdAt, updatedAt            time.Time
	)

	err := row.Scan(&id, &sequence, &actor, &source, &dryRun, &mode, &status, &archiveKey, &errorMessage,
		&processed, &created, &updated, &skipped, &errs, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewImportRun(actor, source, dryRun, mode)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.Status = status
	run.ArchiveKey = archiveKey.String
	run.Error = errorMessage.String
	run.Processed, run.Created, run.Updated, run.Skipped, run.Errors = processed, created, updated, skipped, errs
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}
	return run, nil
}
