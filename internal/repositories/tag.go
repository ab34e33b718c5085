package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

// TagRepository implements [models.Repository] for one [models.TagKind].
//
// Names are unique per kind after normalization; a duplicate insert returns [shared.ErrTagExists].
type TagRepository struct {
	q    Querier
	kind models.TagKind
}

// NewTagRepository creates a new [TagRepository] for kind over q
func NewTagRepository(q Querier, kind models.TagKind) *TagRepository {
	return &TagRepository{q: q, kind: kind}
}

func (r *TagRepository) table() string { return r.kind.Table() }

// Create inserts a new tag with generated ID and sequence
func (r *TagRepository) Create(tag *models.Tag) error {
	tag.Kind = r.kind
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.q, func(q Querier) error {
		sequence, err := NextSequence(q, r.table())
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()
		query := fmt.Sprintf(`
			INSERT INTO %s (id, sequence, name, name_key, category, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.table())

		_, err = q.Exec(query, id, sequence, tag.Name, tag.NameKey(), tag.Category, tag.Description, tag.CreatedAt(), tag.UpdatedAt())
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %q", shared.ErrTagExists, r.kind, tag.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.kind, err)
		}

		tag.SetID(id)
		tag.SetSequence(sequence)
		return nil
	})
}

// Get retrieves a tag by ID
func (r *TagRepository) Get(id string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, sequence, name, category, description, created_at, updated_at FROM %s WHERE id = ?`, r.table())
	tag, err := r.scan(r.q.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, string(r.kind), id)
	}
	return tag, nil
}

// GetByName retrieves a tag by name, ignoring case and surrounding whitespace.
func (r *TagRepository) GetByName(name string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, sequence, name, category, description, created_at, updated_at FROM %s WHERE name_key = ?`, r.table())
	tag, err := r.scan(r.q.QueryRow(query, shared.NormalizeKey(name)))
	if err != nil {
		return nil, notFound(err, string(r.kind), name)
	}
	return tag, nil
}

// Update modifies an existing tag
func (r *TagRepository) Update(tag *models.Tag) error {
	tag.Kind = r.kind
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET name = ?, name_key = ?, category = ?, description = ?, updated_at = ? WHERE id = ?`, r.table())
	result, err := r.q.Exec(query, tag.Name, tag.NameKey(), tag.Category, tag.Description, now, tag.ID())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s %q", shared.ErrTagExists, r.kind, tag.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.kind, err)
	}
	if err := checkAffected(result, string(r.kind), tag.ID()); err != nil {
		return err
	}

	tag.SetUpdatedAt(now)
	return nil
}

// Delete removes a tag and its founder associations.
func (r *TagRepository) Delete(id string) error {
	result, err := r.q.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.table()), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.kind, err)
	}
	return checkAffected(result, string(r.kind), id)
}

// List retrieves tags ordered by category then name. Supported criteria: "category", "ids" ([]string).
func (r *TagRepository) List(criteria map[string]any) ([]*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, sequence, name, category, description, created_at, updated_at FROM %s WHERE 1 = 1`, r.table())
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if ids, ok := criteria["ids"].([]string); ok {
		if len(ids) == 0 {
			return []*models.Tag{}, nil
		}
		query += " AND id IN (?" + strings.Repeat(",?", len(ids)-1) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += " ORDER BY category ASC, name_key ASC" + pagination(criteria)

	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table(), err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.kind, err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tags, nil
}

func (r *TagRepository) scan(row scanner) (*models.Tag, error) {
	var (
		id, name, category, description string
		sequence                        int
		createdAt, updatedAt            time.Time
	)
	if err := row.Scan(&id, &sequence, &name, &category, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	tag := models.NewTag(r.kind, name, category, description)
	tag.SetID(id)
	tag.SetSequence(sequence)
	tag.SetCreatedAt(createdAt)
	tag.SetUpdatedAt(updatedAt)
	return tag, nil
}
