package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

const founderColumns = `id, sequence, name, email, bio, location, linkedin_url, twitter_url, github_url,
	profile_image_url, profile_visible, auth_subject, startup_id, created_at, updated_at, deleted_at`

// FounderRepository implements [models.Repository] for [models.Founder] persistence.
//
// Founders are soft deleted; lookups by email are case-insensitive and ignore deleted rows.
// Skill and hobby sets are written with the founder and loaded on read.
type FounderRepository struct {
	q Querier
}

// NewFounderRepository creates a new [FounderRepository] over q
func NewFounderRepository(q Querier) *FounderRepository {
	return &FounderRepository{q: q}
}

// Create inserts a new founder with generated ID and sequence, then writes its tag sets.
func (r *FounderRepository) Create(founder *models.Founder) error {
	if err := founder.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.q, func(q Querier) error {
		sequence, err := NextSequence(q, "founders")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()

		query := `
			INSERT INTO founders (id, sequence, name, email, email_key, bio, location, linkedin_url, twitter_url,
				github_url, profile_image_url, profile_visible, auth_subject, startup_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = q.Exec(query,
			id, sequence,
			founder.Name, founder.Email, founder.EmailKey(),
			founder.Bio, founder.Location,
			founder.LinkedInURL, founder.TwitterURL, founder.GitHubURL, founder.ProfileImageURL,
			founder.ProfileVisible,
			nullString(founder.AuthSubject), nullString(founder.StartupID),
			founder.CreatedAt(), founder.UpdatedAt(),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", shared.ErrFounderExists, founder.Email)
		}
		if err != nil {
			return fmt.Errorf("failed to insert founder: %w", err)
		}

		if err := replaceTags(q, id, models.KindSkill, founder.SkillIDs); err != nil {
			return err
		}
		if err := replaceTags(q, id, models.KindHobby, founder.HobbyIDs); err != nil {
			return err
		}

		founder.SetID(id)
		founder.SetSequence(sequence)
		return nil
	})
}

// Get retrieves a founder by ID, excluding soft-deleted founders
func (r *FounderRepository) Get(id string) (*models.Founder, error) {
	query := `SELECT ` + founderColumns + ` FROM founders WHERE id = ? AND deleted_at IS NULL`
	return r.one(query, id)
}

// GetByEmail retrieves a live founder by email, ignoring case and surrounding whitespace.
func (r *FounderRepository) GetByEmail(email string) (*models.Founder, error) {
	query := `SELECT ` + founderColumns + ` FROM founders WHERE email_key = ? AND deleted_at IS NULL`
	return r.one(query, shared.NormalizeKey(email))
}

// GetByAuthSubject retrieves the founder linked to an identity-provider subject.
func (r *FounderRepository) GetByAuthSubject(subject string) (*models.Founder, error) {
	query := `SELECT ` + founderColumns + ` FROM founders WHERE auth_subject = ? AND deleted_at IS NULL`
	return r.one(query, subject)
}

func (r *FounderRepository) one(query string, arg string) (*models.Founder, error) {
	founder, err := scanFounder(r.q.QueryRow(query, arg))
	if err != nil {
		return nil, notFound(err, "founder", arg)
	}
	if err := r.loadTags(founder); err != nil {
		return nil, err
	}
	return founder, nil
}

// Update modifies an existing founder and replaces its tag sets.
func (r *FounderRepository) Update(founder *models.Founder) error {
	if err := founder.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	err := withTx(r.q, func(q Querier) error {
		query := `
			UPDATE founders
			SET name = ?, email = ?, email_key = ?, bio = ?, location = ?, linkedin_url = ?, twitter_url = ?,
				github_url = ?, profile_image_url = ?, profile_visible = ?, auth_subject = ?, startup_id = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL
		`
		result, err := q.Exec(query,
			founder.Name, founder.Email, founder.EmailKey(),
			founder.Bio, founder.Location,
			founder.LinkedInURL, founder.TwitterURL, founder.GitHubURL, founder.ProfileImageURL,
			founder.ProfileVisible,
			nullString(founder.AuthSubject), nullString(founder.StartupID),
			now, founder.ID(),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", shared.ErrFounderExists, founder.Email)
		}
		if err != nil {
			return fmt.Errorf("failed to update founder: %w", err)
		}
		if err := checkAffected(result, "founder", founder.ID()); err != nil {
			return err
		}

		if err := replaceTags(q, founder.ID(), models.KindSkill, founder.SkillIDs); err != nil {
			return err
		}
		return replaceTags(q, founder.ID(), models.KindHobby, founder.HobbyIDs)
	})
	if err != nil {
		return err
	}

	founder.SetUpdatedAt(now)
	return nil
}

// LinkAuthSubject attaches an identity-provider subject to a founder.
func (r *FounderRepository) LinkAuthSubject(id, subject string) error {
	result, err := r.q.Exec(
		`UPDATE founders SET auth_subject = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nullString(subject), time.Now().UTC(), id,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: subject already linked to another founder", shared.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to link founder: %w", err)
	}
	return checkAffected(result, "founder", id)
}

// SetVisibility shows or hides a founder profile.
func (r *FounderRepository) SetVisibility(id string, visible bool) error {
	result, err := r.q.Exec(
		`UPDATE founders SET profile_visible = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		visible, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update visibility: %w", err)
	}
	return checkAffected(result, "founder", id)
}

// Delete soft-deletes a founder by ID
func (r *FounderRepository) Delete(id string) error {
	result, err := r.q.Exec(
		`UPDATE founders SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete founder: %w", err)
	}
	return checkAffected(result, "founder", id)
}

// List retrieves live founders ordered by sequence.
//
// Supported criteria: "visible" (bool), "startup_id" (string), "limit" and "offset" (int).
func (r *FounderRepository) List(criteria map[string]any) ([]*models.Founder, error) {
	query := `SELECT ` + founderColumns + ` FROM founders WHERE deleted_at IS NULL`
	args := []any{}

	if visible, ok := criteria["visible"].(bool); ok {
		query += " AND profile_visible = ?"
		args = append(args, visible)
	}
	if startupID, ok := criteria["startup_id"].(string); ok && startupID != "" {
		query += " AND startup_id = ?"
		args = append(args, startupID)
	}

	query += " ORDER BY sequence ASC" + pagination(criteria)

	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query founders: %w", err)
	}
	defer rows.Close()

	var founders []*models.Founder
	for rows.Next() {
		founder, err := scanFounder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan founder: %w", err)
		}
		founders = append(founders, founder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, founder := range founders {
		if err := r.loadTags(founder); err != nil {
			return nil, err
		}
	}
	return founders, nil
}

func (r *FounderRepository) loadTags(founder *models.Founder) error {
	skills, err := tagIDs(r.q, founder.ID(), models.KindSkill)
	if err != nil {
		return err
	}
	hobbies, err := tagIDs(r.q, founder.ID(), models.KindHobby)
	if err != nil {
		return err
	}
	founder.SkillIDs, founder.HobbyIDs = skills, hobbies
	return nil
}

func scanFounder(row scanner) (*models.Founder, error) {
	var (
		id, name, email, bio, location      string
		linkedin, twitter, github, imageURL string
		sequence                            int
		visible                             bool
		authSubject, startupID              sql.NullString
		createdAt, updatedAt                time.Time
		deletedAt                           sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &email, &bio, &location, &linkedin, &twitter, &github,
		&imageURL, &visible, &authSubject, &startupID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	founder := models.NewFounder(name, email, linkedin)
	founder.SetID(id)
	founder.SetSequence(sequence)
	founder.SetCreatedAt(createdAt)
	founder.SetUpdatedAt(updatedAt)
	founder.Bio = bio
	founder.Location = location
	founder.TwitterURL = twitter
	founder.GitHubURL = github
	founder.ProfileImageURL = imageURL
	founder.ProfileVisible = visible
	founder.AuthSubject = authSubject.String
	founder.StartupID = startupID.String
	if deletedAt.Valid {
		founder.SetDeletedAt(&deletedAt.Time)
	}
	return founder, nil
}

func joinTable(kind models.TagKind) (table, column string) {
	if kind == models.KindHobby {
		return "founder_hobbies", "hobby_id"
	}
	return "founder_skills", "skill_id"
}

// replaceTags overwrites a founder's tag set of one kind, keeping the given order.
func replaceTags(q Querier, founderID string, kind models.TagKind, ids []string) error {
	table, column := joinTable(kind)

	if _, err := q.Exec(fmt.Sprintf("DELETE FROM %s WHERE founder_id = ?", table), founderID); err != nil {
		return fmt.Errorf("failed to clear %s tags: %w", kind, err)
	}

	insert := fmt.Sprintf("INSERT OR IGNORE INTO %s (founder_id, %s, position) VALUES (?, ?, ?)", table, column)
	for i, id := range ids {
		if _, err := q.Exec(insert, founderID, id, i); err != nil {
			return fmt.Errorf("failed to attach %s %s: %w", kind, id, err)
		}
	}
	return nil
}

func tagIDs(q Querier, founderID string, kind models.TagKind) ([]string, error) {
	table, column := joinTable(kind)

	rows, err := q.Query(fmt.Sprintf("SELECT %s FROM %s WHERE founder_id = ? ORDER BY position ASC", column, table), founderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s tags: %w", kind, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s tag: %w", kind, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
