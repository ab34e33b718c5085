package repositories

import (
	"fmt"
	"time"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

const helpRequestColumns = `id, sequence, founder_id, title, description, category, urgency, status, created_at, updated_at`

// HelpRequestRepository implements [models.Repository] for [models.HelpRequest] persistence.
type HelpRequestRepository struct {
	q Querier
}

// NewHelpRequestRepository creates a new [HelpRequestRepository] over q
func NewHelpRequestRepository(q Querier) *HelpRequestRepository {
	return &HelpRequestRepository{q: q}
}

func (r *HelpRequestRepository) Create(req *models.HelpRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.q, func(q Querier) error {
		sequence, err := NextSequence(q, "help_requests")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()
		query := `
			INSERT INTO help_requests (id, sequence, founder_id, title, description, category, urgency, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = q.Exec(query, id, sequence, req.FounderID, req.Title, req.Description, req.Category,
			req.Urgency, req.Status, req.CreatedAt(), req.UpdatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert help request: %w", err)
		}

		req.SetID(id)
		req.SetSequence(sequence)
		return nil
	})
}

func (r *HelpRequestRepository) Get(id string) (*models.HelpRequest, error) {
	req, err := scanHelpRequest(r.q.QueryRow(`SELECT `+helpRequestColumns+` FROM help_requests WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "help request", id)
	}
	return req, nil
}

func (r *HelpRequestRepository) Update(req *models.HelpRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE help_requests
		SET title = ?, description = ?, category = ?, urgency = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.q.Exec(query, req.Title, req.Description, req.Category, req.Urgency, req.Status, now, req.ID())
	if err != nil {
		return fmt.Errorf("failed to update help request: %w", err)
	}
	if err := checkAffected(result, "help request", req.ID()); err != nil {
		return err
	}

	req.SetUpdatedAt(now)
	return nil
}

func (r *HelpRequestRepository) Delete(id string) error {
	result, err := r.q.Exec(`DELETE FROM help_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete help request: %w", err)
	}
	return checkAffected(result, "help request", id)
}

// List retrieves help requests, newest first. Supported criteria: "founder_id", "status", "limit", "offset".
func (r *HelpRequestRepository) List(criteria map[string]any) ([]*models.HelpRequest, error) {
	query := `SELECT ` + helpRequestColumns + ` FROM help_requests WHERE 1 = 1`
	args := []any{}

	if founderID, ok := criteria["founder_id"].(string); ok && founderID != "" {
		query += " AND founder_id = ?"
		args = append(args, founderID)
	}
	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY sequence DESC" + pagination(criteria)

	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query help requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.HelpRequest
	for rows.Next() {
		req, err := scanHelpRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan help request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reqs, nil
}

func scanHelpRequest(row scanner) (*models.HelpRequest, error) {
	var (
		id, founderID, title, description, category, urgency, status string
		sequence                                                     int
		createdAt, updatedAt                                         time.Time
	)
	err := row.Scan(&id, &sequence, &founderID, &title, &description, &category, &urgency, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	req := models.NewHelpRequest(founderID, title, description)
	req.SetID(id)
	req.SetSequence(sequence)
	req.SetCreatedAt(createdAt)
	req.SetUpdatedAt(updatedAt)
	req.Category, req.Urgency, req.Status = category, urgency, status
	return req, nil
}

const eventColumns = `id, sequence, title, description, date_time, location, attendees, theme, link, created_at, updated_at`

// EventRepository implements [models.Repository] for [models.Event] persistence.
type EventRepository struct {
	q Querier
}

// NewEventRepository creates a new [EventRepository] over q
func NewEventRepository(q Querier) *EventRepository {
	return &EventRepository{q: q}
}

func (r *EventRepository) Create(event *models.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.q, func(q Querier) error {
		sequence, err := NextSequence(q, "events")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()
		query := `
			INSERT INTO events (id, sequence, title, description, date_time, location, attendees, theme, link, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = q.Exec(query, id, sequence, event.Title, event.Description, event.DateTime.UTC(), event.Location,
			event.Attendees, event.Theme, event.Link, event.CreatedAt(), event.UpdatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		event.SetID(id)
		event.SetSequence(sequence)
		return nil
	})
}

func (r *EventRepository) Get(id string) (*models.Event, error) {
	event, err := scanEvent(r.q.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

func (r *EventRepository) Update(event *models.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE events
		SET title = ?, description = ?, date_time = ?, location = ?, attendees = ?, theme = ?, link = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.q.Exec(query, event.Title, event.Description, event.DateTime.UTC(), event.Location,
		event.Attendees, event.Theme, event.Link, now, event.ID())
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if err := checkAffected(result, "event", event.ID()); err != nil {
		return err
	}

	event.SetUpdatedAt(now)
	return nil
}

func (r *EventRepository) Delete(id string) error {
	result, err := r.q.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffected(result, "event", id)
}

// List retrieves events in date order. Supported criteria: "after" (time.Time), "limit", "offset".
func (r *EventRepository) List(criteria map[string]any) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1 = 1`
	args := []any{}

	if after, ok := criteria["after"].(time.Time); ok && !after.IsZero() {
		query += " AND date_time >= ?"
		args = append(args, after.UTC())
	}
	query += " ORDER BY date_time ASC" + pagination(criteria)

	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		id, title, description, location, attendees, theme, link string
		sequence                                                 int
		dateTime, createdAt, updatedAt                           time.Time
	)
	err := row.Scan(&id, &sequence, &title, &description, &dateTime, &location, &attendees, &theme, &link, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	event := models.NewEvent(title, dateTime)
	event.SetID(id)
	event.SetSequence(sequence)
	event.SetCreatedAt(createdAt)
	event.SetUpdatedAt(updatedAt)
	event.Description, event.Location, event.Attendees, event.Theme, event.Link = description, location, attendees, theme, link
	return event, nil
}
