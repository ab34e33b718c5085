package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/founders/internal/shared"
)

const (
	DefaultUrgency = "Medium"
	DefaultStatus  = "Open"
)

var (
	Urgencies       = []string{"Low", "Medium", "High", "Urgent"}
	RequestStatuses = []string{"Open", "In Progress", "Resolved", "Closed"}
)

// HelpRequest is a founder asking the community for help.
type HelpRequest struct {
	record
	FounderID   string
	Title       string
	Description string
	Category    string
	Urgency     string
	Status      string
}

// NewHelpRequest creates an open, medium-urgency request.
func NewHelpRequest(founderID, title, description string) *HelpRequest {
	return &HelpRequest{
		record:      newRecord(),
		FounderID:   founderID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Urgency:     DefaultUrgency,
		Status:      DefaultStatus,
	}
}

func (h *HelpRequest) Validate() error {
	switch {
	case h.FounderID == "":
		return fmt.Errorf("%w: help request founder is required", shared.ErrInvalidInput)
	case strings.TrimSpace(h.Title) == "":
		return fmt.Errorf("%w: help request title is required", shared.ErrInvalidInput)
	case strings.TrimSpace(h.Description) == "":
		return fmt.Errorf("%w: help request description is required", shared.ErrInvalidInput)
	case !slices.Contains(Urgencies, h.Urgency):
		return fmt.Errorf("%w: urgency must be one of %s", shared.ErrInvalidInput, strings.Join(Urgencies, ", "))
	case !slices.Contains(RequestStatuses, h.Status):
		return fmt.Errorf("%w: status must be one of %s", shared.ErrInvalidInput, strings.Join(RequestStatuses, ", "))
	}
	return nil
}

// Event is a community gathering.
type Event struct {
	record
	Title       string
	Description string
	DateTime    time.Time
	Location    string
	Attendees   string
	Theme       string
	Link        string
}

// NewEvent creates an event with fresh timestamps.
func NewEvent(title string, at time.Time) *Event {
	return &Event{record: newRecord(), Title: strings.TrimSpace(title), DateTime: at}
}

func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: event title is required", shared.ErrInvalidInput)
	}
	if e.DateTime.IsZero() {
		return fmt.Errorf("%w: event date_time is required", shared.ErrInvalidInput)
	}
	return nil
}
