package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

// FounderInput is the body of POST and PUT /founders.
type FounderInput struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Email           string   `json:"email" validate:"required,email"`
	Bio             string   `json:"bio"`
	Location        string   `json:"location" validate:"max=200"`
	LinkedInURL     string   `json:"linkedin_url" validate:"required"`
	TwitterURL      string   `json:"twitter_url" validate:"omitempty,url"`
	GitHubURL       string   `json:"github_url" validate:"omitempty,url"`
	ProfileImageURL string   `json:"profile_image_url"`
	ProfileVisible  *bool    `json:"profile_visible"`
	StartupID       string   `json:"startup_id"`
	SkillIDs        []string `json:"skill_ids" validate:"omitempty,dive,required"`
	HobbyIDs        []string `json:"hobby_ids" validate:"omitempty,dive,required"`
}

// Apply copies the input onto f. Visibility is left alone when not given.
func (in FounderInput) Apply(f *models.Founder) {
	f.Name = strings.TrimSpace(in.Name)
	f.Email = strings.TrimSpace(in.Email)
	f.Bio = strings.TrimSpace(in.Bio)
	f.Location = strings.TrimSpace(in.Location)
	f.LinkedInURL = strings.TrimSpace(in.LinkedInURL)
	f.TwitterURL = strings.TrimSpace(in.TwitterURL)
	f.GitHubURL = strings.TrimSpace(in.GitHubURL)
	f.ProfileImageURL = strings.TrimSpace(in.ProfileImageURL)
	if in.ProfileVisible != nil {
		f.ProfileVisible = *in.ProfileVisible
	}
	f.StartupID = in.StartupID
	f.SkillIDs = in.SkillIDs
	f.HobbyIDs = in.HobbyIDs
}

// StartupInput is the body of POST and PUT /startups.
type StartupInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description"`
	Industry     string `json:"industry"`
	Stage        string `json:"stage"`
	WebsiteURL   string `json:"website_url" validate:"omitempty,url"`
	TargetMarket string `json:"target_market"`
	RevenueARR   string `json:"revenue_arr"`
}

// Check rejects values outside the startup vocabularies.
func (in StartupInput) Check() error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"industry", in.Industry, models.Industries},
		{"stage", in.Stage, models.StartupStages},
		{"target_market", in.TargetMarket, models.TargetMarkets},
		{"revenue_arr", in.RevenueARR, models.RevenueBrackets},
	}
	for _, c := range checks {
		if !models.InVocabulary(c.value, c.allowed) {
			return fmt.Errorf("%w: unknown %s %q", shared.ErrInvalidInput, c.field, c.value)
		}
	}
	return nil
}

func (in StartupInput) Details() models.StartupDetails {
	return models.StartupDetails{
		Description:  in.Description,
		Industry:     in.Industry,
		Stage:        in.Stage,
		WebsiteURL:   in.WebsiteURL,
		TargetMarket: in.TargetMarket,
		RevenueARR:   in.RevenueARR,
	}
}

// TagInput is the body of POST and PUT /skills and /hobbies.
type TagInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// HelpRequestInput is the body of POST and PUT /help-requests.
type HelpRequestInput struct {
	FounderID   string `json:"founder_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
	Urgency     string `json:"urgency"`
	Status      string `json:"status"`
}

func (in HelpRequestInput) Apply(h *models.HelpRequest) {
	h.FounderID = in.FounderID
	h.Title = strings.TrimSpace(in.Title)
	h.Description = strings.TrimSpace(in.Description)
	h.Category = strings.TrimSpace(in.Category)
	if in.Urgency != "" {
		h.Urgency = in.Urgency
	}
	if in.Status != "" {
		h.Status = in.Status
	}
}

// EventInput is the body of POST and PUT /events.
type EventInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time" validate:"required"`
	Location    string    `json:"location"`
	Attendees   string    `json:"attendees"`
	Theme       string    `json:"theme"`
	Link        string    `json:"link" validate:"omitempty,url"`
}

func (in EventInput) Apply(e *models.Event) {
	e.Title = strings.TrimSpace(in.Title)
	e.Description = in.Description
	e.DateTime = in.DateTime
	e.Location = in.Location
	e.Attendees = in.Attendees
	e.Theme = in.Theme
	e.Link = in.Link
}

// VisibilityInput is the body of PATCH /founders/{id}/visibility.
type VisibilityInput struct {
	ProfileVisible *bool `json:"profile_visible" validate:"required"`
}

type TagResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newTagResponse(t *models.Tag) TagResponse {
	return TagResponse{ID: t.ID(), Name: t.Name, Category: t.Category, Description: t.Description, CreatedAt: t.CreatedAt()}
}

type StartupResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	Stage        string    `json:"stage,omitempty"`
	WebsiteURL   string    `json:"website_url,omitempty"`
	TargetMarket string    `json:"target_market,omitempty"`
	RevenueARR   string    `json:"revenue_arr,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newStartupResponse(s *models.Startup) *StartupResponse {
	return &StartupResponse{
		ID: s.ID(), Name: s.Name, Description: s.Description, Industry: s.Industry, Stage: s.Stage,
		WebsiteURL: s.WebsiteURL, TargetMarket: s.TargetMarket, RevenueARR: s.RevenueARR,
		CreatedAt: s.CreatedAt(), UpdatedAt: s.UpdatedAt(),
	}
}

// FounderResponse is a founder with its startup and tags resolved.
type FounderResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Bio             string           `json:"bio,omitempty"`
	Location        string           `json:"location,omitempty"`
	LinkedInURL     string           `json:"linkedin_url"`
	TwitterURL      string           `json:"twitter_url,omitempty"`
	GitHubURL       string           `json:"github_url,omitempty"`
	ProfileImageURL string           `json:"profile_image_url,omitempty"`
	ProfileVisible  bool             `json:"profile_visible"`
	ProfileLinked   bool             `json:"profile_linked"`
	Startup         *StartupResponse `json:"startup,omitempty"`
	Skills          []TagResponse    `json:"skills"`
	Hobbies         []TagResponse    `json:"hobbies"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type HelpRequestResponse struct {
	ID          string    `json:"id"`
	FounderID   string    `json:"founder_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Urgency     string    `json:"urgency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newHelpRequestResponse(h *models.HelpRequest) HelpRequestResponse {
	return HelpRequestResponse{
		ID: h.ID(), FounderID: h.FounderID, Title: h.Title, Description: h.Description, Category: h.Category,
		Urgency: h.Urgency, Status: h.Status, CreatedAt: h.CreatedAt(), UpdatedAt: h.UpdatedAt(),
	}
}

type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DateTime    time.Time `json:"date_time"`
	Location    string    `json:"location,omitempty"`
	Attendees   string    `json:"attendees,omitempty"`
	Theme       string    `json:"theme,omitempty"`
	Link        string    `json:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID: e.ID(), Title: e.Title, Description: e.Description, DateTime: e.DateTime, Location: e.Location,
		Attendees: e.Attendees, Theme: e.Theme, Link: e.Link, CreatedAt: e.CreatedAt(),
	}
}

type ImportRunResponse struct {
	ID          string     `json:"id"`
	Actor       string     `json:"actor"`
	Source      string     `json:"source"`
	DryRun      bool       `json:"dry_run"`
	Mode        string     `json:"mode"`
	Status      string     `json:"status"`
	ArchiveKey  string     `json:"archive_key,omitempty"`
	Error       string     `json:"error,omitempty"`
	Processed   int        `json:"processed"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Skipped     int        `json:"skipped"`
	Errors      int        `json:"errors"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newImportRunResponse(r *models.ImportRun) ImportRunResponse {
	return ImportRunResponse{
		ID: r.ID(), Actor: r.Actor, Source: r.Source, DryRun: r.DryRun, Mode: r.Mode, Status: r.Status,
		ArchiveKey: r.ArchiveKey, Error: r.Error, Processed: r.Processed, Created: r.Created, Updated: r.Updated,
		Skipped: r.Skipped, Errors: r.Errors, StartedAt: r.CreatedAt(), CompletedAt: r.CompletedAt,
	}
}
