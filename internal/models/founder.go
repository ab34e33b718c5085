package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/founders/internal/shared"
)

// Founder is a directory profile. Email is unique case-insensitively among live founders.
type Founder struct {
	record
	Name            string
	Email           string
	Bio             string
	Location        string
	LinkedInURL     string
	TwitterURL      string
	GitHubURL       string
	ProfileImageURL string
	ProfileVisible  bool
	// AuthSubject is the identity-provider subject linked to this profile, empty when unlinked.
	AuthSubject string
	// StartupID is empty when the founder is not attached to a startup.
	StartupID string
	SkillIDs  []string
	HobbyIDs  []string

	deletedAt *time.Time
}

// NewFounder creates a visible founder with fresh timestamps.
func NewFounder(name, email, linkedInURL string) *Founder {
	return &Founder{
		record:         newRecord(),
		Name:           strings.TrimSpace(name),
		Email:          strings.TrimSpace(email),
		LinkedInURL:    strings.TrimSpace(linkedInURL),
		ProfileVisible: true,
	}
}

// EmailKey is the lowercased, trimmed email used for uniqueness and lookups.
func (f *Founder) EmailKey() string { return shared.NormalizeKey(f.Email) }

func (f *Founder) DeletedAt() *time.Time     { return f.deletedAt }
func (f *Founder) SetDeletedAt(t *time.Time) { f.deletedAt = t }
func (f *Founder) IsDeleted() bool           { return f.deletedAt != nil }

// Validate checks that name, email and LinkedIn URL are present and that the email is well formed.
func (f *Founder) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: founder name is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(f.Email) == "" {
		return fmt.Errorf("%w: founder email is required", shared.ErrInvalidInput)
	}
	if err := validate.Var(f.Email, "email"); err != nil {
		return fmt.Errorf("%w: invalid email %q", shared.ErrInvalidInput, f.Email)
	}
	if strings.TrimSpace(f.LinkedInURL) == "" {
		return fmt.Errorf("%w: linkedin url is required", shared.ErrInvalidInput)
	}
	return nil
}

// OwnedBy reports whether email belongs to this profile, ignoring case.
func (f *Founder) OwnedBy(email string) bool {
	return email != "" && shared.NormalizeKey(email) == f.EmailKey()
}

// EmailLocalPart returns the part of email before "@", or the whole string when there is none.
func EmailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
