package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/founders/internal/shared"
)

// StartupDetails holds the descriptive, optional startup fields.
type StartupDetails struct {
	Description  string
	Industry     string
	Stage        string
	WebsiteURL   string
	TargetMarket string
	RevenueARR   string
}

// Startup is a company founders belong to. Names are matched case-insensitively but are not unique.
type Startup struct {
	record
	Name string
	StartupDetails
}

// NewStartup creates a startup with fresh timestamps.
func NewStartup(name string, details StartupDetails) *Startup {
	return &Startup{record: newRecord(), Name: strings.TrimSpace(name), StartupDetails: details}
}

// NameKey is the lowercased, trimmed name used for lookups.
func (s *Startup) NameKey() string { return shared.NormalizeKey(s.Name) }

// Validate checks that the startup has a name.
func (s *Startup) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: startup name is required", shared.ErrInvalidInput)
	}
	return nil
}

// FillEmpty copies each non-empty field of d into s where s's field is empty.
// Existing values are never overwritten. Reports whether anything changed.
func (s *Startup) FillEmpty(d StartupDetails) bool {
	changed := false
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" && strings.TrimSpace(src) != "" {
			*dst = strings.TrimSpace(src)
			changed = true
		}
	}
	fill(&s.Description, d.Description)
	fill(&s.Industry, d.Industry)
	fill(&s.Stage, d.Stage)
	fill(&s.WebsiteURL, d.WebsiteURL)
	fill(&s.TargetMarket, d.TargetMarket)
	fill(&s.RevenueARR, d.RevenueARR)
	return changed
}
