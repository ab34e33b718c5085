package models

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/founders/internal/shared"
)

func TestFounder(t *testing.T) {
	t.Run("NewFounder defaults", func(t *testing.T) {
		f := NewFounder(" Ana ", " Ana@X.com ", "http://li/ana")
		if !f.ProfileVisible {
			t.Error("new founders should be visible")
		}
		if f.Name != "Ana" || f.Email != "Ana@X.com" {
			t.Errorf("expected trimmed fields, got %q %q", f.Name, f.Email)
		}
		if f.EmailKey() != "ana@x.com" {
			t.Errorf("expected email key ana@x.com, got %s", f.EmailKey())
		}
		if f.CreatedAt().IsZero() || f.UpdatedAt().IsZero() {
			t.Error("timestamps should be set")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			founder *Founder
			wantErr bool
		}{
			{name: "valid", founder: NewFounder("Ana", "ana@x.com", "http://li/ana")},
			{name: "missing name", founder: NewFounder("", "ana@x.com", "http://li/ana"), wantErr: true},
			{name: "missing email", founder: NewFounder("Ana", "", "http://li/ana"), wantErr: true},
			{name: "malformed email", founder: NewFounder("Ana", "not-an-email", "http://li/ana"), wantErr: true},
			{name: "missing linkedin", founder: NewFounder("Ana", "ana@x.com", "  "), wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.founder.Validate()
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidInput) {
						t.Errorf("expected ErrInvalidInput, got %v", err)
					}
					return
				}
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			})
		}
	})

	t.Run("OwnedBy ignores case", func(t *testing.T) {
		f := NewFounder("Ana", "ana@x.com", "http://li/ana")
		if !f.OwnedBy("ANA@X.COM") {
			t.Error("expected case-insensitive ownership")
		}
		if f.OwnedBy("") || f.OwnedBy("bo@x.com") {
			t.Error("unexpected ownership match")
		}
	})

	t.Run("EmailLocalPart", func(t *testing.T) {
		if got := EmailLocalPart("bo@x.com"); got != "bo" {
			t.Errorf("expected bo, got %s", got)
		}
		if got := EmailLocalPart("plain"); got != "plain" {
			t.Errorf("expected plain, got %s", got)
		}
	})
}

func TestStartup(t *testing.T) {
	t.Run("FillEmpty never overwrites", func(t *testing.T) {
		s := NewStartup("Acme", StartupDetails{Industry: "Fintech"})
		changed := s.FillEmpty(StartupDetails{Industry: "Gaming", Stage: "Seed"})

		if !changed {
			t.Error("expected stage to be filled")
		}
		if s.Industry != "Fintech" {
			t.Errorf("existing industry overwritten: %s", s.Industry)
		}
		if s.Stage != "Seed" {
			t.Errorf("expected stage Seed, got %s", s.Stage)
		}

		if s.FillEmpty(StartupDetails{Stage: "MVP"}) {
			t.Error("no field should change the second time")
		}
	})

	t.Run("Validate requires name", func(t *testing.T) {
		if err := NewStartup("  ", StartupDetails{}).Validate(); err == nil {
			t.Error("expected error for blank name")
		}
	})
}

func TestTagAndCommunity(t *testing.T) {
	t.Run("TagKind tables", func(t *testing.T) {
		if KindSkill.Table() != "skills" || KindHobby.Table() != "hobbies" {
			t.Error("unexpected tag tables")
		}
		if err := NewTag("colour", "Red", "", "").Validate(); err == nil {
			t.Error("expected unknown kind to fail validation")
		}
	})

	t.Run("HelpRequest defaults", func(t *testing.T) {
		h := NewHelpRequest("f1", "Need intro", "Looking for a seed investor")
		if h.Urgency != DefaultUrgency || h.Status != DefaultStatus {
			t.Errorf("unexpected defaults %s/%s", h.Urgency, h.Status)
		}
		if err := h.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		h.Urgency = "Whenever"
		if err := h.Validate(); err == nil {
			t.Error("expected invalid urgency to fail")
		}
	})

	t.Run("Event requires date", func(t *testing.T) {
		if err := NewEvent("Demo day", time.Time{}).Validate(); err == nil {
			t.Error("expected missing date to fail")
		}
		if err := NewEvent("Demo day", time.Now()).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("InVocabulary", func(t *testing.T) {
		if !InVocabulary("", StartupStages) || !InVocabulary("Seed", StartupStages) {
			t.Error("expected empty and known stage to pass")
		}
		if InVocabulary("Series Z", StartupStages) {
			t.Error("expected unknown stage to fail")
		}
	})
}

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"seed", "Seed"},
		{"  SERIES   A ", "Series A"},
		{"Design Partners (pre-revenue)", "Design Partners (pre-revenue)"},
		{"Idea validation", "Validation"},
		{"pre-revenue", "Design Partners (pre-revenue)"},
		{"Post-revenue", "Customers (post-revenue)"},
		{"preseed", "Pre-seed"},
		{"Raising our pre-seed round", "Pre-seed"},
		{"Closed seed last year", "Seed"},
		{"Series C", "Series B or later"},
		{"just an idea for now", "Ideation"},
		{"early product", "MVP"},
		{"scaling up", "Scaling"},
		{"investing", "Series A"},
		{"stealth", "MVP"},
	}

	for _, tt := range tests {
		got := NormalizeStage(tt.in)
		if got != tt.want {
			t.Errorf("NormalizeStage(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !InVocabulary(got, StartupStages) {
			t.Errorf("NormalizeStage(%q) = %q is outside the stage vocabulary", tt.in, got)
		}
	}
}

func TestImportRun(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		run := NewImportRun("admin@x.com", "founders.csv", false, "update")
		if run.Status != RunRunning || run.CompletedAt != nil {
			t.Fatalf("expected a running import, got %s", run.Status)
		}

		result := NewImportResult(false)
		result.Record(RowOutcome{Row: 2, Status: StatusOK, Action: ActionCreated}, true)
		result.Record(RowOutcome{Row: 3, Status: StatusSkipped, Reason: "missing email"}, false)
		run.Complete(result)

		if run.Status != RunCompleted || run.CompletedAt == nil {
			t.Errorf("expected completed run with a completion time, got %s", run.Status)
		}
		if run.Processed != 2 || run.Created != 1 || run.Skipped != 1 {
			t.Errorf("counters not copied: %+v", run)
		}
	})

	t.Run("Fail", func(t *testing.T) {
		run := NewImportRun("cli", "founders.csv", true, "skip")
		run.Fail(errors.New("no header row"))
		if run.Status != RunFailed || run.Error != "no header row" {
			t.Errorf("unexpected failed run %s %q", run.Status, run.Error)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := NewImportRun(" ", "f.csv", false, "update").Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing actor, got %v", err)
		}
		run := NewImportRun("cli", "f.csv", false, "update")
		run.Status = "paused"
		if err := run.Validate(); err == nil {
			t.Error("expected unknown status to fail")
		}
	})
}
