package search

import (
	"testing"

	"github.com/desertthunder/founders/internal/models"
)

func TestFind(t *testing.T) {
	docs := []Document{
		{Kind: KindFounder, ID: "1", Label: "Ana Lopez", Text: "Ana Lopez Madrid"},
		{Kind: KindStartup, ID: "2", Label: "Anagram", Text: "Anagram Edtech"},
		{Kind: KindSkill, ID: "3", Label: "Sales", Text: "Sales Business"},
		{Kind: KindFounder, ID: "4", Label: "José", Text: "José"},
	}

	t.Run("matches in order, ignoring case", func(t *testing.T) {
		hits := Find("ANA", docs, 0)
		if len(hits) != 2 {
			t.Fatalf("expected 2 hits, got %d: %+v", len(hits), hits)
		}
		for _, h := range hits {
			if h.ID == "3" {
				t.Error("Sales should not match ana")
			}
		}
		if hits[0].Distance > hits[1].Distance {
			t.Errorf("expected hits sorted by distance, got %+v", hits)
		}
	})

	t.Run("ignores diacritics", func(t *testing.T) {
		hits := Find("jose", docs, 0)
		if len(hits) != 1 || hits[0].ID != "4" {
			t.Errorf("expected José, got %+v", hits)
		}
	})

	t.Run("limit", func(t *testing.T) {
		if hits := Find("a", docs, 1); len(hits) != 1 {
			t.Errorf("expected 1 hit, got %d", len(hits))
		}
	})

	t.Run("empty query", func(t *testing.T) {
		if hits := Find("  ", docs, 0); hits == nil || len(hits) != 0 {
			t.Errorf("expected empty non-nil hits, got %v", hits)
		}
	})
}

func TestDocuments(t *testing.T) {
	visible := models.NewFounder("Ana", "ana@x.com", "http://li/ana")
	visible.Location = "Madrid"
	hidden := models.NewFounder("Bo", "bo@x.com", "http://li/bo")
	hidden.ProfileVisible = false

	docs := FounderDocuments([]*models.Founder{visible, hidden})
	if len(docs) != 1 || docs[0].Text != "Ana Madrid" {
		t.Errorf("expected only the visible founder, got %+v", docs)
	}

	startups := StartupDocuments([]*models.Startup{models.NewStartup("Acme", models.StartupDetails{})})
	if startups[0].Text != "Acme" || startups[0].Kind != KindStartup {
		t.Errorf("unexpected startup document %+v", startups[0])
	}

	tags := TagDocuments([]*models.Tag{models.NewTag(models.KindHobby, "Chess", "Games", "")})
	if tags[0].Kind != KindHobby || tags[0].Text != "Chess Games" {
		t.Errorf("unexpected tag document %+v", tags[0])
	}
}
