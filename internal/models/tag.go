package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/founders/internal/shared"
)

// TagKind distinguishes the two name-keyed vocabularies founders are tagged with.
type TagKind string

const (
	KindSkill TagKind = "skill"
	KindHobby TagKind = "hobby"
)

// Table returns the table storing tags of this kind.
func (k TagKind) Table() string {
	switch k {
	case KindHobby:
		return "hobbies"
	default:
		return "skills"
	}
}

// Valid reports whether k is a known kind.
func (k TagKind) Valid() bool { return k == KindSkill || k == KindHobby }

// Tag is a skill or hobby. Name is unique case-insensitively within its kind.
type Tag struct {
	record
	Kind        TagKind
	Name        string
	Category    string
	Description string
}

// NewTag creates a tag of the given kind with fresh timestamps.
func NewTag(kind TagKind, name, category, description string) *Tag {
	return &Tag{
		record:      newRecord(),
		Kind:        kind,
		Name:        strings.TrimSpace(name),
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
	}
}

// NameKey is the lowercased, trimmed name used for lookups.
func (t *Tag) NameKey() string { return shared.NormalizeKey(t.Name) }

func (t *Tag) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown tag kind %q", shared.ErrInvalidInput, t.Kind)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: %s name is required", shared.ErrInvalidInput, t.Kind)
	}
	return nil
}
