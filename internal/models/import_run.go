package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/founders/internal/shared"
)

// Import run statuses
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

var RunStatuses = []string{RunRunning, RunCompleted, RunFailed}

// ImportRun is the audit record of one bulk import: who ran it, on what, and how it ended.
type ImportRun struct {
	record
	Actor      string // Email of the caller, or "cli"
	Source     string // Uploaded file name
	DryRun     bool
	Mode       string
	Status     string
	ArchiveKey string // Blob key of the archived upload, empty when archiving is off
	Error      string

	Processed int
	Created   int
	Updated   int
	Skipped   int
	Errors    int

	CompletedAt *time.Time
	deletedAt   *time.Time
}

// NewImportRun creates a running import record.
func NewImportRun(actor, source string, dryRun bool, mode string) *ImportRun {
	return &ImportRun{
		record: newRecord(),
		Actor:  strings.TrimSpace(actor),
		Source: strings.TrimSpace(source),
		DryRun: dryRun,
		Mode:   mode,
		Status: RunRunning,
	}
}

func (r *ImportRun) DeletedAt() *time.Time     { return r.deletedAt }
func (r *ImportRun) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Complete copies the counters from result and marks the run completed.
func (r *ImportRun) Complete(result *ImportResult) {
	r.Processed, r.Created, r.Updated, r.Skipped, r.Errors =
		result.Processed, result.Created, result.Updated, result.Skipped, result.Errors
	r.finish(RunCompleted)
}

// Fail records a batch-level failure.
func (r *ImportRun) Fail(err error) {
	r.Error = err.Error()
	r.finish(RunFailed)
}

func (r *ImportRun) finish(status string) {
	now := time.Now().UTC()
	r.Status = status
	r.CompletedAt = &now
}

func (r *ImportRun) Validate() error {
	if r.Actor == "" {
		return fmt.Errorf("%w: import run actor is required", shared.ErrInvalidInput)
	}
	if !slices.Contains(RunStatuses, r.Status) {
		return fmt.Errorf("%w: unknown import run status %q", shared.ErrInvalidInput, r.Status)
	}
	return nil
}
