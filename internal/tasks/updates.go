package tasks

import (
	"fmt"

	"github.com/desertthunder/founders/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or HTTP layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, e.g. a [models.RowOutcome]
}

// Operation phase enumeration
type Phase int

const (
	DecodeFile Phase = iota
	ReconcileRows
	Summarize
	SeedCatalog
)

func (p Phase) String() string {
	switch p {
	case DecodeFile:
		return "decode_file"
	case ReconcileRows:
		return "reconcile_rows"
	case Summarize:
		return "summarize"
	case SeedCatalog:
		return "seed_catalog"
	default:
		return ""
	}
}

// sendProgress delivers u without blocking; updates are dropped when nobody is listening.
func sendProgress(progress chan<- ProgressUpdate, u ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- u:
	default:
	}
}

func decodingUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DecodeFile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Decoding upload (%d bytes)...", size),
	}
}

func decodedUpdate(table *Table) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DecodeFile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Read %d rows, %d columns (%s)", len(table.Rows), len(table.Header), table.Encoding),
	}
}

func rowUpdate(step, total int, o models.RowOutcome) ProgressUpdate {
	mark := "✓"
	switch o.Status {
	case models.StatusSkipped:
		mark = "-"
	case models.StatusError:
		mark = "✗"
	}

	msg := fmt.Sprintf("[%d/%d] %s row %d", step, total, mark, o.Row)
	if o.Email != "" {
		msg += " " + o.Email
	}
	if o.Action != "" {
		msg += " (" + o.Action + ")"
	}
	if o.Reason != "" {
		msg += ": " + o.Reason
	}

	return ProgressUpdate{Phase: ReconcileRows, Step: step, Total: total, Message: msg, Data: o}
}

func summaryUpdate(r *models.ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Summarize,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Processed %d rows: %d created, %d updated, %d skipped, %d errors",
			r.Processed, r.Created, r.Updated, r.Skipped, r.Errors),
		Data: r,
	}
}

func seedUpdate(step, total int, kind models.TagKind, name string, created bool) ProgressUpdate {
	verb := "exists"
	if created {
		verb = "created"
	}
	return ProgressUpdate{
		Phase:   SeedCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s: %s", step, total, kind, verb, name),
	}
}
