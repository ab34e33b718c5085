package models

// Row statuses reported by an import.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Actions taken for rows with [StatusOK].
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionWouldUpsert = "would_upsert"
)

// RowOutcome records what happened to one data row. Row is the 1-based file row; the header is row 1.
type RowOutcome struct {
	Row    int    `json:"row"`
	Status string `json:"status"`
	Action string `json:"action,omitempty"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ImportResult summarizes a CSV import. It is returned to the caller and never persisted.
//
// Processed always equals Created + Updated + Skipped + Errors and len(Details).
type ImportResult struct {
	Processed int          `json:"processed"`
	Created   int          `json:"created"`
	Updated   int          `json:"updated"`
	Skipped   int          `json:"skipped"`
	Errors    int          `json:"errors"`
	DryRun    bool         `json:"dry_run"`
	Details   []RowOutcome `json:"details"`
}

// NewImportResult creates an empty result with a non-nil details slice.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{DryRun: dryRun, Details: []RowOutcome{}}
}

// Record appends an outcome and updates the counters.
//
// In a dry run, would-be creates and updates are counted under Created and Updated so the
// preview matches what a real run would report.
func (r *ImportResult) Record(o RowOutcome, wouldCreate bool) {
	r.Processed++
	switch o.Status {
	case StatusOK:
		switch {
		case o.Action == ActionCreated, o.Action == ActionWouldUpsert && wouldCreate:
			r.Created++
		default:
			r.Updated++
		}
	case StatusSkipped:
		r.Skipped++
	default:
		r.Errors++
	}
	r.Details = append(r.Details, o)
}
