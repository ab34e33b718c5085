package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/founders/internal/models"
)

// RenderSummary formats an import result for the terminal: counters first, then every row that was not imported.
//
// maxProblems caps the listed rows; 0 lists them all.
func RenderSummary(result *models.ImportResult, source string, maxProblems int) string {
	var b strings.Builder

	title := "Import complete"
	if result.DryRun {
		title = "Dry run complete"
	}
	if source != "" {
		title += ": " + source
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	created, updated := "created", "updated"
	if result.DryRun {
		created, updated = "would create", "would update"
	}
	counters := []struct {
		label string
		value int
	}{
		{"processed", result.Processed},
		{created, result.Created},
		{updated, result.Updated},
		{"skipped", result.Skipped},
		{"errors", result.Errors},
	}
	for _, c := range counters {
		fmt.Fprintf(&b, "%s %d\n", styles.label.Width(14).Render(c.label), c.value)
	}

	problems := Problems(result)
	if len(problems) == 0 {
		b.WriteString("\n" + styles.ok.Render("Every row was imported."))
		return b.String()
	}

	b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("%d rows were not imported:", len(problems))) + "\n")
	for i, o := range problems {
		if maxProblems > 0 && i == maxProblems {
			b.WriteString(styles.muted.Render(fmt.Sprintf("  ... and %d more", len(problems)-maxProblems)))
			break
		}
		fmt.Fprintf(&b, "  row %-5d %s  %s\n", o.Row, styles.Status(o.Status), describe(o))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Problems returns the outcomes whose status is not ok, in row order.
func Problems(result *models.ImportResult) []models.RowOutcome {
	var out []models.RowOutcome
	for _, o := range result.Details {
		if o.Status != models.StatusOK {
			out = append(out, o)
		}
	}
	return out
}

func describe(o models.RowOutcome) string {
	switch {
	case o.Email != "" && o.Reason != "":
		return o.Email + ": " + o.Reason
	case o.Reason != "":
		return o.Reason
	default:
		return o.Email
	}
}
