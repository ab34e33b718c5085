// package formatter renders import reports and founder exports to CSV, JSON and Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

// Format is an output format for reports.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// ParseFormat accepts csv, json, md or markdown, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want csv, json or md)", shared.ErrInvalidArgument, s)
	}
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// ReportToCSV converts an import result to CSV with columns: Row, Status, Action, Email, Reason
func ReportToCSV(result *models.ImportResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Row", "Status", "Action", "Email", "Reason"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, d := range result.Details {
		record := []string{strconv.Itoa(d.Row), d.Status, d.Action, d.Email, d.Reason}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportToJSON converts an import result to the same JSON the HTTP API returns.
func ReportToJSON(result *models.ImportResult, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}

// ReportToMarkdown summarizes an import result; only rows that were not imported are listed.
func ReportToMarkdown(result *models.ImportResult) ([]byte, error) {
	var buf bytes.Buffer

	title := "Import Report"
	if result.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	fmt.Fprintf(&buf, "**Processed**: %d\n", result.Processed)
	fmt.Fprintf(&buf, "**Created**: %d\n", result.Created)
	fmt.Fprintf(&buf, "**Updated**: %d\n", result.Updated)
	fmt.Fprintf(&buf, "**Skipped**: %d\n", result.Skipped)
	fmt.Fprintf(&buf, "**Errors**: %d\n", result.Errors)

	var problems []models.RowOutcome
	for _, d := range result.Details {
		if d.Status != models.StatusOK {
			problems = append(problems, d)
		}
	}
	if len(problems) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("\n## Rows not imported\n\n")
	buf.WriteString("| Row | Status | Email | Reason |\n")
	buf.WriteString("|----:|--------|-------|--------|\n")
	for _, d := range problems {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n", d.Row, d.Status, markdownCell(d.Email), markdownCell(d.Reason))
	}
	return buf.Bytes(), nil
}

func markdownCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

// RenderReport renders result in format.
func RenderReport(result *models.ImportResult, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ReportToCSV(result)
	case FormatMarkdown:
		return ReportToMarkdown(result)
	case FormatJSON, "":
		return ReportToJSON(result, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport writes result to path in the format implied by its extension and returns the path.
func WriteReport(result *models.ImportResult, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: report path", shared.ErrMissingArgument)
	}

	data, err := RenderReport(result, FormatFromPath(path))
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// FounderRow is one founder with its related names resolved, ready for export.
type FounderRow struct {
	Founder *models.Founder
	Startup *models.Startup // nil when the founder has no startup
	Skills  []string
	Hobbies []string
}

// FounderHeaders are the export columns. Every header is an alias the importer recognizes,
// so an export can be edited and imported again.
var FounderHeaders = []string{
	"Name", "Email", "LinkedIn URL", "Bio", "Location", "Twitter URL", "GitHub URL", "Profile Image URL",
	"Profile Visible", "Startup Name", "Startup Description", "Industry", "Stage", "Website", "Target Market",
	"Revenue ARR", "Skills Offered", "Hobbies",
}

// FoundersToCSV converts founders to CSV using [FounderHeaders].
func FoundersToCSV(rows []FounderRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(FounderHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		f := row.Founder
		startup := models.Startup{}
		if row.Startup != nil {
			startup = *row.Startup
		}

		record := []string{
			f.Name, f.Email, f.LinkedInURL, f.Bio, f.Location, f.TwitterURL, f.GitHubURL, f.ProfileImageURL,
			strconv.FormatBool(f.ProfileVisible),
			startup.Name, startup.Description, startup.Industry, startup.Stage, startup.WebsiteURL,
			startup.TargetMarket, startup.RevenueARR,
			strings.Join(row.Skills, ", "), strings.Join(row.Hobbies, ", "),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFoundersCSV exports founders to path, defaulting to founders.csv.
func WriteFoundersCSV(rows []FounderRow, path string) (string, error) {
	if path == "" {
		path = "founders.csv"
	}

	data, err := FoundersToCSV(rows)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}
	return path, nil
}
