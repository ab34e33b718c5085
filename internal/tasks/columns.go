package tasks

import (
	"strings"

	"github.com/desertthunder/founders/internal/shared"
)

// Field is a canonical import column.
type Field string

const (
	FieldName         Field = "name"
	FieldEmail        Field = "email"
	FieldLinkedIn     Field = "linkedin"
	FieldBio          Field = "bio"
	FieldLocation     Field = "location"
	FieldTwitter      Field = "twitter"
	FieldGitHub       Field = "github"
	FieldImage        Field = "image"
	FieldVisible      Field = "visible"
	FieldStartup      Field = "startup"
	FieldDescription  Field = "startup_description"
	FieldIndustry     Field = "industry"
	FieldStage        Field = "stage"
	FieldWebsite      Field = "website"
	FieldTargetMarket Field = "target_market"
	FieldRevenue      Field = "revenue"
	FieldSkills       Field = "skills_offered"
	FieldSkillsWanted Field = "skills_wanted"
	FieldHobbies      Field = "hobbies"
	FieldAboutMe      Field = "about_me"
	FieldCanHelpWith  Field = "can_help_with"
	FieldHelpNeeded   Field = "help_needed"
	FieldLove         Field = "love"
)

// columnAliases lists the header spellings accepted for each field, in priority order.
// Matching is exact first, then substring; see [Row.Field].
var columnAliases = map[Field][]string{
	FieldName:         {"name", "full name", "founder name", "your name"},
	FieldEmail:        {"email", "email address", "e-mail"},
	FieldLinkedIn:     {"linkedin url", "linkedin", "linkedin profile", "profile url"},
	FieldBio:          {"bio", "biography"},
	FieldLocation:     {"location", "city", "based in"},
	FieldTwitter:      {"twitter url", "twitter", "x url"},
	FieldGitHub:       {"github url", "github"},
	FieldImage:        {"profile image url", "profile image", "photo url", "avatar"},
	FieldVisible:      {"profile visible", "visible", "visibility"},
	FieldStartup:      {"startup name", "startup", "company name", "company"},
	FieldDescription:  {"startup description", "company description", "what are you building"},
	FieldIndustry:     {"industry", "startup industry", "sector"},
	FieldStage:        {"stage", "startup stage"},
	FieldWebsite:      {"website", "website url", "startup website", "company website"},
	FieldTargetMarket: {"target market", "market"},
	FieldRevenue:      {"revenue arr", "revenue", "arr"},
	FieldSkills:       {"skills offered", "skills", "expertise"},
	FieldSkillsWanted: {"skills wanted", "skills needed", "looking for"},
	FieldHobbies:      {"hobbies", "interests"},
	FieldAboutMe:      {"about me", "about you"},
	FieldCanHelpWith:  {"can help with", "i can help with"},
	FieldHelpNeeded:   {"help needed", "i need help with"},
	FieldLove:         {"love", "i love", "what do you love"},
}

// aliasOwner maps every alias to its field.
var aliasOwner = func() map[string]Field {
	m := make(map[string]Field)
	for f, aliases := range columnAliases {
		for _, a := range aliases {
			m[a] = f
		}
	}
	return m
}()

// Aliases returns the accepted header spellings for f.
func Aliases(f Field) []string {
	return columnAliases[f]
}

// Row is one data row keyed by lowercased header. Number is the 1-based file row; the header is row 1.
type Row struct {
	Number int
	header []string
	values map[string]string
}

func newRow(number int, header, record []string) Row {
	values := make(map[string]string, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if _, seen := values[h]; seen {
			continue
		}
		if i < len(record) {
			values[h] = strings.TrimSpace(record[i])
		} else {
			values[h] = ""
		}
	}
	return Row{Number: number, header: header, values: values}
}

// NewRow builds a row from a header and cell values, normalizing the header the way decoding does.
func NewRow(number int, header, cells []string) Row {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}
	return newRow(number, normalized, cells)
}

// column finds the header matching candidates: exact match in candidate order first,
// then the first header in file order that contains any candidate. Headers for which skip
// returns true are passed over in the substring pass.
func (r Row) column(skip func(string) bool, candidates ...string) (string, bool) {
	for _, c := range candidates {
		c = shared.NormalizeKey(c)
		if _, ok := r.values[c]; ok {
			return c, true
		}
	}
	for _, h := range r.header {
		if h == "" || (skip != nil && skip(h)) {
			continue
		}
		for _, c := range candidates {
			if c = shared.NormalizeKey(c); c != "" && strings.Contains(h, c) {
				return h, true
			}
		}
	}
	return "", false
}

// Pick returns the trimmed value of the column best matching candidates, or "" when none matches.
func Pick(row Row, candidates ...string) string {
	h, ok := row.column(nil, candidates...)
	if !ok {
		return ""
	}
	return row.values[h]
}

// Has reports whether any header matches candidates, even if this row's cell is empty.
func (r Row) Has(candidates ...string) bool {
	_, ok := r.column(nil, candidates...)
	return ok
}

// otherField reports whether h is spelled exactly like an alias of a field other than f.
// Such a header belongs to that field, so "startup name" never feeds the founder's name.
func otherField(f Field) func(string) bool {
	return func(h string) bool {
		owner, ok := aliasOwner[h]
		return ok && owner != f
	}
}

// Field returns the value for a canonical field using [columnAliases].
// Unlike [Pick], a header that is another field's alias never matches by substring.
func (r Row) Field(f Field) string {
	h, ok := r.column(otherField(f), columnAliases[f]...)
	if !ok {
		return ""
	}
	return r.values[h]
}

// HasField reports whether the file has a column for f.
func (r Row) HasField(f Field) bool {
	_, ok := r.column(otherField(f), columnAliases[f]...)
	return ok
}

// SplitTags splits on commas and semicolons, trims, drops empty items and collapses
// case-insensitive duplicates while keeping first-seen order and spelling.
func SplitTags(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' })

	seen := make(map[string]bool, len(parts))
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		key := shared.NormalizeKey(p)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, p)
	}
	return tags
}
