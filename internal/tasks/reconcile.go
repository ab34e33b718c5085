package tasks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

// DedupeMode decides what happens to a row whose email already belongs to a founder.
type DedupeMode string

const (
	// DedupeUpdate overwrites the existing founder with the row's values.
	DedupeUpdate DedupeMode = "update"
	// DedupeSkip leaves the existing founder alone and reports the row as skipped.
	DedupeSkip DedupeMode = "skip"
)

// ParseDedupeMode maps "" to [DedupeUpdate] and rejects unknown modes.
func ParseDedupeMode(s string) (DedupeMode, error) {
	switch DedupeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DedupeUpdate:
		return DedupeUpdate, nil
	case DedupeSkip, "strict":
		return DedupeSkip, nil
	default:
		return "", fmt.Errorf("%w: dedupe mode must be update or skip, got %q", shared.ErrInvalidArgument, s)
	}
}

// Skip reasons
const (
	ReasonMissingStartup  = "missing startup name"
	ReasonMissingEmail    = "missing email"
	ReasonMissingLinkedIn = "missing linkedin url"
	ReasonAlreadyExists   = "already exists"
)

const bioSeparator = " | "

// reconciler turns one normalized row into a founder create or update.
type reconciler struct {
	resolver *Resolver
	mode     DedupeMode
	dryRun   bool
	// seen holds email keys a dry run would already have created earlier in the batch.
	seen map[string]bool
}

func newReconciler(dryRun bool, mode DedupeMode) *reconciler {
	return &reconciler{resolver: NewResolver(dryRun), mode: mode, dryRun: dryRun, seen: map[string]bool{}}
}

// reconcile processes row against store. A non-nil error means the row failed unexpectedly;
// skips and validation failures are reported through the outcome. wouldCreate is true when the
// row creates (or in a dry run would create) a founder.
func (c *reconciler) reconcile(store ImportStore, row Row) (outcome models.RowOutcome, wouldCreate bool, err error) {
	outcome = models.RowOutcome{Row: row.Number}

	startupName := row.Field(FieldStartup)
	email := row.Field(FieldEmail)
	linkedIn := row.Field(FieldLinkedIn)
	outcome.Email = email

	switch {
	case startupName == "":
		return skipped(outcome, ReasonMissingStartup), false, nil
	case email == "":
		return skipped(outcome, ReasonMissingEmail), false, nil
	case linkedIn == "":
		return skipped(outcome, ReasonMissingLinkedIn), false, nil
	}

	existing, err := store.FounderByEmail(email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return outcome, false, fmt.Errorf("failed to look up founder: %w", err)
	}
	exists := existing != nil || c.seen[shared.NormalizeKey(email)]

	if exists && c.mode == DedupeSkip {
		return skipped(outcome, ReasonAlreadyExists), false, nil
	}

	startupID, err := c.resolver.ResolveStartup(store, startupName, startupDetails(row))
	if err != nil {
		return outcome, false, fmt.Errorf("failed to resolve startup: %w", err)
	}

	founder := existing
	if founder == nil {
		founder = models.NewFounder(firstNonEmpty(row.Field(FieldName), models.EmailLocalPart(email)), email, linkedIn)
	} else {
		if name := row.Field(FieldName); name != "" {
			founder.Name = name
		}
		founder.Email = email
		founder.LinkedInURL = linkedIn
	}
	founder.StartupID = startupID
	applyOptionalFields(founder, row, existing == nil)

	if existing == nil || row.HasField(FieldSkills) || row.HasField(FieldSkillsWanted) {
		names := mergeTags(SplitTags(row.Field(FieldSkills)), SplitTags(row.Field(FieldSkillsWanted)))
		if founder.SkillIDs, err = c.resolveTags(store, models.KindSkill, names); err != nil {
			return outcome, false, err
		}
	}
	if existing == nil || row.HasField(FieldHobbies) {
		if founder.HobbyIDs, err = c.resolveTags(store, models.KindHobby, SplitTags(row.Field(FieldHobbies))); err != nil {
			return outcome, false, err
		}
	}

	if err := founder.Validate(); err != nil {
		outcome.Status = models.StatusError
		outcome.Reason = validationReason(err)
		return outcome, false, nil
	}

	wouldCreate = !exists
	outcome.Status = models.StatusOK

	if c.dryRun {
		outcome.Action = models.ActionWouldUpsert
		return outcome, wouldCreate, nil
	}

	if err := store.SaveFounder(founder); err != nil {
		return outcome, false, fmt.Errorf("failed to save founder: %w", err)
	}

	outcome.Action = models.ActionUpdated
	if wouldCreate {
		outcome.Action = models.ActionCreated
	}
	return outcome, wouldCreate, nil
}

// markSeen remembers a dry-run create so a later row with the same email counts as an update.
func (c *reconciler) markSeen(email string) {
	c.seen[shared.NormalizeKey(email)] = true
}

func (c *reconciler) resolveTags(store ImportStore, kind models.TagKind, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := c.resolver.ResolveTag(store, kind, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %q: %w", kind, name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func skipped(o models.RowOutcome, reason string) models.RowOutcome {
	o.Status = models.StatusSkipped
	o.Reason = reason
	return o
}

func validationReason(err error) string {
	return strings.TrimPrefix(err.Error(), shared.ErrInvalidInput.Error()+": ")
}

func startupDetails(row Row) models.StartupDetails {
	return models.StartupDetails{
		Description:  row.Field(FieldDescription),
		Industry:     row.Field(FieldIndustry),
		Stage:        models.NormalizeStage(row.Field(FieldStage)),
		WebsiteURL:   row.Field(FieldWebsite),
		TargetMarket: row.Field(FieldTargetMarket),
		RevenueARR:   row.Field(FieldRevenue),
	}
}

// applyOptionalFields copies optional profile columns onto founder. For existing founders only
// columns present in the file are written, so a sheet without a bio column keeps stored bios.
func applyOptionalFields(founder *models.Founder, row Row, isNew bool) {
	set := func(dst *string, f Field) {
		if isNew || row.HasField(f) {
			*dst = row.Field(f)
		}
	}
	set(&founder.Location, FieldLocation)
	set(&founder.TwitterURL, FieldTwitter)
	set(&founder.GitHubURL, FieldGitHub)
	set(&founder.ProfileImageURL, FieldImage)

	if bio, ok := composeBio(row); ok || isNew {
		founder.Bio = bio
	}

	if v, ok := parseVisible(row.Field(FieldVisible)); ok {
		founder.ProfileVisible = v
	} else if isNew {
		founder.ProfileVisible = true
	}
}

// bioParts are the about-me style columns composed into a bio, in order, with their labels.
var bioParts = []struct {
	field Field
	label string
}{
	{FieldAboutMe, ""},
	{FieldCanHelpWith, "Can help with: "},
	{FieldHelpNeeded, "Looking for help with: "},
	{FieldLove, "Loves: "},
}

// composeBio prefers a bio column; otherwise it joins the labelled about-me style columns.
func composeBio(row Row) (string, bool) {
	if row.HasField(FieldBio) {
		return row.Field(FieldBio), true
	}

	var parts []string
	present := false
	for _, p := range bioParts {
		if !row.HasField(p.field) {
			continue
		}
		present = true
		if v := row.Field(p.field); v != "" {
			parts = append(parts, p.label+v)
		}
	}
	return strings.Join(parts, bioSeparator), present
}

func parseVisible(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "public", "visible":
		return true, true
	case "no", "n", "private", "hidden":
		return false, true
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return v, err == nil
}

// mergeTags concatenates lists, dropping case-insensitive duplicates.
func mergeTags(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	return SplitTags(strings.Join(all, ","))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
