package models

import (
	"slices"
	"strings"
)

// Vocabularies accepted by the API for startup descriptive fields.
// Imports map free-text stages onto StartupStages with [NormalizeStage]; other fields are stored as given.
var (
	StartupStages = []string{
		"Ideation", "Validation", "MVP", "Design Partners (pre-revenue)", "Customers (post-revenue)",
		"Pre-seed", "Seed", "Series A", "Series B or later", "Scaling",
	}

	Industries = []string{
		"AI/ML/Deep Learning", "Deeptech", "DevTools", "Infrastructure / Cloud", "Agents", "Fintech",
		"Healthtech", "Biotech", "Edtech", "Martech", "Salestech", "Legaltech", "Insurtech", "Proptech",
		"Foodtech", "Industrialtech", "Ecommerce / Marketplaces", "Consumer", "Gaming", "Robotics",
		"Hardware / Devices", "Wearables", "Climate / Energy", "Mobility / Transportation", "Aerospace",
		"Social / Community", "Web3 / Crypto", "Security / Privacy",
	}

	TargetMarkets = []string{
		"Consumers / D2C", "SMBs", "Mid-Market", "Enterprises", "Developers / Engineers", "Startups",
		"Public Sector / Government", "Healthcare Providers", "Educational Institutions", "Nonprofits",
		"Marketplaces / Platforms", "Internal / In-house Teams",
	}

	RevenueBrackets = []string{
		"Pre-revenue", "$1-10K", "$10-25K", "$25-50K", "$50-150K", "$150-500K", "$500-1M", "$1M+",
	}
)

// InVocabulary reports whether v is empty or one of allowed.
func InVocabulary(v string, allowed []string) bool {
	return v == "" || slices.Contains(allowed, v)
}

// stageAliases maps common spellings, matched whole after lowercasing, to a StartupStages entry.
var stageAliases = map[string]string{
	"idea":                 "Ideation",
	"idea stage":           "Ideation",
	"concept":              "Ideation",
	"idea validation":      "Validation",
	"validating":           "Validation",
	"prototype":            "MVP",
	"building":             "MVP",
	"design partners":      "Design Partners (pre-revenue)",
	"pre-revenue":          "Design Partners (pre-revenue)",
	"pre revenue":          "Design Partners (pre-revenue)",
	"no revenue":           "Design Partners (pre-revenue)",
	"customers":            "Customers (post-revenue)",
	"post-revenue":         "Customers (post-revenue)",
	"post revenue":         "Customers (post-revenue)",
	"customer acquisition": "Customers (post-revenue)",
	"preseed":              "Pre-seed",
	"pre seed":             "Pre-seed",
	"series b":             "Series B or later",
	"series c":             "Series B or later",
	"series b+":            "Series B or later",
	"growth":               "Series B or later",
	"scale":                "Scaling",
	"investing":            "Series A",
}

// stageKeywords are tried in order when no alias matches; the first keyword found in the text wins.
var stageKeywords = []struct {
	keyword string
	stage   string
}{
	{"pre-seed", "Pre-seed"},
	{"pre seed", "Pre-seed"},
	{"preseed", "Pre-seed"},
	{"series a", "Series A"},
	{"series", "Series B or later"},
	{"seed", "Seed"},
	{"validation", "Validation"},
	{"idea", "Ideation"},
	{"pre-revenue", "Design Partners (pre-revenue)"},
	{"pre revenue", "Design Partners (pre-revenue)"},
	{"no revenue", "Design Partners (pre-revenue)"},
	{"design partner", "Design Partners (pre-revenue)"},
	{"revenue", "Customers (post-revenue)"},
	{"customer", "Customers (post-revenue)"},
	{"mvp", "MVP"},
	{"product", "MVP"},
	{"prototype", "MVP"},
	{"scal", "Scaling"},
}

// NormalizeStage maps free text onto StartupStages: a vocabulary entry in any case,
// then a known alias, then the first matching keyword. Text matching none of them is
// treated as MVP. Blank input stays blank.
func NormalizeStage(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if key == "" {
		return ""
	}
	for _, stage := range StartupStages {
		if strings.ToLower(stage) == key {
			return stage
		}
	}
	if stage, ok := stageAliases[key]; ok {
		return stage
	}
	for _, k := range stageKeywords {
		if strings.Contains(key, k.keyword) {
			return k.stage
		}
	}
	return "MVP"
}
