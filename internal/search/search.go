// package search ranks directory entries against a free-text query
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/desertthunder/founders/internal/models"
)

const (
	KindFounder = "founder"
	KindStartup = "startup"
	KindSkill   = "skill"
	KindHobby   = "hobby"
)

// Document is one searchable entry. Text is what the query is matched against.
type Document struct {
	Kind  string
	ID    string
	Label string
	Text  string
}

// Hit is a matched document. Lower Distance is a closer match.
type Hit struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Distance int    `json:"distance"`
}

// Find returns documents whose text contains the query's characters in order, ignoring case and
// diacritics, closest first. limit <= 0 returns every match.
func Find(q string, docs []Document, limit int) []Hit {
	q = strings.TrimSpace(q)
	if q == "" || len(docs) == 0 {
		return []Hit{}
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	ranks := fuzzy.RankFindNormalizedFold(q, texts)
	sort.Stable(ranks)

	hits := make([]Hit, 0, len(ranks))
	for _, r := range ranks {
		d := docs[r.OriginalIndex]
		hits = append(hits, Hit{Kind: d.Kind, ID: d.ID, Label: d.Label, Distance: r.Distance})
		if limit > 0 && len(hits) == limit {
			break
		}
	}
	return hits
}

// FounderDocuments indexes visible founders by name and location.
func FounderDocuments(founders []*models.Founder) []Document {
	docs := make([]Document, 0, len(founders))
	for _, f := range founders {
		if !f.ProfileVisible {
			continue
		}
		docs = append(docs, Document{Kind: KindFounder, ID: f.ID(), Label: f.Name, Text: join(f.Name, f.Location)})
	}
	return docs
}

// StartupDocuments indexes startups by name and industry.
func StartupDocuments(startups []*models.Startup) []Document {
	docs := make([]Document, 0, len(startups))
	for _, s := range startups {
		docs = append(docs, Document{Kind: KindStartup, ID: s.ID(), Label: s.Name, Text: join(s.Name, s.Industry)})
	}
	return docs
}

// TagDocuments indexes skills or hobbies by name and category.
func TagDocuments(tags []*models.Tag) []Document {
	docs := make([]Document, 0, len(tags))
	for _, t := range tags {
		kind := KindSkill
		if t.Kind == models.KindHobby {
			kind = KindHobby
		}
		docs = append(docs, Document{Kind: kind, ID: t.ID(), Label: t.Name, Text: join(t.Name, t.Category)})
	}
	return docs
}

func join(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
