// Package complete ranks wiki-link targets and tags for editor completion.
package complete

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/starford/kyuubi/internal/apperr"
	"github.com/starford/kyuubi/internal/parser"
)

const (
	KindLink = "link"
	KindTag  = "tag"

	DefaultLimit = 20
)

// Candidate is one completion suggestion. Insert is the text the editor
// should put in place of the typed prefix.
type Candidate struct {
	Kind    string `json:"kind"`
	Value   string `json:"value"`
	Insert  string `json:"insert"`
	Score   int    `json:"score"`
	Matched []int  `json:"matched,omitempty"`
}

// Suggest returns up to limit candidates of kind for query, best first.
// Link candidates are the document's wiki-link targets plus its headings;
// tag candidates are its tags. An empty query keeps document order.
func Suggest(o *parser.Outline, kind, query string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var values []string
	switch kind {
	case KindLink, "":
		kind = KindLink
		values = linkValues(o)
	case KindTag:
		values = o.Tags
	default:
		return nil, fmt.Errorf("complete: unknown kind %q: %w", kind, apperr.ErrInvalidInput)
	}

	out := []Candidate{}
	if query == "" {
		for _, v := range values {
			if len(out) == limit {
				break
			}
			out = append(out, newCandidate(kind, v, 0, nil))
		}
		return out, nil
	}

	for _, m := range fuzzy.Find(query, values) {
		if len(out) == limit {
			break
		}
		out = append(out, newCandidate(kind, m.Str, m.Score, m.MatchedIndexes))
	}
	return out, nil
}

func linkValues(o *parser.Outline) []string {
	seen := map[string]struct{}{}
	var values []string
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	for _, l := range o.Links {
		add(l.Target)
	}
	for _, h := range o.Headings {
		add(h.Text)
	}
	return values
}

func newCandidate(kind, value string, score int, matched []int) Candidate {
	insert := "[[" + value + "]]"
	if kind == KindTag {
		insert = "#" + value
	}
	return Candidate{Kind: kind, Value: value, Insert: insert, Score: score, Matched: matched}
}
