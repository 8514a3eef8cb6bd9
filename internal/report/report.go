// Package report renders locate results over an HTML snapshot as JSON-ready values.
package report

import (
	"strings"
	"unicode/utf8"

	"github.com/letmevibethatforyou/locatex"
	"github.com/letmevibethatforyou/locatex/htmldoc"
	"github.com/letmevibethatforyou/locatex/internal/suggest"
)

const snippetLen = 120

// Report is the serialized form of one locate call.
type Report struct {
	RequestID      string               `json:"request_id"`
	Query          string               `json:"query"`
	EffectiveQuery string               `json:"effective_query"`
	Type           string               `json:"type,omitempty"`
	TypeInferred   bool                 `json:"type_inferred,omitempty"`
	Total          int                  `json:"total"`
	Took           int64                `json:"took_ms"`
	MaxScore       float64              `json:"max_score"`
	Reference      string               `json:"reference,omitempty"`
	Matches        []Match              `json:"matches"`
	Diagnostics    []locatex.Diagnostic `json:"diagnostics,omitempty"`
	Suggestions    []suggest.Suggestion `json:"suggestions,omitempty"`
}

// Match is one located element.
type Match struct {
	Rank         int                     `json:"rank"`
	Path         string                  `json:"path"`
	Tag          string                  `json:"tag"`
	Text         string                  `json:"text,omitempty"`
	Relevance    float64                 `json:"relevance"`
	DetectedType string                  `json:"detected_type"`
	Sources      []locatex.MatchedSource `json:"sources"`
}

// Build converts results into a Report. When nothing was located it attaches
// suggestions for the query.
func Build(doc *htmldoc.Document, res *locatex.Results) Report {
	r := Report{
		RequestID:      res.RequestID,
		Query:          res.Query,
		EffectiveQuery: res.EffectiveQuery,
		Type:           res.Type,
		TypeInferred:   res.TypeInferred,
		Total:          res.Total,
		Took:           res.Took,
		MaxScore:       res.MaxScore,
		Matches:        make([]Match, 0, len(res.Items)),
		Diagnostics:    compact(res.Diagnostics),
	}
	if res.Reference != nil {
		r.Reference = htmldoc.Path(res.Reference)
	}

	for i, item := range res.Items {
		r.Matches = append(r.Matches, Match{
			Rank:         i + 1,
			Path:         htmldoc.Path(item.Element),
			Tag:          doc.TagName(item.Element),
			Text:         snippet(doc.InnerText(item.Element)),
			Relevance:    item.Relevance,
			DetectedType: item.DetectedType,
			Sources:      item.Sources,
		})
	}

	if len(r.Matches) == 0 {
		r.Suggestions = suggest.Suggest(doc, nil, res.Query, suggest.DefaultLimit, suggest.DefaultThreshold)
	}
	return r
}

// compact folds repeated per-element geometry diagnostics into one entry per kind and message.
func compact(diags []locatex.Diagnostic) []locatex.Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	seen := make(map[locatex.Diagnostic]bool, len(diags))
	out := make([]locatex.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

func snippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:snippetLen])) + "…"
}
