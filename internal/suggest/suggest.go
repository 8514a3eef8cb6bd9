// Package suggest proposes texts close to a query that located nothing.
package suggest

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/letmevibethatforyou/locatex"
)

const (
	// DefaultThreshold is the minimum Jaro-Winkler similarity reported.
	DefaultThreshold = 0.75
	// DefaultLimit is the number of suggestions returned.
	DefaultLimit = 3

	maxTextLen = 80
)

var labelAttrs = []string{"aria-label", "placeholder", "title", "alt", "value"}

// Suggestion is a document text similar to the query.
type Suggestion struct {
	Text       string  `json:"text"`
	Similarity float32 `json:"similarity"`
}

// Suggest returns up to limit distinct visible texts below container whose
// Jaro-Winkler similarity to query is at least threshold, best first.
func Suggest(doc locatex.Document, container locatex.Element, query string, limit int, threshold float32) []Suggestion {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" || limit <= 0 {
		return nil
	}
	if container == nil {
		container = doc.Root()
	}

	seen := make(map[string]bool)
	var out []Suggestion
	consider := func(text string) {
		text = strings.Join(strings.Fields(text), " ")
		if text == "" || utf8.RuneCountInString(text) > maxTextLen {
			return
		}
		key := strings.ToLower(text)
		if seen[key] {
			return
		}
		seen[key] = true

		score, err := edlib.StringsSimilarity(q, key, edlib.JaroWinkler)
		if err != nil || score < threshold {
			return
		}
		out = append(out, Suggestion{Text: text, Similarity: score})
	}

	for _, el := range doc.Descendants(container) {
		if doc.IsHidden(el) {
			continue
		}
		consider(doc.InnerText(el))
		for _, name := range labelAttrs {
			if v, ok := doc.Attribute(el, name); ok {
				consider(v)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
