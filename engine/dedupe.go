package engine

import (
	"sort"
	"unicode/utf8"

	"github.com/letmevibethatforyou/locatex"
)

// candidate is an element that matched the query with positive relevance.
type candidate struct {
	element     locatex.Element
	sources     Sources
	matched     []locatex.MatchedSource
	relevance   float64
	detected    string
	interactive bool
	depth       int
	order       int
}

func (c candidate) match() locatex.Match {
	return locatex.Match{
		Element:      c.element,
		Relevance:    c.relevance,
		DetectedType: c.detected,
		Sources:      c.matched,
	}
}

// ownContentSources are attribute sources that, when they differ from an
// ancestor's, show a descendant names itself.
var ownContentSources = []locatex.SourceKind{
	locatex.SourceAriaLabel, locatex.SourceLabelText, locatex.SourcePlaceholder,
	locatex.SourceTitle, locatex.SourceAlt, locatex.SourceValue,
	locatex.SourceDataLabel, locatex.SourceDataTitle, locatex.SourceDataTestID,
}

var (
	semanticTags = map[string]bool{
		"button": true, "a": true, "input": true, "select": true, "textarea": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"label": true, "legend": true, "li": true, "td": true,
	}
	genericTags = map[string]bool{"div": true, "span": true, "p": true}
)

// Deduplicate drops ancestors whose match is already explained by a more
// specific descendant. Candidates are visited deepest first; the returned
// slice keeps that order.
func Deduplicate(doc locatex.Document, cands []candidate) []candidate {
	ordered := make([]candidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].depth > ordered[j].depth
	})

	accepted := make([]candidate, 0, len(ordered))
next:
	for _, c := range ordered {
		for _, a := range accepted {
			if doc.Contains(c.element, a.element) {
				continue next
			}
		}
		for i, a := range accepted {
			if !doc.Contains(a.element, c.element) {
				continue
			}
			if !hasOwnContent(doc, c, a) {
				continue next
			}
			accepted[i] = c
			continue next
		}
		accepted = append(accepted, c)
	}
	return accepted
}

// hasOwnContent reports whether c carries meaning of its own relative to its
// ancestor a, so that c should stand in for a.
func hasOwnContent(doc locatex.Document, c, a candidate) bool {
	if c.interactive && !a.interactive {
		return true
	}

	for _, kind := range ownContentSources {
		if v := c.sources[kind]; v != "" && v != a.sources[kind] {
			return true
		}
	}

	if semanticTags[doc.TagName(c.element)] && genericTags[doc.TagName(a.element)] {
		return true
	}

	own := Normalize(c.sources[locatex.SourceTextContent], false)
	parent := Normalize(a.sources[locatex.SourceTextContent], false)
	return own != "" &&
		hasWordBoundaryMatch(parent, own) &&
		2*utf8.RuneCountInString(own) < utf8.RuneCountInString(parent)
}
