package engine

import (
	"regexp"
	"strings"
)

// Semantic types understood by type gating.
const (
	TypeButton      = "button"
	TypeLink        = "link"
	TypeInput       = "input"
	TypeInteractive = "interactive"
)

type typeKeywords struct {
	typ      string
	keywords []string
}

// queryTypeRules are checked in order; the first rule with a keyword present wins.
var queryTypeRules = []typeKeywords{
	{typ: TypeButton, keywords: []string{"button"}},
	{typ: TypeLink, keywords: []string{"link"}},
	{typ: TypeInput, keywords: []string{"input", "field", "text box", "textbox"}},
}

// InferQueryType looks for a type keyword in query. It returns the inferred type
// and the keyword that triggered it, or two empty strings.
func InferQueryType(query string) (typ, keyword string) {
	q := strings.ToLower(query)
	for _, rule := range queryTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.typ, kw
			}
		}
	}
	return "", ""
}

// StripKeyword removes every occurrence of keyword from query, ignoring case,
// and collapses the whitespace left behind. Occurrences inside longer words are
// removed too ("buttons" becomes "s").
func StripKeyword(query, keyword string) string {
	if keyword == "" {
		return query
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword))
	return strings.Join(strings.Fields(re.ReplaceAllString(query, " ")), " ")
}
