package engine

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/letmevibethatforyou/locatex"
)

// sourceWeights rank text sources by how deliberately they name an element.
var sourceWeights = map[locatex.SourceKind]float64{
	locatex.SourceAriaLabel:       20,
	locatex.SourceLabelText:       18,
	locatex.SourceAriaLabelledBy:  16,
	locatex.SourceTextContent:     15,
	locatex.SourceInnerText:       15,
	locatex.SourcePlaceholder:     12,
	locatex.SourceDataLabel:       12,
	locatex.SourceTitle:           10,
	locatex.SourceAlt:             10,
	locatex.SourceValue:           8,
	locatex.SourceAriaDescribedBy: 8,
	locatex.SourceDataTitle:       8,
	locatex.SourceDataTestID:      6,
	locatex.SourceDataTest:        6,
	locatex.SourceName:            5,
	locatex.SourceID:              3,
	locatex.SourceClassName:       1,
}

const defaultSourceWeight = 1.0

// SourceWeight returns the ranking weight of a text source kind.
func SourceWeight(kind locatex.SourceKind) float64 {
	if w, ok := sourceWeights[kind]; ok {
		return w
	}
	return defaultSourceWeight
}

var (
	buttonWords = []string{"submit", "save", "send", "login", "register", "click", "press", "button"}
	linkWords   = []string{"link", "more", "read", "view", "go", "navigate"}
	fieldWords  = []string{"name", "email", "password", "search", "input", "field", "enter", "text", "box"}
)

const (
	typeMatchBonus      = 25.0
	semanticBonus       = 10.0
	interactiveBonus    = 8.0
	visibleBonus        = 5.0
	singleSourceBonus   = 5.0
	typeMismatchFactor  = 0.001
	exactMismatchFactor = 0.5
	hiddenFactor        = 0.1
)

// RelevanceInput carries everything needed to score one candidate.
type RelevanceInput struct {
	// Sources are the matched text sources; all qualities are positive.
	Sources []locatex.MatchedSource
	// Query is the effective query after keyword stripping.
	Query string
	// DetectedType is the element's semantic type.
	DetectedType string
	// WantedType is the active type filter, empty when none.
	WantedType string

	ExactMatch    bool
	CaseSensitive bool
	Visible       bool
	IncludeHidden bool
	Interactive   bool

	// Proximity is the 0-100 proximity score, 0 without a reference.
	Proximity float64
}

// Relevance combines match quality, type fit, semantics, visibility,
// specificity and proximity into a single non-negative score.
func Relevance(in RelevanceInput) float64 {
	score, best := 0.0, 0.0
	for _, s := range in.Sources {
		w := SourceWeight(s.Kind)
		score += w + (s.Quality/100)*w
		best = math.Max(best, s.Quality)
	}
	score *= qualityTier(best)

	if in.ExactMatch && best == 100 {
		score *= 2
	}

	if in.WantedType != "" {
		switch {
		case TypeMatches(in.WantedType, in.DetectedType):
			score += typeMatchBonus
		case best == 100:
			score *= exactMismatchFactor
		default:
			score *= typeMismatchFactor
		}
	}

	q := Normalize(in.Query, false)
	if semanticHint(q, in.DetectedType) {
		score += semanticBonus
	}

	if in.WantedType == "" && in.Interactive {
		score += interactiveBonus
	}

	if in.Visible {
		score += visibleBonus
	} else if in.IncludeHidden {
		score *= hiddenFactor
	}

	if queryLen := utf8.RuneCountInString(Normalize(in.Query, in.CaseSensitive)); queryLen > 0 && len(in.Sources) > 0 {
		total := 0
		for _, s := range in.Sources {
			total += utf8.RuneCountInString(Normalize(s.Text, in.CaseSensitive))
		}
		avgLen := float64(total) / float64(len(in.Sources))
		if avgLen > 3*float64(queryLen) {
			score *= 1 - math.Min(0.8, avgLen/(float64(queryLen)*10))
		}
	}

	if len(in.Sources) == 1 {
		score += singleSourceBonus
	}

	score += in.Proximity

	return math.Max(0, score)
}

func qualityTier(best float64) float64 {
	switch {
	case best == 100:
		return 3
	case best >= 90:
		return 2.5
	case best >= 80:
		return 2
	case best >= 60:
		return 1.5
	default:
		return 1
	}
}

// semanticHint reports whether the lower-cased query uses words associated
// with the detected type.
func semanticHint(query, detected string) bool {
	switch {
	case TypeMatches(TypeButton, detected):
		return containsAny(query, buttonWords)
	case detected == TypeLink:
		return containsAny(query, linkWords)
	case textFamily[detected] || detected == "select":
		return containsAny(query, fieldWords)
	default:
		return false
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
