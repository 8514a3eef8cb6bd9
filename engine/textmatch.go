package engine

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize trims s, collapses internal whitespace runs to one space and,
// unless caseSensitive, lower-cases it.
func Normalize(s string, caseSensitive bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// Matches reports whether text satisfies query. In exact mode the normalized
// strings must be equal; otherwise query must occur as an ordered phrase, or
// every query word must occur somewhere in text.
func Matches(text, query string, exact, caseSensitive bool) bool {
	t := Normalize(text, caseSensitive)
	q := Normalize(query, caseSensitive)
	if t == "" || q == "" {
		return false
	}
	if exact {
		return t == q
	}
	if strings.Contains(t, q) {
		return true
	}
	return containsAllWords(t, strings.Fields(q))
}

// Quality rates how well text satisfies query on a 0-100 scale. Bands, best first:
// equality, phrase on word boundaries, prefix, phrase anywhere, all words in any order.
func Quality(text, query string, caseSensitive bool) float64 {
	t := Normalize(text, caseSensitive)
	q := Normalize(query, caseSensitive)
	if t == "" || q == "" {
		return 0
	}
	if t == q {
		return 100
	}

	textLen := float64(utf8.RuneCountInString(t))
	if strings.Contains(t, q) {
		ratio := float64(utf8.RuneCountInString(q)) / textLen
		switch {
		case hasWordBoundaryMatch(t, q):
			return math.Min(95, 60+ratio*35)
		case strings.HasPrefix(t, q):
			return math.Min(85, 40+ratio*45)
		default:
			return math.Min(70, 10+ratio*60)
		}
	}

	words := strings.Fields(q)
	if !containsAllWords(t, words) {
		return 0
	}
	matchedLen := 0
	for _, w := range words {
		matchedLen += utf8.RuneCountInString(w)
	}
	// Every word is present here, so word coverage is always 1.
	coverage := 1.0
	contentCoverage := float64(matchedLen) / textLen
	return math.Min(50, 5+coverage*20+contentCoverage*25)
}

func containsAllWords(text string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

// hasWordBoundaryMatch reports whether needle occurs in s with no word
// character directly before or after it.
func hasWordBoundaryMatch(s, needle string) bool {
	if needle == "" {
		return false
	}
	for offset := 0; offset <= len(s)-len(needle); {
		idx := strings.Index(s[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(s) || !isWordRune(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
