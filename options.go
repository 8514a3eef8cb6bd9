package locatex

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// Direction is a preferred position of a target relative to the reference element.
type Direction string

const (
	// DirRight prefers targets whose left edge is at or past the reference's right edge.
	DirRight Direction = "right"
	// DirBelow prefers targets whose top edge is at or past the reference's bottom edge.
	DirBelow Direction = "below"
	// DirLeft prefers targets whose right edge is at or before the reference's left edge.
	DirLeft Direction = "left"
	// DirAbove prefers targets whose bottom edge is at or before the reference's top edge.
	DirAbove Direction = "above"
)

// ParseDirection converts a direction name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirRight, DirBelow, DirLeft, DirAbove:
		return d, nil
	default:
		return "", errors.WithSecondaryError(ErrInvalidOption, errors.Newf("unknown direction %q", s))
	}
}

const (
	// DefaultMaxResults is the number of elements returned when no limit is given.
	DefaultMaxResults = 10
	// DefaultProximityThreshold is the separation distance beyond which proximity scores 0.
	DefaultProximityThreshold = 200.0
)

// SearchOption represents a locate configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all locate configuration parameters.
type SearchConfig struct {
	// Type restricts results to a semantic element type (button, link, input, ...).
	// When empty it may be inferred from the query.
	Type string

	// ExactMatch requires a text source to equal the query after normalization.
	ExactMatch bool

	// CaseSensitive disables lower-casing during normalization.
	CaseSensitive bool

	// Container limits the scan to descendants of this element. Nil means the document root.
	Container Element

	// MaxResults is the maximum number of elements to return.
	MaxResults int

	// IncludeHidden scans hidden elements too, with a heavy score penalty.
	IncludeHidden bool

	// NearText is a query resolving the reference element for proximity scoring.
	NearText string

	// NearElement is a reference element used directly. It wins over NearText.
	NearElement Element

	// ProximityThreshold is the distance beyond which proximity contributes nothing.
	ProximityThreshold float64

	// Directions are the preferred positions relative to the reference element.
	Directions []Direction

	// Filters contains attribute filter expressions candidate elements must satisfy.
	Filters []Expression
}

// DefaultConfig returns the configuration every locate call starts from.
func DefaultConfig() SearchConfig {
	return SearchConfig{
		MaxResults:         DefaultMaxResults,
		ProximityThreshold: DefaultProximityThreshold,
		Directions:         []Direction{DirRight, DirBelow, DirLeft, DirAbove},
	}
}

// NewConfig merges opts over DefaultConfig.
func NewConfig(opts ...SearchOption) SearchConfig {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt.Apply(&cfg)
	}
	return cfg
}

// HasNear reports whether a proximity reference was requested.
func (c SearchConfig) HasNear() bool {
	return c.NearElement != nil || strings.TrimSpace(c.NearText) != ""
}

// Validate checks the configuration for values the engine cannot honor.
func (c SearchConfig) Validate() error {
	if c.MaxResults < 0 {
		return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("max results must be non-negative, got %d", c.MaxResults))
	}
	if c.ProximityThreshold < 0 || math.IsNaN(c.ProximityThreshold) || math.IsInf(c.ProximityThreshold, 0) {
		return errors.WithSecondaryError(ErrInvalidOption, errors.Newf("proximity threshold must be a non-negative finite number, got %v", c.ProximityThreshold))
	}
	for _, d := range c.Directions {
		if _, err := ParseDirection(string(d)); err != nil {
			return err
		}
	}
	return nil
}

// optionFunc is a function that implements SearchOption.
type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithType restricts results to the given semantic type.
func WithType(t string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Type = strings.ToLower(strings.TrimSpace(t))
	})
}

// WithExactMatch requires normalized equality between a text source and the query.
func WithExactMatch(exact bool) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.ExactMatch = exact
	})
}

// WithCaseSensitive toggles case-sensitive matching.
func WithCaseSensitive(sensitive bool) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.CaseSensitive = sensitive
	})
}

// WithContainer limits the scan to descendants of container.
func WithContainer(container Element) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Container = container
	})
}

// WithMaxResults sets the maximum number of elements to return.
func WithMaxResults(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.MaxResults = n
	})
}

// WithIncludeHidden includes hidden elements in the scan.
func WithIncludeHidden(include bool) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.IncludeHidden = include
	})
}

// WithNear anchors proximity scoring to the best match for text.
func WithNear(text string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.NearText = text
		cfg.NearElement = nil
	})
}

// WithNearElement anchors proximity scoring to el.
func WithNearElement(el Element) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.NearElement = el
		cfg.NearText = ""
	})
}

// WithProximityThreshold sets the distance beyond which proximity contributes nothing.
func WithProximityThreshold(d float64) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.ProximityThreshold = d
	})
}

// WithDirections replaces the preferred directions. Duplicates are dropped, order is kept.
func WithDirections(dirs ...Direction) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		seen := make(map[Direction]bool, len(dirs))
		cfg.Directions = make([]Direction, 0, len(dirs))
		for _, d := range dirs {
			if seen[d] {
				continue
			}
			seen[d] = true
			cfg.Directions = append(cfg.Directions, d)
		}
	})
}
