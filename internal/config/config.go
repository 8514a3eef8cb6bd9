// Package config loads locate defaults from a TOML file and turns them into
// search options.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/locatex"
	"github.com/pelletier/go-toml/v2"
)

// Search holds locate settings. Nil pointers and empty values mean "not set",
// so that the library defaults apply.
type Search struct {
	Type               string   `toml:"type" json:"type,omitempty"`
	ExactMatch         *bool    `toml:"exact_match" json:"exact_match,omitempty"`
	CaseSensitive      *bool    `toml:"case_sensitive" json:"case_sensitive,omitempty"`
	IncludeHidden      *bool    `toml:"include_hidden" json:"include_hidden,omitempty"`
	MaxResults         *int     `toml:"max_results" json:"max_results,omitempty"`
	Near               string   `toml:"near" json:"near,omitempty"`
	ProximityThreshold *float64 `toml:"proximity_threshold" json:"proximity_threshold,omitempty"`
	Directions         []string `toml:"directions" json:"directions,omitempty"`
}

// Load reads a TOML settings file. A missing path yields empty settings.
func Load(path string) (Search, error) {
	var s Search
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, errors.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "parse config %s", path)
	}
	return s, nil
}

// Merge returns base with every field set in override replacing it.
func Merge(base, override Search) Search {
	out := base
	if override.Type != "" {
		out.Type = override.Type
	}
	if override.ExactMatch != nil {
		out.ExactMatch = override.ExactMatch
	}
	if override.CaseSensitive != nil {
		out.CaseSensitive = override.CaseSensitive
	}
	if override.IncludeHidden != nil {
		out.IncludeHidden = override.IncludeHidden
	}
	if override.MaxResults != nil {
		out.MaxResults = override.MaxResults
	}
	if override.Near != "" {
		out.Near = override.Near
	}
	if override.ProximityThreshold != nil {
		out.ProximityThreshold = override.ProximityThreshold
	}
	if len(override.Directions) > 0 {
		out.Directions = override.Directions
	}
	return out
}

// Options converts the settings into search options.
func (s Search) Options() ([]locatex.SearchOption, error) {
	var opts []locatex.SearchOption
	if s.Type != "" {
		opts = append(opts, locatex.WithType(s.Type))
	}
	if s.ExactMatch != nil {
		opts = append(opts, locatex.WithExactMatch(*s.ExactMatch))
	}
	if s.CaseSensitive != nil {
		opts = append(opts, locatex.WithCaseSensitive(*s.CaseSensitive))
	}
	if s.IncludeHidden != nil {
		opts = append(opts, locatex.WithIncludeHidden(*s.IncludeHidden))
	}
	if s.MaxResults != nil {
		opts = append(opts, locatex.WithMaxResults(*s.MaxResults))
	}
	if s.Near != "" {
		opts = append(opts, locatex.WithNear(s.Near))
	}
	if s.ProximityThreshold != nil {
		opts = append(opts, locatex.WithProximityThreshold(*s.ProximityThreshold))
	}
	if len(s.Directions) > 0 {
		dirs := make([]locatex.Direction, 0, len(s.Directions))
		for _, raw := range s.Directions {
			d, err := locatex.ParseDirection(raw)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, d)
		}
		opts = append(opts, locatex.WithDirections(dirs...))
	}
	return opts, nil
}
