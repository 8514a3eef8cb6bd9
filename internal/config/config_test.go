package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/locatex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locatex.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("empty_path", func(t *testing.T) {
		s, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Search{}, s)
	})

	t.Run("full", func(t *testing.T) {
		path := writeConfig(t, `
type = "button"
exact_match = true
case_sensitive = false
include_hidden = true
max_results = 3
near = "Employee AAA"
proximity_threshold = 150.5
directions = ["right", "below"]
`)
		s, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "button", s.Type)
		require.NotNil(t, s.ExactMatch)
		assert.True(t, *s.ExactMatch)
		require.NotNil(t, s.CaseSensitive)
		assert.False(t, *s.CaseSensitive)
		require.NotNil(t, s.IncludeHidden)
		assert.True(t, *s.IncludeHidden)
		require.NotNil(t, s.MaxResults)
		assert.Equal(t, 3, *s.MaxResults)
		assert.Equal(t, "Employee AAA", s.Near)
		require.NotNil(t, s.ProximityThreshold)
		assert.Equal(t, 150.5, *s.ProximityThreshold)
		assert.Equal(t, []string{"right", "below"}, s.Directions)
	})

	t.Run("partial_leaves_unset", func(t *testing.T) {
		s, err := Load(writeConfig(t, `max_results = 1`))
		require.NoError(t, err)
		assert.Nil(t, s.ExactMatch)
		assert.Nil(t, s.ProximityThreshold)
		assert.Empty(t, s.Type)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(writeConfig(t, `max_results = "many`))
		assert.Error(t, err)
	})
}

func TestMerge(t *testing.T) {
	yes, no := true, false
	five, two := 5, 2
	threshold := 99.0

	base := Search{Type: "link", ExactMatch: &yes, MaxResults: &five, Near: "Header", Directions: []string{"left"}}
	override := Search{ExactMatch: &no, MaxResults: &two, ProximityThreshold: &threshold}

	merged := Merge(base, override)

	assert.Equal(t, "link", merged.Type)
	assert.False(t, *merged.ExactMatch)
	assert.Equal(t, 2, *merged.MaxResults)
	assert.Equal(t, "Header", merged.Near)
	assert.Equal(t, 99.0, *merged.ProximityThreshold)
	assert.Equal(t, []string{"left"}, merged.Directions)
	assert.Nil(t, merged.CaseSensitive)

	assert.Equal(t, base, Merge(base, Search{}))
}

func TestOptions(t *testing.T) {
	t.Run("empty_keeps_defaults", func(t *testing.T) {
		opts, err := Search{}.Options()
		require.NoError(t, err)
		assert.Empty(t, opts)
		assert.Equal(t, locatex.DefaultConfig(), locatex.NewConfig(opts...))
	})

	t.Run("applied", func(t *testing.T) {
		yes := true
		limit := 4
		threshold := 120.0
		s := Search{
			Type:               "Input",
			CaseSensitive:      &yes,
			IncludeHidden:      &yes,
			MaxResults:         &limit,
			Near:               "Email",
			ProximityThreshold: &threshold,
			Directions:         []string{"Below", "right", "below"},
		}

		opts, err := s.Options()
		require.NoError(t, err)
		cfg := locatex.NewConfig(opts...)

		assert.Equal(t, "input", cfg.Type)
		assert.False(t, cfg.ExactMatch)
		assert.True(t, cfg.CaseSensitive)
		assert.True(t, cfg.IncludeHidden)
		assert.Equal(t, 4, cfg.MaxResults)
		assert.Equal(t, "Email", cfg.NearText)
		assert.Equal(t, 120.0, cfg.ProximityThreshold)
		assert.Equal(t, []locatex.Direction{locatex.DirBelow, locatex.DirRight}, cfg.Directions)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad_direction", func(t *testing.T) {
		_, err := Search{Directions: []string{"up"}}.Options()
		assert.True(t, errors.Is(err, locatex.ErrInvalidOption))
	})
}
