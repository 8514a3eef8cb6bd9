package engine

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/locatex"
	"github.com/letmevibethatforyou/locatex/htmldoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, markup string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(markup)
	require.NoError(t, err)
	return doc
}

func newTestLocator(doc locatex.Document) *Locator {
	return New(doc, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func locate(t *testing.T, doc *htmldoc.Document, query string, opts ...locatex.SearchOption) *locatex.Results {
	t.Helper()
	results, err := newTestLocator(doc).Locate(context.Background(), query, opts...)
	require.NoError(t, err)
	require.NotNil(t, results)
	return results
}

func TestLocateExactBeatsPartial(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<button id="btn">Submit</button>
		<div id="all">Submit all forms now</div>
	</body></html>`)

	results := locate(t, doc, "Submit")

	assert.Equal(t, []locatex.Element{doc.First("#btn"), doc.First("#all")}, results.Elements())
	assert.Equal(t, 2, results.Total)
	assert.Greater(t, results.Items[0].Relevance, results.Items[1].Relevance)
	assert.Equal(t, TypeButton, results.Items[0].DetectedType)
	assert.Equal(t, results.Items[0].Relevance, results.MaxScore)
	assert.False(t, results.TypeInferred)
	assert.Empty(t, results.Type)
	assert.NotEmpty(t, results.RequestID)
}

func TestLocateInfersTypeFromQuery(t *testing.T) {
	doc := mustParse(t, `<body>
		<div id="text">Please submit the form</div>
		<button id="btn">Submit</button>
	</body>`)

	results := locate(t, doc, "submit button")

	assert.Equal(t, TypeButton, results.Type)
	assert.True(t, results.TypeInferred)
	assert.Equal(t, "submit", results.EffectiveQuery)
	assert.Equal(t, "submit button", results.Query)
	require.NotEmpty(t, results.Items)
	assert.Equal(t, doc.First("#btn"), results.Items[0].Element)
	if assert.Len(t, results.Items[0].Sources, 2) {
		assert.Equal(t, "Submit", results.Items[0].Sources[0].Text)
	}
}

func TestLocateExplicitTypeWinsOverInference(t *testing.T) {
	doc := mustParse(t, `<body><a id="link" href="/b">Button styles</a><button id="btn">Styles</button></body>`)

	results := locate(t, doc, "button styles", locatex.WithType("link"))

	assert.Equal(t, "link", results.Type)
	assert.False(t, results.TypeInferred)
	assert.Equal(t, "button styles", results.EffectiveQuery)
	require.NotEmpty(t, results.Items)
	assert.Equal(t, doc.First("#link"), results.Items[0].Element)
}

func TestLocateTagFallbackIsNotATypeMatch(t *testing.T) {
	doc := mustParse(t, `<body><ul><li id="item">Next</li></ul><p id="para">Next</p></body>`)

	results := locate(t, doc, "next link")

	assert.Equal(t, TypeLink, results.Type)
	assert.Equal(t, "next", results.EffectiveQuery)

	byElement := make(map[locatex.Element]locatex.Match)
	for _, m := range results.Items {
		byElement[m.Element] = m
	}
	item, ok := byElement[doc.First("#item")]
	require.True(t, ok)
	para, ok := byElement[doc.First("#para")]
	require.True(t, ok)

	assert.Equal(t, "li", item.DetectedType)
	assert.Equal(t, "p", para.DetectedType)
	assert.Equal(t, para.Relevance, item.Relevance)
	assert.InDelta(t, 95.0, item.Relevance, 1e-9)
}

const employeeRow = `<body>
	<div id="ref" data-rect="0,0,100,20">Employee AAA</div>
	<button id="near" data-rect="120,0,40,20">Edit</button>
	<button id="mid" data-rect="240,0,40,20">Edit</button>
	<button id="far" data-rect="500,0,40,20">Edit</button>
</body>`

func TestLocateRanksByProximity(t *testing.T) {
	doc := mustParse(t, employeeRow)

	results := locate(t, doc, "Edit",
		locatex.WithType("button"),
		locatex.WithNear("Employee AAA"),
		locatex.WithProximityThreshold(150),
		locatex.WithDirections(locatex.DirRight),
	)

	assert.Equal(t, doc.First("#ref"), results.Reference)
	assert.False(t, results.HasDiagnostic(locatex.DiagReferenceUnresolved))
	assert.False(t, results.HasDiagnostic(locatex.DiagReferenceGeometry))
	require.Equal(t, []locatex.Element{doc.First("#near"), doc.First("#mid"), doc.First("#far")}, results.Elements())

	near, mid, far := results.Items[0].Relevance, results.Items[1].Relevance, results.Items[2].Relevance
	assert.InDelta(t, (1-20.0/150)*50+20+5, near-far, 1e-9)
	assert.InDelta(t, (1-140.0/150)*50+20+5, mid-far, 1e-9)
}

func TestLocateWithoutNearIgnoresGeometry(t *testing.T) {
	doc := mustParse(t, employeeRow)

	results := locate(t, doc, "Edit", locatex.WithType("button"))

	require.Len(t, results.Items, 3)
	assert.Nil(t, results.Reference)
	assert.Equal(t, results.Items[0].Relevance, results.Items[2].Relevance)
	// Ties keep document order.
	assert.Equal(t, []locatex.Element{doc.First("#near"), doc.First("#mid"), doc.First("#far")}, results.Elements())
}

func TestLocateNearElement(t *testing.T) {
	doc := mustParse(t, employeeRow)
	ref := doc.First("#mid")

	results := locate(t, doc, "Edit",
		locatex.WithNearElement(ref),
		locatex.WithProximityThreshold(150),
		locatex.WithDirections(locatex.DirRight),
	)

	assert.Equal(t, ref, results.Reference)
	assert.NotContains(t, results.Elements(), ref)
	// #far is 220 away, past the threshold; #near sits to the left but within it.
	assert.Equal(t, []locatex.Element{doc.First("#near"), doc.First("#far")}, results.Elements())
}

func TestLocateSkipsReferenceUnlessQueried(t *testing.T) {
	markup := `<body>
		<div id="ref" data-rect="0,0,100,20">Save row</div>
		<button id="btn" data-rect="120,0,40,20">Save</button>
	</body>`

	t.Run("different_query", func(t *testing.T) {
		doc := mustParse(t, markup)
		results := locate(t, doc, "Save", locatex.WithNear("Save row"))
		assert.Equal(t, doc.First("#ref"), results.Reference)
		assert.Equal(t, []locatex.Element{doc.First("#btn")}, results.Elements())
	})

	t.Run("same_query", func(t *testing.T) {
		doc := mustParse(t, markup)
		results := locate(t, doc, "save  ROW", locatex.WithNear("Save row"))
		assert.Contains(t, results.Elements(), doc.First("#ref"))
	})
}

func TestLocateUnresolvedReference(t *testing.T) {
	doc := mustParse(t, employeeRow)

	results := locate(t, doc, "Edit", locatex.WithNear("Nobody"))

	assert.Nil(t, results.Reference)
	assert.True(t, results.HasDiagnostic(locatex.DiagReferenceUnresolved))
	assert.Len(t, results.Items, 3)
}

func TestLocateDegenerateReference(t *testing.T) {
	tests := map[string]string{
		"empty_rect": `<body><span id="ref" data-rect="10,10,0,0">Anchor</span><button id="btn">Go</button></body>`,
		"no_rect":    `<body><span id="ref">Anchor</span><button id="btn">Go</button></body>`,
		"bad_rect":   `<body><span id="ref" data-rect="wide">Anchor</span><button id="btn">Go</button></body>`,
	}

	for name, markup := range tests {
		t.Run(name, func(t *testing.T) {
			doc := mustParse(t, markup)
			results := locate(t, doc, "Go", locatex.WithNearElement(doc.First("#ref")))

			assert.Nil(t, results.Reference)
			assert.True(t, results.HasDiagnostic(locatex.DiagReferenceGeometry))
			assert.Equal(t, []locatex.Element{doc.First("#btn")}, results.Elements())
		})
	}
}

func TestLocateElementGeometryFailureIsIsolated(t *testing.T) {
	doc := mustParse(t, `<body>
		<div id="ref" data-rect="0,0,100,20">Anchor</div>
		<button id="measured" data-rect="110,0,40,20">Open</button>
		<button id="unmeasured">Open</button>
	</body>`)

	results := locate(t, doc, "Open", locatex.WithNear("Anchor"))

	assert.True(t, results.HasDiagnostic(locatex.DiagGeometryUnavailable))
	assert.Equal(t, []locatex.Element{doc.First("#measured"), doc.First("#unmeasured")}, results.Elements())
}

func TestLocateDedupesWrapper(t *testing.T) {
	doc := mustParse(t, `<body><div class="toolbar"><button id="edit" aria-label="Edit">Edit</button></div></body>`)

	results := locate(t, doc, "Edit")

	assert.Equal(t, []locatex.Element{doc.First("#edit")}, results.Elements())
}

func TestLocateHidden(t *testing.T) {
	markup := `<body><button id="shown">Save</button><button id="ghost" hidden>Save</button></body>`

	t.Run("excluded_by_default", func(t *testing.T) {
		doc := mustParse(t, markup)
		results := locate(t, doc, "Save")
		assert.Equal(t, []locatex.Element{doc.First("#shown")}, results.Elements())
	})

	t.Run("included_with_penalty", func(t *testing.T) {
		doc := mustParse(t, markup)
		results := locate(t, doc, "Save", locatex.WithIncludeHidden(true))

		require.Equal(t, []locatex.Element{doc.First("#shown"), doc.First("#ghost")}, results.Elements())
		ratio := results.Items[0].Relevance / results.Items[1].Relevance
		assert.InDelta(t, 10, ratio, 1)
	})
}

func TestLocateMaxResults(t *testing.T) {
	doc := mustParse(t, `<ul>
		<li><button>Item one</button></li>
		<li><button>Item</button></li>
		<li><button>Item three</button></li>
		<li><button>Another item</button></li>
		<li><button>Item five</button></li>
	</ul>`)

	tests := map[string]struct {
		max      int
		expected int
	}{
		"default": {max: locatex.DefaultMaxResults, expected: 5},
		"limited": {max: 2, expected: 2},
		"zero":    {max: 0, expected: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			results := locate(t, doc, "item", locatex.WithMaxResults(tc.max))

			assert.Len(t, results.Items, tc.expected)
			assert.NotNil(t, results.Items)
			assert.Equal(t, 5, results.Total)
			for i := 1; i < len(results.Items); i++ {
				assert.GreaterOrEqual(t, results.Items[i-1].Relevance, results.Items[i].Relevance)
			}
		})
	}
}

func TestLocateContainer(t *testing.T) {
	doc := mustParse(t, `<body>
		<div id="a"><button id="first">Save</button></div>
		<div id="b"><button id="second">Save</button></div>
	</body>`)

	results := locate(t, doc, "Save", locatex.WithContainer(doc.First("#b")))

	assert.Equal(t, []locatex.Element{doc.First("#second")}, results.Elements())
}

func TestLocateFilters(t *testing.T) {
	doc := mustParse(t, `<body>
		<button id="save" data-action="save">Save</button>
		<button id="draft" data-action="draft" class="secondary">Save</button>
	</body>`)

	tests := map[string]struct {
		filters  []locatex.SearchOption
		expected []locatex.Element
	}{
		"eq": {
			filters:  []locatex.SearchOption{locatex.Eq("data-action", "draft")},
			expected: []locatex.Element{doc.First("#draft")},
		},
		"not_exists": {
			filters:  []locatex.SearchOption{locatex.Not(locatex.Exists("class"))},
			expected: []locatex.Element{doc.First("#save")},
		},
		"or": {
			filters:  []locatex.SearchOption{locatex.Or(locatex.Eq("id", "save"), locatex.Contains("class", "second"))},
			expected: []locatex.Element{doc.First("#save"), doc.First("#draft")},
		},
		"and_nothing": {
			filters:  []locatex.SearchOption{locatex.And(locatex.Eq("id", "save"), locatex.Ne("data-action", "save"))},
			expected: []locatex.Element{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			results := locate(t, doc, "Save", tc.filters...)
			assert.Equal(t, tc.expected, results.Elements())
		})
	}
}

func TestLocateExactAndCase(t *testing.T) {
	doc := mustParse(t, `<body><button id="one">Save</button><button id="two">Save all</button></body>`)

	t.Run("exact", func(t *testing.T) {
		results := locate(t, doc, "save", locatex.WithExactMatch(true))
		assert.Equal(t, []locatex.Element{doc.First("#one")}, results.Elements())
	})

	t.Run("case_sensitive_miss", func(t *testing.T) {
		results := locate(t, doc, "save", locatex.WithCaseSensitive(true))
		assert.Empty(t, results.Items)
		assert.NotNil(t, results.Items)
	})

	t.Run("case_sensitive_hit", func(t *testing.T) {
		results := locate(t, doc, "Save all", locatex.WithCaseSensitive(true))
		assert.Equal(t, []locatex.Element{doc.First("#two")}, results.Elements())
	})
}

func TestLocateNoMatches(t *testing.T) {
	doc := mustParse(t, `<body><button>Save</button></body>`)

	results := locate(t, doc, "delete")

	assert.NotNil(t, results.Elements())
	assert.Empty(t, results.Elements())
	assert.Zero(t, results.Total)
	assert.Zero(t, results.MaxScore)
}

func TestLocateErrors(t *testing.T) {
	doc := mustParse(t, `<body><button>Save</button></body>`)
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := map[string]struct {
		locator *Locator
		ctx     context.Context
		query   string
		opts    []locatex.SearchOption
		want    error
	}{
		"empty_query":        {locator: newTestLocator(doc), ctx: context.Background(), query: "", want: locatex.ErrEmptyQuery},
		"blank_query":        {locator: newTestLocator(doc), ctx: context.Background(), query: " \t ", want: locatex.ErrEmptyQuery},
		"canceled":           {locator: newTestLocator(doc), ctx: canceled, query: "Save", want: locatex.ErrCanceled},
		"nil_document":       {locator: newTestLocator(nil), ctx: context.Background(), query: "Save", want: locatex.ErrInvalidOption},
		"negative_max":       {locator: newTestLocator(doc), ctx: context.Background(), query: "Save", opts: []locatex.SearchOption{locatex.WithMaxResults(-1)}, want: locatex.ErrInvalidOption},
		"negative_threshold": {locator: newTestLocator(doc), ctx: context.Background(), query: "Save", opts: []locatex.SearchOption{locatex.WithProximityThreshold(-5)}, want: locatex.ErrInvalidOption},
		"nan_threshold":      {locator: newTestLocator(doc), ctx: context.Background(), query: "Save", opts: []locatex.SearchOption{locatex.WithNear("Save"), locatex.WithProximityThreshold(math.NaN())}, want: locatex.ErrInvalidOption},
		"bad_direction":      {locator: newTestLocator(doc), ctx: context.Background(), query: "Save", opts: []locatex.SearchOption{locatex.WithDirections("sideways")}, want: locatex.ErrInvalidOption},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			results, err := tc.locator.Locate(tc.ctx, tc.query, tc.opts...)
			assert.Nil(t, results)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestLocatorFuncAdapter(t *testing.T) {
	doc := mustParse(t, `<body><button id="btn">Save</button></body>`)
	var loc locatex.Locator = locatex.LocatorFunc(newTestLocator(doc).Locate)

	results, err := loc.Locate(context.Background(), "Save")
	require.NoError(t, err)
	assert.Equal(t, []locatex.Element{doc.First("#btn")}, results.Elements())
}

func TestLocateConcurrent(t *testing.T) {
	doc := mustParse(t, employeeRow)
	loc := newTestLocator(doc)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	ids := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := loc.Locate(context.Background(), "Edit", locatex.WithNear("Employee AAA"))
			if err != nil {
				errs <- err
				return
			}
			if len(results.Items) != 3 {
				errs <- errors.Newf("got %d items", len(results.Items))
				return
			}
			ids <- results.RequestID
		}()
	}
	wg.Wait()
	close(errs)
	close(ids)

	for err := range errs {
		assert.NoError(t, err)
	}
	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate request id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 8)
}
