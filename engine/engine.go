// Package engine implements locatex.Locator by scanning a locatex.Document:
// each element's text sources are matched against the query, scored for type
// fit, visibility, specificity and proximity, deduplicated against their
// ancestors and ranked.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/locatex"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ensure Locator implements the interface.
var _ locatex.Locator = (*Locator)(nil)

// Locator implements the locatex.Locator interface over a Document.
// It holds no per-call state and performs no mutation of the document.
type Locator struct {
	doc    locatex.Document
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Locator.
type Option func(*Locator)

// WithLogger sets the logger diagnostics are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTracer sets the tracer used for locate spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(l *Locator) {
		if tracer != nil {
			l.tracer = tracer
		}
	}
}

// New creates a Locator for doc.
func New(doc locatex.Document, opts ...Option) *Locator {
	l := &Locator{
		doc:    doc,
		logger: slog.Default(),
		tracer: otel.Tracer("locatex-engine"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// plan is the query after type inference.
type plan struct {
	query    string
	typ      string
	inferred bool
}

// reference is a resolved proximity anchor.
type reference struct {
	element locatex.Element
	rect    locatex.Rect
	// returnable allows the reference itself to be a result.
	returnable bool
}

// diagnostics collects soft failures in order and mirrors them to the log.
type diagnostics struct {
	ctx       context.Context
	logger    *slog.Logger
	requestID string
	items     []locatex.Diagnostic
}

func (d *diagnostics) add(kind locatex.DiagnosticKind, level slog.Level, msg string, args ...any) {
	d.items = append(d.items, locatex.Diagnostic{Kind: kind, Message: msg})
	args = append([]any{"request_id", d.requestID, "kind", string(kind)}, args...)
	d.logger.Log(d.ctx, level, msg, args...)
}

// Locate implements the locatex.Locator interface.
func (l *Locator) Locate(ctx context.Context, query string, opts ...locatex.SearchOption) (*locatex.Results, error) {
	startTime := time.Now()

	// Check context
	select {
	case <-ctx.Done():
		return nil, locatex.ErrCanceled
	default:
	}

	if strings.TrimSpace(query) == "" {
		return nil, locatex.ErrEmptyQuery
	}
	if l.doc == nil {
		return nil, errors.WithSecondaryError(locatex.ErrInvalidOption, errors.New("nil document"))
	}

	cfg := locatex.NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	requestID := ksuid.New().String()
	ctx, span := l.tracer.Start(ctx, "locatex.locate",
		trace.WithAttributes(
			attribute.String("locatex.request_id", requestID),
			attribute.String("locatex.query", query),
			attribute.String("locatex.type", cfg.Type),
			attribute.Int("locatex.max_results", cfg.MaxResults),
		),
	)
	defer span.End()

	diag := &diagnostics{ctx: ctx, logger: l.logger, requestID: requestID}

	ref := l.resolveReference(ctx, query, cfg, diag)

	p, cands, err := l.search(ctx, query, cfg, ref, diag)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "locate failed")
		return nil, err
	}

	results := &locatex.Results{
		RequestID:      requestID,
		Items:          make([]locatex.Match, 0, min(len(cands), cfg.MaxResults)),
		Total:          len(cands),
		Query:          query,
		EffectiveQuery: p.query,
		Type:           p.typ,
		TypeInferred:   p.inferred,
		Diagnostics:    diag.items,
	}
	if ref != nil {
		results.Reference = ref.element
	}

	for i := 0; i < len(cands) && i < cfg.MaxResults; i++ {
		m := cands[i].match()
		if m.Relevance > results.MaxScore {
			results.MaxScore = m.Relevance
		}
		results.Items = append(results.Items, m)
	}
	results.Took = time.Since(startTime).Milliseconds()

	span.SetAttributes(
		attribute.Int("locatex.candidates", results.Total),
		attribute.Int("locatex.results", len(results.Items)),
		attribute.Int("locatex.diagnostics", len(results.Diagnostics)),
	)
	span.SetStatus(codes.Ok, fmt.Sprintf("located %d elements", len(results.Items)))
	return results, nil
}

// planQuery infers a type from the query when none was given and strips the
// triggering keyword from the query text.
func planQuery(query string, cfg locatex.SearchConfig) plan {
	p := plan{query: query, typ: cfg.Type}
	if p.typ != "" {
		return p
	}
	typ, keyword := InferQueryType(query)
	if typ == "" {
		return p
	}
	p.typ, p.inferred = typ, true
	if stripped := StripKeyword(query, keyword); stripped != "" {
		p.query = stripped
	}
	return p
}

// resolveReference turns the near option into an anchor rectangle. A textual
// reference is resolved by one sub-search with proximity disabled, so the
// nesting depth is bounded to a single extra pass.
func (l *Locator) resolveReference(ctx context.Context, query string, cfg locatex.SearchConfig, diag *diagnostics) *reference {
	if !cfg.HasNear() {
		return nil
	}

	ctx, span := l.tracer.Start(ctx, "locatex.resolve_reference")
	defer span.End()

	el := cfg.NearElement
	returnable := false
	if el == nil {
		sub := locatex.SearchConfig{
			Container:     cfg.Container,
			ExactMatch:    cfg.ExactMatch,
			CaseSensitive: cfg.CaseSensitive,
			IncludeHidden: cfg.IncludeHidden,
			MaxResults:    1,
		}
		_, cands, err := l.search(ctx, cfg.NearText, sub, nil, diag)
		if err != nil || len(cands) == 0 {
			if err != nil {
				span.RecordError(err)
			}
			diag.add(locatex.DiagReferenceUnresolved, slog.LevelWarn,
				fmt.Sprintf("no element matches near reference %q; proximity disabled", cfg.NearText),
				"near", cfg.NearText)
			span.SetStatus(codes.Error, "reference unresolved")
			return nil
		}
		el = cands[0].element
		returnable = Normalize(query, cfg.CaseSensitive) == Normalize(cfg.NearText, cfg.CaseSensitive)
	}

	rect, err := l.doc.BoundingRect(el)
	if err != nil {
		span.RecordError(err)
		diag.add(locatex.DiagReferenceGeometry, slog.LevelWarn,
			"reference element has no layout box; proximity disabled", "error", err)
		return nil
	}
	if rect.Empty() {
		diag.add(locatex.DiagReferenceGeometry, slog.LevelWarn,
			"reference element has an empty layout box; proximity disabled", "rect", rect)
		return nil
	}

	span.SetAttributes(
		attribute.Float64("locatex.reference.x", rect.X),
		attribute.Float64("locatex.reference.y", rect.Y),
	)
	return &reference{element: el, rect: rect, returnable: returnable}
}

// search runs inference, scan, deduplication and ranking. The returned
// candidates are sorted but not truncated.
func (l *Locator) search(ctx context.Context, query string, cfg locatex.SearchConfig, ref *reference, diag *diagnostics) (plan, []candidate, error) {
	p := planQuery(query, cfg)

	cands, err := l.scan(ctx, p, cfg, ref, diag)
	if err != nil {
		return p, nil, err
	}

	cands = Deduplicate(l.doc, cands)
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].relevance != cands[j].relevance {
			return cands[i].relevance > cands[j].relevance
		}
		return cands[i].order < cands[j].order
	})
	return p, cands, nil
}

// scan scores every eligible element below the container.
func (l *Locator) scan(ctx context.Context, p plan, cfg locatex.SearchConfig, ref *reference, diag *diagnostics) ([]candidate, error) {
	container := cfg.Container
	if container == nil {
		container = l.doc.Root()
	}

	var cands []candidate
	for i, el := range l.doc.Descendants(container) {
		// Check context periodically
		select {
		case <-ctx.Done():
			return nil, locatex.ErrCanceled
		default:
		}

		hidden := l.doc.IsHidden(el)
		if hidden && !cfg.IncludeHidden {
			continue
		}
		if ref != nil && !ref.returnable && el == ref.element {
			continue
		}
		if !matchesFilters(l.doc, el, cfg.Filters) {
			continue
		}

		sources := ExtractSources(l.doc, el)
		matched := matchSources(sources, p.query, cfg)
		if len(matched) == 0 {
			continue
		}

		c := candidate{
			element:     el,
			sources:     sources,
			matched:     matched,
			detected:    DetectType(l.doc, el),
			interactive: IsInteractive(l.doc, el),
			depth:       l.doc.Depth(el),
			order:       i,
		}

		proximity := 0.0
		if ref != nil {
			proximity = l.proximity(el, ref, cfg, diag)
		}

		c.relevance = Relevance(RelevanceInput{
			Sources:       matched,
			Query:         p.query,
			DetectedType:  c.detected,
			WantedType:    p.typ,
			ExactMatch:    cfg.ExactMatch,
			CaseSensitive: cfg.CaseSensitive,
			Visible:       !hidden,
			IncludeHidden: cfg.IncludeHidden,
			Interactive:   c.interactive,
			Proximity:     proximity,
		})
		if c.relevance > 0 {
			cands = append(cands, c)
		}
	}
	return cands, nil
}

// proximity scores el against the reference; geometry failures count as 0.
func (l *Locator) proximity(el locatex.Element, ref *reference, cfg locatex.SearchConfig, diag *diagnostics) float64 {
	rect, err := l.doc.BoundingRect(el)
	if err != nil {
		diag.add(locatex.DiagGeometryUnavailable, slog.LevelDebug,
			"element has no layout box; proximity scored 0", "error", err)
		return 0
	}
	return ProximityScore(rect, ref.rect, cfg.ProximityThreshold, cfg.Directions)
}

// matchSources keeps the text sources that satisfy the query with positive quality.
func matchSources(sources Sources, query string, cfg locatex.SearchConfig) []locatex.MatchedSource {
	var matched []locatex.MatchedSource
	for _, kind := range locatex.SourceKinds {
		text := sources[kind]
		if text == "" || !Matches(text, query, cfg.ExactMatch, cfg.CaseSensitive) {
			continue
		}
		if q := Quality(text, query, cfg.CaseSensitive); q > 0 {
			matched = append(matched, locatex.MatchedSource{Kind: kind, Text: Normalize(text, true), Quality: q})
		}
	}
	return matched
}
