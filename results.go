package locatex

// SourceKind names one channel of text associated with an element.
type SourceKind string

// Text source kinds, in extraction order.
const (
	SourceTextContent     SourceKind = "textContent"
	SourceInnerText       SourceKind = "innerText"
	SourceValue           SourceKind = "value"
	SourcePlaceholder     SourceKind = "placeholder"
	SourceAriaLabel       SourceKind = "ariaLabel"
	SourceAriaLabelledBy  SourceKind = "ariaLabelledBy"
	SourceAriaDescribedBy SourceKind = "ariaDescribedBy"
	SourceTitle           SourceKind = "title"
	SourceAlt             SourceKind = "alt"
	SourceLabelText       SourceKind = "labelText"
	SourceDataLabel       SourceKind = "dataLabel"
	SourceDataTitle       SourceKind = "dataTitle"
	SourceDataTestID      SourceKind = "dataTestId"
	SourceDataTest        SourceKind = "dataTest"
	SourceName            SourceKind = "name"
	SourceID              SourceKind = "id"
	SourceClassName       SourceKind = "className"
)

// SourceKinds lists every SourceKind in extraction order.
var SourceKinds = []SourceKind{
	SourceTextContent, SourceInnerText, SourceValue, SourcePlaceholder,
	SourceAriaLabel, SourceAriaLabelledBy, SourceAriaDescribedBy, SourceTitle,
	SourceAlt, SourceLabelText, SourceDataLabel, SourceDataTitle,
	SourceDataTestID, SourceDataTest, SourceName, SourceID, SourceClassName,
}

// MatchedSource is one text source that satisfied the query.
type MatchedSource struct {
	// Kind is the text source the match came from.
	Kind SourceKind `json:"kind"`
	// Text is the source text as extracted.
	Text string `json:"text"`
	// Quality rates the match from 1 to 100.
	Quality float64 `json:"quality"`
}

// Match represents a single located element.
type Match struct {
	// Element is the located element handle.
	Element Element `json:"-"`

	// Relevance is the composite ranking score, never negative.
	Relevance float64 `json:"relevance"`

	// DetectedType is the semantic type the element was classified as.
	DetectedType string `json:"detected_type"`

	// Sources are the text sources that matched, in extraction order.
	Sources []MatchedSource `json:"sources"`
}

// DiagnosticKind distinguishes degradation paths.
type DiagnosticKind string

const (
	// DiagReferenceUnresolved means the textual near reference matched no element.
	DiagReferenceUnresolved DiagnosticKind = "reference-unresolved"
	// DiagReferenceGeometry means the reference element had no usable rectangle.
	DiagReferenceGeometry DiagnosticKind = "reference-geometry"
	// DiagGeometryUnavailable means a scanned element's rectangle could not be read.
	DiagGeometryUnavailable DiagnosticKind = "geometry-unavailable"
)

// Diagnostic reports a recoverable failure that degraded the result.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

// Results represents the located elements with metadata.
type Results struct {
	// RequestID identifies the locate call in logs and traces.
	RequestID string

	// Items contains the located elements, most relevant first. Never nil.
	Items []Match

	// Total is the number of deduplicated candidates before truncation.
	Total int

	// Took is the time taken in milliseconds.
	Took int64

	// MaxScore is the highest relevance across Items.
	MaxScore float64

	// Query is the original query string for reference.
	Query string

	// EffectiveQuery is the query after type keyword stripping.
	EffectiveQuery string

	// Type is the active type filter, explicit or inferred.
	Type string

	// TypeInferred reports whether Type came from the query text.
	TypeInferred bool

	// Reference is the resolved proximity reference element, if any.
	Reference Element

	// Diagnostics lists recoverable failures in the order they occurred.
	Diagnostics []Diagnostic
}

// Elements returns the located element handles, most relevant first.
func (r *Results) Elements() []Element {
	if r == nil {
		return []Element{}
	}
	out := make([]Element, 0, len(r.Items))
	for _, m := range r.Items {
		out = append(out, m.Element)
	}
	return out
}

// HasDiagnostic reports whether a diagnostic of the given kind was emitted.
func (r *Results) HasDiagnostic(kind DiagnosticKind) bool {
	if r == nil {
		return false
	}
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
