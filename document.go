package locatex

// Element is an opaque handle into a Document. Handles are compared by identity, so
// implementations must use comparable values (typically pointers). The engine never
// creates or destroys elements.
type Element any

// Rect is an axis-aligned rectangle in document coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Left returns the left edge.
func (r Rect) Left() float64 { return r.X }

// Top returns the top edge.
func (r Rect) Top() float64 { return r.Y }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle has no width and no height.
func (r Rect) Empty() bool { return r.Width == 0 && r.Height == 0 }

// ZeroArea reports whether the rectangle covers no area.
func (r Rect) ZeroArea() bool { return r.Width <= 0 || r.Height <= 0 }

// Document is the read-only view of a rendered document tree that the engine scans.
// It is provided by the host environment (a browser bridge, a parsed HTML snapshot, ...).
type Document interface {
	// Root returns the top-level container of the document.
	Root() Element

	// Descendants returns every element below container in document order,
	// excluding container itself.
	Descendants(container Element) []Element

	// Parent returns the parent element, or nil at the root.
	Parent(el Element) Element

	// TagName returns the lower-case tag name.
	TagName(el Element) string

	// Attribute returns the value of the named attribute and whether it is present.
	Attribute(el Element, name string) (string, bool)

	// TextContent returns the raw text of el and all of its descendants.
	TextContent(el Element) string

	// InnerText returns the rendered text of el, skipping hidden descendants.
	InnerText(el Element) string

	// Value returns the current form value of el, or "" if it has none.
	Value(el Element) string

	// ResolveByID returns the element below container whose id is id, or nil.
	ResolveByID(container Element, id string) Element

	// LabelFor returns the label element explicitly associated with id, or nil.
	LabelFor(container Element, id string) Element

	// BoundingRect returns the layout box of el. It fails with an error matching
	// ErrGeometryUnavailable when el is detached or layout is unavailable.
	BoundingRect(el Element) (Rect, error)

	// IsHidden reports whether el is not rendered to the user.
	IsHidden(el Element) bool

	// IsFocusable reports whether el takes keyboard focus.
	IsFocusable(el Element) bool

	// HasEventHandler reports whether el exposes a handler for the event kind ("click", "keydown", ...).
	HasEventHandler(el Element, kind string) bool

	// Depth returns the number of ancestors of el.
	Depth(el Element) int

	// Contains reports whether other is a strict descendant of ancestor.
	Contains(ancestor, other Element) bool
}
