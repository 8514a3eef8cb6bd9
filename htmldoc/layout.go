package htmldoc

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/locatex"
	"golang.org/x/net/html"
)

// RectAttr is the attribute a snapshot renderer writes each element's layout box to.
const RectAttr = "data-rect"

// nonRendered tags never produce a layout box.
var nonRendered = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "noscript": true,
	"meta": true, "link": true, "title": true, "base": true,
}

// BoundingRect implements locatex.Document.
func (d *Document) BoundingRect(el locatex.Element) (locatex.Rect, error) {
	n := node(el)
	if n == nil || n.Type != html.ElementNode {
		return locatex.Rect{}, errors.Wrap(locatex.ErrGeometryUnavailable, "not an element")
	}
	if !attached(n) {
		return locatex.Rect{}, errors.Wrapf(locatex.ErrGeometryUnavailable, "<%s> is detached", n.Data)
	}
	raw, ok := attrValue(n, RectAttr)
	if !ok {
		return locatex.Rect{}, errors.Wrapf(locatex.ErrGeometryUnavailable, "<%s> has no %s", n.Data, RectAttr)
	}
	rect, err := ParseRect(raw)
	if err != nil {
		return locatex.Rect{}, errors.WithSecondaryError(
			errors.Wrapf(locatex.ErrGeometryUnavailable, "<%s> has a malformed %s", n.Data, RectAttr), err)
	}
	return rect, nil
}

// ParseRect parses "x,y,width,height"; commas and whitespace both separate.
func ParseRect(s string) (locatex.Rect, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) != 4 {
		return locatex.Rect{}, errors.Newf("rect %q: want 4 numbers, got %d", s, len(fields))
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return locatex.Rect{}, errors.Wrapf(err, "rect %q", s)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return locatex.Rect{}, errors.Newf("rect %q: negative size", s)
	}
	return locatex.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// IsHidden implements locatex.Document. An element is hidden when it or any
// ancestor is marked hidden, when it has an empty layout box, or when it is
// not attached to a document.
func (d *Document) IsHidden(el locatex.Element) bool {
	n := node(el)
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if !attached(n) {
		return true
	}
	if hiddenSelf(n, true) {
		return true
	}
	for p := n.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if hiddenSelf(p, false) {
			return true
		}
	}
	return false
}

// hiddenSelf checks the markers on n alone. checkBox adds the empty layout box
// test, which does not hide descendants.
func hiddenSelf(n *html.Node, checkBox bool) bool {
	if nonRendered[n.Data] {
		return true
	}
	if _, ok := attrValue(n, "hidden"); ok {
		return true
	}
	if v, _ := attrValue(n, "aria-hidden"); strings.EqualFold(strings.TrimSpace(v), "true") {
		return true
	}
	if n.Data == "input" {
		if t, _ := attrValue(n, "type"); strings.EqualFold(strings.TrimSpace(t), "hidden") {
			return true
		}
	}
	if style, ok := attrValue(n, "style"); ok && styleHides(parseStyle(style)) {
		return true
	}
	if checkBox {
		if raw, ok := attrValue(n, RectAttr); ok {
			if rect, err := ParseRect(raw); err == nil && rect.ZeroArea() {
				return true
			}
		}
	}
	return false
}

func styleHides(style map[string]string) bool {
	if style["display"] == "none" {
		return true
	}
	if v := style["visibility"]; v == "hidden" || v == "collapse" {
		return true
	}
	if v, ok := style["opacity"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f <= 0 {
			return true
		}
	}
	return false
}

// parseStyle splits an inline style attribute into lower-cased declarations.
func parseStyle(s string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		out[strings.ToLower(strings.TrimSpace(prop))] = strings.ToLower(value)
	}
	return out
}

// attached reports whether n hangs off a document node.
func attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.DocumentNode {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
