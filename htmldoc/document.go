// Package htmldoc provides a locatex.Document over a parsed HTML snapshot.
// Element handles are *html.Node values. Layout is not computed: rectangles
// come from a data-rect="x,y,width,height" attribute written by whatever
// rendered the snapshot.
package htmldoc

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/locatex"
	"golang.org/x/net/html"
)

// Ensure Document implements the interface.
var _ locatex.Document = (*Document)(nil)

// Document wraps a goquery document.
type Document struct {
	doc *goquery.Document
}

// New wraps an already parsed goquery document.
func New(doc *goquery.Document) *Document {
	return &Document{doc: doc}
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	return New(doc), nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Find returns the elements matching a CSS selector, in document order.
func (d *Document) Find(selector string) []locatex.Element {
	return elements(d.doc.Find(selector).Nodes)
}

// First returns the first element matching a CSS selector, or nil.
func (d *Document) First(selector string) locatex.Element {
	return element(d.doc.Find(selector).First())
}

// Root implements locatex.Document.
func (d *Document) Root() locatex.Element {
	if len(d.doc.Nodes) == 0 {
		return nil
	}
	return d.doc.Nodes[0]
}

// Descendants implements locatex.Document.
func (d *Document) Descendants(container locatex.Element) []locatex.Element {
	n := node(container)
	if n == nil {
		return nil
	}
	return elements(selection(n).Find("*").Nodes)
}

// Parent implements locatex.Document.
func (d *Document) Parent(el locatex.Element) locatex.Element {
	n := node(el)
	if n == nil || n.Parent == nil {
		return nil
	}
	return n.Parent
}

// TagName implements locatex.Document.
func (d *Document) TagName(el locatex.Element) string {
	n := node(el)
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(goquery.NodeName(selection(n)))
}

// Attribute implements locatex.Document.
func (d *Document) Attribute(el locatex.Element, name string) (string, bool) {
	n := node(el)
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	return selection(n).Attr(name)
}

// TextContent implements locatex.Document.
func (d *Document) TextContent(el locatex.Element) string {
	n := node(el)
	if n == nil {
		return ""
	}
	return selection(n).Text()
}

// InnerText implements locatex.Document.
func (d *Document) InnerText(el locatex.Element) string {
	n := node(el)
	if n == nil {
		return ""
	}
	var b strings.Builder
	writeInnerText(&b, n)
	return strings.Join(strings.Fields(b.String()), " ")
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

func writeInnerText(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if hiddenSelf(c, false) {
				continue
			}
			block := blockTags[c.Data]
			if block {
				b.WriteByte(' ')
			}
			writeInnerText(b, c)
			if block {
				b.WriteByte(' ')
			}
		}
	}
}

// Value implements locatex.Document.
func (d *Document) Value(el locatex.Element) string {
	n := node(el)
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	s := selection(n)
	switch n.Data {
	case "input", "button", "option", "data", "li", "meter", "progress":
		v, _ := s.Attr("value")
		return v
	case "textarea":
		return s.Text()
	case "select":
		opt := s.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = s.Find("option").First()
		}
		if opt.Length() == 0 {
			return ""
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(opt.Text())
	default:
		return ""
	}
}

// ResolveByID implements locatex.Document.
func (d *Document) ResolveByID(container locatex.Element, id string) locatex.Element {
	n := node(container)
	if n == nil || id == "" {
		return nil
	}
	match := selection(n).Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	})
	return element(match.First())
}

// LabelFor implements locatex.Document.
func (d *Document) LabelFor(container locatex.Element, id string) locatex.Element {
	n := node(container)
	if n == nil || id == "" {
		return nil
	}
	match := selection(n).Find("label[for]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("for")
		return v == id
	})
	return element(match.First())
}

// IsFocusable implements locatex.Document.
func (d *Document) IsFocusable(el locatex.Element) bool {
	n := node(el)
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	s := selection(n)
	if _, disabled := s.Attr("disabled"); disabled && formControls[n.Data] {
		return false
	}
	if tabindex, ok := s.Attr("tabindex"); ok {
		return !strings.HasPrefix(strings.TrimSpace(tabindex), "-")
	}
	switch n.Data {
	case "a", "area":
		_, ok := s.Attr("href")
		return ok
	case "button", "select", "textarea", "summary", "iframe":
		return true
	case "input":
		t, _ := s.Attr("type")
		return !strings.EqualFold(strings.TrimSpace(t), "hidden")
	}
	if ce, ok := s.Attr("contenteditable"); ok {
		return ce == "" || strings.EqualFold(ce, "true")
	}
	return false
}

var formControls = map[string]bool{
	"button": true, "input": true, "select": true, "textarea": true, "fieldset": true, "option": true,
}

// HasEventHandler implements locatex.Document. Handlers are inline on* attributes.
func (d *Document) HasEventHandler(el locatex.Element, kind string) bool {
	_, ok := d.Attribute(el, "on"+strings.ToLower(kind))
	return ok
}

// Depth implements locatex.Document.
func (d *Document) Depth(el locatex.Element) int {
	depth := 0
	for n := node(el); n != nil && n.Parent != nil; n = n.Parent {
		depth++
	}
	return depth
}

// Contains implements locatex.Document.
func (d *Document) Contains(ancestor, other locatex.Element) bool {
	a, n := node(ancestor), node(other)
	if a == nil || n == nil {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

func node(el locatex.Element) *html.Node {
	n, _ := el.(*html.Node)
	return n
}

func selection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// element returns the first node of s, or an untyped nil.
func element(s *goquery.Selection) locatex.Element {
	if s.Length() == 0 {
		return nil
	}
	return s.Get(0)
}

func elements(nodes []*html.Node) []locatex.Element {
	out := make([]locatex.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}
