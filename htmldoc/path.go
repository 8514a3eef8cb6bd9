package htmldoc

import (
	"strconv"
	"strings"

	"github.com/letmevibethatforyou/locatex"
	"golang.org/x/net/html"
)

// Path returns a CSS selector that uniquely addresses el, anchored at the
// nearest ancestor with an id.
func Path(el locatex.Element) string {
	n := node(el)
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var parts []string
	for ; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if id, ok := attrValue(n, "id"); ok && id != "" && !strings.ContainsAny(id, " \t\n\"'") {
			parts = append(parts, n.Data+"#"+id)
			break
		}
		parts = append(parts, step(n))
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// step renders n as tag or tag:nth-of-type(k) when it has same-tag siblings.
func step(n *html.Node) string {
	if n.Parent == nil {
		return n.Data
	}
	index, count := 0, 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != n.Data {
			continue
		}
		count++
		if c == n {
			index = count
		}
	}
	if count <= 1 {
		return n.Data
	}
	return n.Data + ":nth-of-type(" + strconv.Itoa(index) + ")"
}
