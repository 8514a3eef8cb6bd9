package engine

import (
	"strings"

	"github.com/letmevibethatforyou/locatex"
)

// Sources maps each text source kind to its value for one element.
// Absent values are empty strings.
type Sources map[locatex.SourceKind]string

var attributeSources = []struct {
	kind locatex.SourceKind
	attr string
}{
	{locatex.SourcePlaceholder, "placeholder"},
	{locatex.SourceAriaLabel, "aria-label"},
	{locatex.SourceTitle, "title"},
	{locatex.SourceAlt, "alt"},
	{locatex.SourceDataLabel, "data-label"},
	{locatex.SourceDataTitle, "data-title"},
	{locatex.SourceDataTestID, "data-testid"},
	{locatex.SourceDataTest, "data-test"},
	{locatex.SourceName, "name"},
	{locatex.SourceID, "id"},
	{locatex.SourceClassName, "class"},
}

// ExtractSources reads every text source of el. ARIA id references and label
// associations are resolved against the document root.
func ExtractSources(doc locatex.Document, el locatex.Element) Sources {
	src := make(Sources, len(locatex.SourceKinds))
	for _, kind := range locatex.SourceKinds {
		src[kind] = ""
	}

	src[locatex.SourceTextContent] = doc.TextContent(el)
	src[locatex.SourceInnerText] = doc.InnerText(el)
	src[locatex.SourceValue] = doc.Value(el)
	for _, a := range attributeSources {
		src[a.kind] = attr(doc, el, a.attr)
	}

	root := doc.Root()
	src[locatex.SourceAriaLabelledBy] = resolveIDRefs(doc, root, attr(doc, el, "aria-labelledby"))
	src[locatex.SourceAriaDescribedBy] = resolveIDRefs(doc, root, attr(doc, el, "aria-describedby"))
	src[locatex.SourceLabelText] = labelText(doc, root, el)
	return src
}

// resolveIDRefs joins the text of the elements named by a space-separated id
// list, skipping ids that resolve to nothing.
func resolveIDRefs(doc locatex.Document, root locatex.Element, ids string) string {
	var parts []string
	for _, id := range strings.Fields(ids) {
		ref := doc.ResolveByID(root, id)
		if ref == nil {
			continue
		}
		if text := strings.TrimSpace(doc.TextContent(ref)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// labelText prefers a label bound with for=id and falls back to the nearest
// enclosing label element.
func labelText(doc locatex.Document, root, el locatex.Element) string {
	if id := attr(doc, el, "id"); id != "" {
		if label := doc.LabelFor(root, id); label != nil {
			return strings.TrimSpace(doc.TextContent(label))
		}
	}
	for p := doc.Parent(el); p != nil; p = doc.Parent(p) {
		if doc.TagName(p) == "label" || role(doc, p) == "label" {
			return strings.TrimSpace(doc.TextContent(p))
		}
	}
	return ""
}
