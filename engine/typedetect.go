package engine

import (
	"strings"

	"github.com/letmevibethatforyou/locatex"
)

var (
	buttonInputTypes = map[string]bool{"button": true, "submit": true, "reset": true}

	roleTypes = map[string]string{
		"button":    TypeButton,
		"link":      TypeLink,
		"textbox":   TypeInput,
		"searchbox": TypeInput,
		"combobox":  TypeInput,
		"checkbox":  "checkbox",
		"radio":     "radio",
		"menuitem":  "menuitem",
	}

	interactiveTags = map[string]bool{
		"a": true, "button": true, "input": true, "select": true, "textarea": true,
		"details": true, "summary": true, "option": true,
	}

	interactiveRoles = map[string]bool{
		"button": true, "link": true, "textbox": true, "searchbox": true, "combobox": true,
		"checkbox": true, "radio": true, "menuitem": true, "menuitemcheckbox": true,
		"menuitemradio": true, "option": true, "switch": true, "tab": true, "slider": true,
		"spinbutton": true, "treeitem": true,
	}

	handlerKinds = []string{"click", "keydown", "keyup", "keypress"}
)

// hintRules drive the keyword scan over aria-label, title and placeholder for
// elements without a telling tag or role.
var hintRules = []typeKeywords{
	{typ: TypeButton, keywords: []string{"button", "submit", "send", "save"}},
	{typ: TypeLink, keywords: []string{"link", "more", "read"}},
	{typ: TypeInput, keywords: []string{"input", "field", "text", "search", "email", "password", "enter", "box"}},
}

// DetectType classifies el into a semantic type: tag first, then ARIA role,
// then keyword hints, then "interactive" or the bare tag name.
func DetectType(doc locatex.Document, el locatex.Element) string {
	tag := doc.TagName(el)
	switch tag {
	case "button":
		return TypeButton
	case "a":
		return TypeLink
	case "input":
		subtype := strings.ToLower(strings.TrimSpace(attr(doc, el, "type")))
		if buttonInputTypes[subtype] {
			return TypeButton
		}
		if subtype == "" {
			return TypeInput
		}
		return subtype
	case "textarea", "select":
		return tag
	}

	r := role(doc, el)
	if t, ok := roleTypes[r]; ok {
		return t
	}

	// Keyword hints only apply when no role was declared.
	if r == "" {
		hints := strings.ToLower(attr(doc, el, "aria-label") + " " + attr(doc, el, "title") + " " + attr(doc, el, "placeholder"))
		for _, rule := range hintRules {
			for _, kw := range rule.keywords {
				if strings.Contains(hints, kw) {
					return rule.typ
				}
			}
		}
	}

	if hasInteractionHandler(doc, el) || doc.IsFocusable(el) {
		return TypeInteractive
	}
	return tag
}

// IsInteractive reports whether el is a native control, carries an interactive
// role, handles click or key events, or takes focus.
func IsInteractive(doc locatex.Document, el locatex.Element) bool {
	if interactiveTags[doc.TagName(el)] {
		return true
	}
	if interactiveRoles[role(doc, el)] {
		return true
	}
	return hasInteractionHandler(doc, el) || doc.IsFocusable(el)
}

var (
	buttonFamily = map[string]bool{"button": true, "submit": true, "reset": true}
	inputFamily  = map[string]bool{
		"input": true, "text": true, "email": true, "password": true, "search": true, "tel": true,
		"url": true, "number": true, "textarea": true, "select": true, "checkbox": true, "radio": true,
	}
	textFamily = map[string]bool{
		"text": true, "input": true, "textarea": true, "email": true, "password": true,
		"search": true, "tel": true, "url": true,
	}
	fieldFamily = map[string]bool{
		"input": true, "text": true, "email": true, "password": true, "search": true, "tel": true,
		"url": true, "number": true, "textarea": true, "select": true, "checkbox": true,
		"radio": true, "date": true, "datetime-local": true, "month": true, "week": true,
		"time": true, "color": true, "range": true, "file": true,
	}
)

// TypeMatches reports whether a detected type satisfies the wanted type,
// allowing for families of equivalent types.
func TypeMatches(wanted, detected string) bool {
	wanted = strings.ToLower(wanted)
	detected = strings.ToLower(detected)
	if wanted == "" || detected == "" {
		return false
	}
	if wanted == detected {
		return true
	}
	switch wanted {
	case TypeButton:
		return buttonFamily[detected]
	case TypeInput:
		return inputFamily[detected]
	case "text":
		return textFamily[detected]
	case "field":
		return fieldFamily[detected]
	default:
		return strings.Contains(detected, wanted)
	}
}

func hasInteractionHandler(doc locatex.Document, el locatex.Element) bool {
	for _, kind := range handlerKinds {
		if doc.HasEventHandler(el, kind) {
			return true
		}
	}
	return false
}

func role(doc locatex.Document, el locatex.Element) string {
	fields := strings.Fields(strings.ToLower(attr(doc, el, "role")))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func attr(doc locatex.Document, el locatex.Element, name string) string {
	v, _ := doc.Attribute(el, name)
	return v
}
