package engine

import (
	"strings"

	"github.com/letmevibethatforyou/locatex"
)

// matchesFilters checks if an element satisfies all the filter expressions.
func matchesFilters(doc locatex.Document, el locatex.Element, filters []locatex.Expression) bool {
	for _, filter := range filters {
		if !evaluateExpression(doc, el, filter) {
			return false
		}
	}
	return true
}

// evaluateExpression evaluates a single expression against an element.
func evaluateExpression(doc locatex.Document, el locatex.Element, expr locatex.Expression) bool {
	switch e := expr.(type) {
	case locatex.AndExpr:
		for _, inner := range e.Exprs {
			if !evaluateExpression(doc, el, inner) {
				return false
			}
		}
		return true
	case locatex.OrExpr:
		for _, inner := range e.Exprs {
			if evaluateExpression(doc, el, inner) {
				return true
			}
		}
		return false
	case locatex.NotExpr:
		return !evaluateExpression(doc, el, e.Inner)
	case locatex.EqExpr:
		v, ok := doc.Attribute(el, e.Attr)
		return ok && v == e.Value
	case locatex.NeExpr:
		v, ok := doc.Attribute(el, e.Attr)
		return !ok || v != e.Value
	case locatex.ContainsExpr:
		v, ok := doc.Attribute(el, e.Attr)
		return ok && strings.Contains(v, e.Substr)
	case locatex.ExistsExpr:
		_, ok := doc.Attribute(el, e.Attr)
		return ok
	default:
		// Unknown expression type, return true to not filter out
		return true
	}
}
