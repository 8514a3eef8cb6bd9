package locatex

// Expression represents a composable attribute filter on scanned elements.
// All Expressions are SearchOptions, but not all SearchOptions are Expressions.
type Expression interface {
	SearchOption
	// expr is a marker method to distinguish expressions from other options.
	expr()
}

// baseExpr provides the expr marker method for all expression types.
type baseExpr struct{}

func (baseExpr) expr() {}

// AndExpr represents an AND combination of expressions.
type AndExpr struct {
	baseExpr
	// Exprs contains the expressions to combine with AND logic.
	Exprs []Expression
}

// Apply implements the SearchOption interface for AndExpr.
func (a AndExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, a)
}

// And creates an AND expression combining multiple expressions.
func And(exprs ...Expression) Expression {
	return AndExpr{Exprs: exprs}
}

// OrExpr represents an OR combination of expressions.
type OrExpr struct {
	baseExpr
	// Exprs contains the expressions to combine with OR logic.
	Exprs []Expression
}

// Apply implements the SearchOption interface for OrExpr.
func (o OrExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, o)
}

// Or creates an OR expression combining multiple expressions.
func Or(exprs ...Expression) Expression {
	return OrExpr{Exprs: exprs}
}

// NotExpr represents a NOT negation of an expression.
type NotExpr struct {
	baseExpr
	// Inner is the expression to negate.
	Inner Expression
}

// Apply implements the SearchOption interface for NotExpr.
func (n NotExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, n)
}

// Not creates a NOT expression negating the given expression.
func Not(expr Expression) Expression {
	return NotExpr{Inner: expr}
}

// EqExpr matches elements whose attribute equals Value.
type EqExpr struct {
	baseExpr
	// Attr is the attribute name.
	Attr string
	// Value is the value to compare against.
	Value string
}

// Apply implements the SearchOption interface for EqExpr.
func (e EqExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Eq creates an attribute equality expression.
func Eq(attr, value string) Expression {
	return EqExpr{Attr: attr, Value: value}
}

// NeExpr matches elements whose attribute is absent or differs from Value.
type NeExpr struct {
	baseExpr
	// Attr is the attribute name.
	Attr string
	// Value is the value to compare against.
	Value string
}

// Apply implements the SearchOption interface for NeExpr.
func (n NeExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, n)
}

// Ne creates an attribute not-equal expression.
func Ne(attr, value string) Expression {
	return NeExpr{Attr: attr, Value: value}
}

// ContainsExpr matches elements whose attribute contains Substr.
type ContainsExpr struct {
	baseExpr
	// Attr is the attribute name.
	Attr string
	// Substr is the substring to look for.
	Substr string
}

// Apply implements the SearchOption interface for ContainsExpr.
func (c ContainsExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, c)
}

// Contains creates an attribute substring expression.
func Contains(attr, substr string) Expression {
	return ContainsExpr{Attr: attr, Substr: substr}
}

// ExistsExpr represents an attribute existence check expression.
type ExistsExpr struct {
	baseExpr
	// Attr is the name of the attribute to check for existence.
	Attr string
}

// Apply implements the SearchOption interface for ExistsExpr.
func (e ExistsExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Exists creates an attribute existence check expression.
func Exists(attr string) Expression {
	return ExistsExpr{Attr: attr}
}
