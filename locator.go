package locatex

import "context"

// Locator defines the core element location interface.
type Locator interface {
	// Locate finds the elements best matching the natural-language query, most relevant first.
	Locate(ctx context.Context, query string, opts ...SearchOption) (*Results, error)
}

// LocatorFunc is a function type that implements the Locator interface.
// This allows using a function as a Locator, similar to http.HandlerFunc.
type LocatorFunc func(context.Context, string, ...SearchOption) (*Results, error)

// Locate implements the Locator interface for LocatorFunc.
func (f LocatorFunc) Locate(ctx context.Context, query string, opts ...SearchOption) (*Results, error) {
	return f(ctx, query, opts...)
}
