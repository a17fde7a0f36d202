package view

import (
	"maps"
	"slices"
)

// Extension is a helper callable from templates via {{ ext "name" args... }}.
// The result is coerced to text when printed; returning nil prints nothing.
type Extension func(args ...any) any

// Extensions maps helper names to callables. The first registration for a name wins;
// later registrations are rejected without error.
//
// Extensions performs no locking: register helpers before rendering starts, or
// synchronize externally when sharing an Engine between goroutines.
type Extensions struct {
	fns map[string]Extension
}

// NewExtensions returns an empty registry.
func NewExtensions() *Extensions {
	return &Extensions{fns: make(map[string]Extension)}
}

// Register adds fn under name. Returns false (and changes nothing) when name is
// already registered or fn is nil.
func (x *Extensions) Register(name string, fn Extension) bool {
	if fn == nil {
		return false
	}
	if _, ok := x.fns[name]; ok {
		return false
	}
	x.fns[name] = fn
	return true
}

// Invoke calls the helper registered under name. ok is false for unknown names;
// an unknown helper is never an error.
func (x *Extensions) Invoke(name string, args ...any) (result any, ok bool) {
	fn, ok := x.fns[name]
	if !ok {
		return nil, false
	}
	return fn(args...), true
}

// Has reports whether name is registered.
func (x *Extensions) Has(name string) bool {
	_, ok := x.fns[name]
	return ok
}

// Names returns registered helper names in sorted order.
func (x *Extensions) Names() []string {
	return slices.Sorted(maps.Keys(x.fns))
}
