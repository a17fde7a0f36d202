// Package helpers registers request-scoped view helpers: flash messages and the
// current route name. The engine knows nothing about them; they are ordinary
// extensions.
package helpers

import "github.com/skosovsky/view"

// Flash message levels understood by FlashStore.
const (
	LevelError   = "error"
	LevelSuccess = "success"
	LevelWarning = "warning"
)

// Extension names registered by Register.
const (
	FlashErrors     = "flashErrors"
	FlashSuccess    = "flashSuccess"
	FlashWarning    = "flashWarning"
	GetCurrentRoute = "getCurrentRoute"
)

// FlashStore yields pending flash messages of one level. Display may consume them.
type FlashStore interface {
	Display(level string) []string
}

// Router reports the name of the route being served.
type Router interface {
	CurrentRouteName() (string, bool)
}

// Registrar is the part of *view.Engine that Register needs.
type Registrar interface {
	AddExtension(name string, fn view.Extension) bool
}

// Register adds the flash helpers when flash is non-nil and getCurrentRoute when
// router is non-nil. It returns the names that were already taken and kept their
// earlier registration.
func Register(r Registrar, flash FlashStore, router Router) []string {
	var taken []string
	add := func(name string, fn view.Extension) {
		if !r.AddExtension(name, fn) {
			taken = append(taken, name)
		}
	}
	if flash != nil {
		add(FlashErrors, flashLevel(flash, LevelError))
		add(FlashSuccess, flashLevel(flash, LevelSuccess))
		add(FlashWarning, flashLevel(flash, LevelWarning))
	}
	if router != nil {
		add(GetCurrentRoute, func(...any) any {
			name, ok := router.CurrentRouteName()
			if !ok {
				return nil
			}
			return name
		})
	}
	return taken
}

// flashLevel never returns nil so templates can range over the result directly.
func flashLevel(flash FlashStore, level string) view.Extension {
	return func(...any) any {
		msgs := flash.Display(level)
		if msgs == nil {
			return []string{}
		}
		return msgs
	}
}
