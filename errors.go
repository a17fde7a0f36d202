package view

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for engine and render operations.
// All use prefix "view:" for identification. Callers should use errors.Is/errors.As.
var (
	ErrConfiguration    = errors.New("view: invalid configuration")
	ErrTemplateNotFound = errors.New("view: template not found")
	ErrIncludeNotFound  = errors.New("view: include template not found")
	ErrLayoutCycle      = errors.New("view: layout cycle detected")
	ErrTemplateParse    = errors.New("view: template parsing failed")
	ErrTemplateRender   = errors.New("view: template rendering failed")
	ErrSectionNotFound  = errors.New("view: section not found")
	ErrIncludeDepth     = errors.New("view: include nesting too deep")
	ErrMultipleLayouts  = errors.New("view: template declares more than one layout")
)

// ConfigurationError reports an unusable root directory passed to New.
// Use errors.Is(err, ErrConfiguration) and errors.As(err, &cfgErr) to inspect.
type ConfigurationError struct {
	Root string
	Err  error
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	if e.Root == "" {
		return "view: root directory is not configured"
	}
	return fmt.Sprintf("view: root directory %q is not usable: %v", e.Root, e.Err)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Unwrap returns the underlying filesystem error, if any.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// TemplateNotFoundError is returned when a rendered template or one of its layouts is missing.
// The message is stable; callers may compare it verbatim.
type TemplateNotFoundError struct {
	Name string
}

// Error implements error.
func (e *TemplateNotFoundError) Error() string {
	return "View does not exist: " + e.Name
}

// Is matches ErrTemplateNotFound.
func (e *TemplateNotFoundError) Is(target error) bool { return target == ErrTemplateNotFound }

// IncludeNotFoundError is returned when a template includes a fragment that does not exist.
// Name carries the missing fragment; the message deliberately does not.
type IncludeNotFoundError struct {
	Name string
}

// Error implements error.
func (e *IncludeNotFoundError) Error() string {
	return "Include template does not exist"
}

// Is matches ErrIncludeNotFound.
func (e *IncludeNotFoundError) Is(target error) bool { return target == ErrIncludeNotFound }

// LayoutCycleError is returned when an extends chain revisits a template already being composed.
type LayoutCycleError struct {
	Chain []string
}

// Error implements error.
func (e *LayoutCycleError) Error() string {
	return "view: layout cycle: " + strings.Join(e.Chain, " -> ")
}

// Is matches ErrLayoutCycle.
func (e *LayoutCycleError) Is(target error) bool { return target == ErrLayoutCycle }

// Compile-time checks.
var (
	_ error = (*ConfigurationError)(nil)
	_ error = (*TemplateNotFoundError)(nil)
	_ error = (*IncludeNotFoundError)(nil)
	_ error = (*LayoutCycleError)(nil)
)
