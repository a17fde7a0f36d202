package view

import (
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/skosovsky/view/internal/cast"
)

// Names of the directive functions bound per render call.
const (
	funcExtends    = "extends"
	funcInclude    = "include"
	funcExt        = "ext"
	funcSection    = "section"
	funcHasSection = "hasSection"
	funcRecord     = "_record"
)

// recordedPrefix names the hidden copy of a define or block whose public name is
// rebound to record its first output.
const recordedPrefix = "_section/"

// builtinFuncMap returns helpers that do not depend on render state.
func builtinFuncMap() template.FuncMap {
	return template.FuncMap{
		"truncate_chars": truncateChars,
		"join":           join,
		"sum":            sum,
	}
}

// placeholderFuncMap is used at parse time only. Every render binds the real
// directive functions on a clone of the parsed template.
func placeholderFuncMap() template.FuncMap {
	fm := builtinFuncMap()
	fm[funcExtends] = func(string) string { return "" }
	fm[funcInclude] = func(string) string { return "" }
	fm[funcExt] = func(string, ...any) any { return "" }
	fm[funcSection] = func(string) string { return "" }
	fm[funcHasSection] = func(string) bool { return false }
	return fm
}

// truncateChars truncates text to at most maxChars runes.
// Uses RuneCountInString for early exit to avoid allocating []rune when no truncation is needed.
func truncateChars(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars])
}

// join concatenates a list (e.g. flash messages) with sep. Non-string elements
// of []any, []int and []float64 are printed as text. A nil list joins to "".
func join(list any, sep string) (string, error) {
	if list == nil {
		return "", nil
	}
	if ss, ok := cast.ToStringSlice(list); ok {
		return strings.Join(ss, sep), nil
	}
	switch list.(type) {
	case []any, []int, []float64:
	default:
		return "", fmt.Errorf("join: expected a list, got %T", list)
	}
	items := cast.Flatten([]any{list})
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = cast.ToText(item)
	}
	return strings.Join(parts, sep), nil
}

// sum adds its numeric arguments; a single slice argument is expanded.
// The result stays integral when every argument is an integer.
func sum(args ...any) (any, error) {
	var (
		ints    int64
		floats  float64
		integer = true
	)
	for i, a := range cast.Flatten(args) {
		if n, ok := cast.ToInt64(a); ok && integer {
			ints += n
			continue
		}
		f, ok := cast.ToFloat64(a)
		if !ok {
			return nil, fmt.Errorf("sum: argument %d: expected number, got %T", i, a)
		}
		if integer {
			floats = float64(ints)
			integer = false
		}
		floats += f
	}
	if integer {
		return ints, nil
	}
	return floats, nil
}
