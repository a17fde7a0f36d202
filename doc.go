// Package view is a server-side template engine with layouts, sections, includes
// and caller-registered helpers, built on text/template.
//
// Templates live below a root directory and are addressed by slash-separated
// names without the ".tmpl" suffix. A body may declare a parent layout with
// {{ extends "layouts/main" }}, define sections with {{ define "name" }}…{{ end }},
// pull in fragments with {{ include "partials/nav" }} and call helpers with
// {{ ext "name" args… }}. Layouts place sections with {{ block "name" . }}fallback{{ end }}
// or {{ section "name" }}; the body outside any define is the "default" section.
//
// Composition runs in two passes: the body executes first and its sections are
// captured, then each layout up the chain executes with those captures
// substituted for its own definitions.
package view
