package view

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Option configures an Engine (functional options pattern).
type Option func(*Engine)

// WithDebug sets the engine mode. In debug mode templates are re-read on every
// render and each render is logged at debug level. It never changes whether an
// operation succeeds.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// WithSuffix sets the template file suffix appended to names that lack it. Default ".tmpl".
func WithSuffix(suffix string) Option {
	return func(e *Engine) {
		e.suffix = suffix
	}
}

// WithLogger sets the logger for diagnostics. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer enables a span per render call.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithCacheTTL sets how long parsed templates stay cached outside debug mode.
// Default is 10 minutes. TTL <= 0 means entries never expire; use Reload to drop them.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = d
	}
}

// WithMaxIncludeDepth limits include nesting. Default is 32.
func WithMaxIncludeDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIncludeDepth = n
		}
	}
}
