package view

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"github.com/skosovsky/view/internal/cachemanager"
)

const (
	defaultCacheTTL        = cachemanager.DefaultExpiration
	defaultMaxIncludeDepth = 32
	tracerName             = "github.com/skosovsky/view"
)

// Engine renders named templates from a root directory with layouts, sections,
// includes and registered extensions.
//
// Registration (AddExtension, AddGlobalData, ShareData) is not synchronized with
// rendering. Register before serving, or guard the Engine externally. Concurrent
// Render calls on an Engine that is no longer being configured are safe.
type Engine struct {
	resolver   *Resolver
	extensions *Extensions
	data       *DataStore
	templates  *cachemanager.ReadThroughCache[string, *template.Template, string]
	sf         singleflight.Group

	debug           bool
	suffix          string
	cacheTTL        time.Duration
	maxIncludeDepth int
	logger          *slog.Logger
	tracer          trace.Tracer
}

// New creates an Engine reading templates from root.
// Returns a *ConfigurationError when root is empty or not a usable directory,
// whatever the other options say.
func New(root string, opts ...Option) (*Engine, error) {
	e := newEngine(opts...)
	r, err := NewResolver(root, e.suffix)
	if err != nil {
		return nil, err
	}
	e.init(r)
	return e, nil
}

// NewFS creates an Engine reading templates from fsys.
func NewFS(fsys fs.FS, opts ...Option) (*Engine, error) {
	e := newEngine(opts...)
	r, err := NewFSResolver(fsys, e.suffix)
	if err != nil {
		return nil, err
	}
	e.init(r)
	return e, nil
}

func newEngine(opts ...Option) *Engine {
	e := &Engine{
		extensions:      NewExtensions(),
		data:            NewDataStore(),
		suffix:          DefaultSuffix,
		cacheTTL:        defaultCacheTTL,
		maxIncludeDepth: defaultMaxIncludeDepth,
		logger:          slog.Default(),
		tracer:          noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheTTL <= 0 {
		e.cacheTTL = cachemanager.NoExpiration
	}
	return e
}

func (e *Engine) init(r *Resolver) {
	e.resolver = r
	// No janitor goroutine: expired entries are skipped on Get and replaced on Set.
	cache := cachemanager.NewInMemoryCacheManager[string, *template.Template]("templates", e.cacheTTL, 0, e.logger)
	e.templates = cachemanager.NewReadThroughCache[string, *template.Template, string](cache, e.parse, e.debug)
}

// Resolver returns the engine's template resolver.
func (e *Engine) Resolver() *Resolver { return e.resolver }

// Debug reports the engine mode.
func (e *Engine) Debug() bool { return e.debug }

// AddExtension registers fn under name. Returns false if name is already taken;
// the first registration stays in effect.
func (e *Engine) AddExtension(name string, fn Extension) bool {
	return e.extensions.Register(name, fn)
}

// AddExt is shorthand for AddExtension.
func (e *Engine) AddExt(name string, fn Extension) bool {
	return e.AddExtension(name, fn)
}

// GetExtension calls the extension registered under name with args.
// Unknown names yield nil.
func (e *Engine) GetExtension(name string, args ...any) any {
	v, _ := e.extensions.Invoke(name, args...)
	return v
}

// GetExt is shorthand for GetExtension.
func (e *Engine) GetExt(name string, args ...any) any {
	return e.GetExtension(name, args...)
}

// AddGlobalData makes value visible as .key to every later render.
func (e *Engine) AddGlobalData(key string, value any) {
	e.data.SetGlobal(key, value)
}

// ShareData is an alias of AddGlobalData.
func (e *Engine) ShareData(key string, value any) {
	e.data.SetShared(key, value)
}

// Render executes the template called name and returns the composed output.
// data is visible alongside the engine's global data and wins on key collisions.
//
// ctx is checked before rendering starts; a render in progress runs to completion
// or fails as a whole. Missing templates yield *TemplateNotFoundError, missing
// includes *IncludeNotFoundError, and revisited layouts *LayoutCycleError.
func (e *Engine) Render(ctx context.Context, name string, data map[string]any) (string, error) {
	sections, err := e.render(ctx, name, data)
	if err != nil {
		return "", err
	}
	return sections.Default(), nil
}

// RenderSection composes the template called name like Render but returns only
// the named section of the final composition. A section nobody produced is
// ErrSectionNotFound.
func (e *Engine) RenderSection(ctx context.Context, name, section string, data map[string]any) (string, error) {
	sections, err := e.render(ctx, name, data)
	if err != nil {
		return "", err
	}
	text, ok := sections.Lookup(section)
	if !ok {
		return "", fmt.Errorf("%w: %q in template %q", ErrSectionNotFound, section, name)
	}
	return text, nil
}

// Reload drops every cached template.
func (e *Engine) Reload() {
	e.templates.Cache().Flush(context.Background())
}

// Invalidate drops the cached copy of one template.
func (e *Engine) Invalidate(name string) {
	if p, ok := e.resolver.Canonical(name); ok {
		e.templates.Cache().Delete(context.Background(), p)
	}
}

func (e *Engine) render(ctx context.Context, name string, data map[string]any) (*SectionStack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := e.tracer.Start(ctx, "view.Render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("view.template", name)),
	)
	defer span.End()

	var renderID string
	start := time.Now()
	if e.debug {
		renderID = uuid.NewString()
	}

	st := &renderState{engine: e, ctx: ctx, data: e.data.merge(data)}
	sections, chain, err := st.compose(name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if e.debug {
			e.logger.DebugContext(ctx, "template render failed",
				"render_id", renderID, "template", name, "error", err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.StringSlice("view.chain", chain),
		attribute.Int("view.sections", sections.Len()),
	)
	span.SetStatus(codes.Ok, "")
	if e.debug {
		e.logger.DebugContext(ctx, "template rendered",
			"render_id", renderID, "template", name, "chain", chain,
			"duration", time.Since(start))
	}
	return sections, nil
}

// load returns the parsed template at path, deduplicating concurrent parses.
func (e *Engine) load(ctx context.Context, p string) (*template.Template, error) {
	v, err, _ := e.sf.Do(p, func() (any, error) {
		return e.templates.Get(ctx, p, p, e.cacheTTL)
	})
	if err != nil {
		return nil, err
	}
	return v.(*template.Template), nil
}

func (e *Engine) parse(_ context.Context, p string) (*template.Template, error) {
	src, err := e.resolver.ReadFile(p)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(p).Funcs(placeholderFuncMap()).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTemplateParse, p, err)
	}
	return tpl, nil
}
