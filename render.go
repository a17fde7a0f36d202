package view

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/template"
)

// renderState is the per-call state of one top-level render: the merged data,
// the include depth and the first error that must reach the caller unwrapped.
type renderState struct {
	engine *Engine
	ctx    context.Context
	data   map[string]any
	depth  int
	err    error
}

// frame is one template execution: the top-level body, a layout, or an include.
type frame struct {
	path     string
	layout   string
	include  bool
	sections *SectionStack // frozen sections of the level below; nil for the body
	recorded map[string]string
}

// carried returns the section handed up from the level below. A whitespace-only
// default body counts as absent so every placeholder form keeps its fallback.
func (fr *frame) carried(name string) (string, bool) {
	text, ok := fr.sections.Lookup(name)
	if ok && name == DefaultSection && strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, ok
}

// compose runs the body, then each declared layout with the sections captured so far.
// It returns the final sections and the chain of executed template paths.
func (st *renderState) compose(name string) (*SectionStack, []string, error) {
	e := st.engine
	p, err := e.resolver.Resolve(name)
	if err != nil {
		return nil, nil, err
	}
	chain := []string{p}

	fr := &frame{path: p}
	sections, err := st.level(fr)
	if err != nil {
		return nil, chain, err
	}

	for fr.layout != "" {
		lp, err := e.resolver.Resolve(fr.layout)
		if err != nil {
			return nil, chain, err
		}
		if slices.Contains(chain, lp) {
			return nil, chain, &LayoutCycleError{Chain: append(slices.Clone(chain), lp)}
		}
		chain = append(chain, lp)

		fr = &frame{path: lp, sections: sections.Freeze()}
		if sections, err = st.level(fr); err != nil {
			return nil, chain, err
		}
	}
	return sections, chain, nil
}

// level executes one body or layout and captures its sections.
func (st *renderState) level(fr *frame) (*SectionStack, error) {
	tpl, err := st.engine.load(st.ctx, fr.path)
	if err != nil {
		return nil, err
	}
	clone, err := st.bind(tpl, fr)
	if err != nil {
		return nil, err
	}
	out, err := st.exec(clone, fr.path)
	if err != nil {
		return nil, err
	}
	return st.capture(clone, fr, out)
}

// bind clones tpl and attaches the directive functions for fr. In a layout every
// section carried from below replaces the layout's own definition of that name.
// Every other define and block is rebound so its first output is recorded as it
// runs, and capture never executes it a second time.
func (st *renderState) bind(tpl *template.Template, fr *frame) (*template.Template, error) {
	clone, err := tpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTemplateRender, fr.path, err)
	}
	clone.Funcs(st.funcMap(fr, clone))
	if fr.include {
		return clone, nil
	}
	for _, name := range fr.sections.Names() {
		if _, ok := fr.carried(name); !ok {
			continue
		}
		src := "{{ " + funcSection + " " + strconv.Quote(name) + " }}"
		if _, err := clone.New(name).Parse(src); err != nil {
			return nil, fmt.Errorf("%w: section %q: %w", ErrTemplateParse, name, err)
		}
	}
	for _, t := range sectionTemplates(clone) {
		name := t.Name()
		if _, ok := fr.carried(name); ok {
			continue
		}
		if _, err := clone.AddParseTree(recordedPrefix+name, t.Tree); err != nil {
			return nil, fmt.Errorf("%w: section %q: %w", ErrTemplateParse, name, err)
		}
		src := "{{ " + funcRecord + " " + strconv.Quote(name) + " . }}"
		if _, err := clone.New(name).Parse(src); err != nil {
			return nil, fmt.Errorf("%w: section %q: %w", ErrTemplateParse, name, err)
		}
	}
	return clone, nil
}

// sectionTemplates returns the named templates of clone that may become sections,
// sorted by name.
func sectionTemplates(clone *template.Template) []*template.Template {
	var out []*template.Template
	for _, t := range clone.Templates() {
		n := t.Name()
		if n == clone.Name() || t.Tree == nil || strings.HasPrefix(n, recordedPrefix) {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *template.Template) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// record executes the hidden copy of a define or block. The first output is kept
// as the section text; later calls still run so repeated invocations render normally.
func (st *renderState) record(fr *frame, clone *template.Template, name string, dot any) (string, error) {
	t := clone.Lookup(recordedPrefix + name)
	if t == nil {
		return "", fmt.Errorf("%w: %q: section %q is not defined", ErrTemplateRender, fr.path, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, dot); err != nil {
		if st.err != nil {
			return "", st.err
		}
		return "", err
	}
	out := buf.String()
	if fr.recorded == nil {
		fr.recorded = make(map[string]string)
	}
	if _, ok := fr.recorded[name]; !ok {
		fr.recorded[name] = out
	}
	return out, nil
}

// capture records the body as the default section, then every named template of
// the clone, then the carried sections this level did not redefine. Defines that
// already ran during the body keep the text they produced there.
func (st *renderState) capture(clone *template.Template, fr *frame, body string) (*SectionStack, error) {
	sections := NewSectionStack()
	sections.Capture(DefaultSection, body)

	for _, t := range sectionTemplates(clone) {
		n := t.Name()
		if n == DefaultSection {
			continue
		}
		if text, ok := fr.recorded[n]; ok {
			sections.Capture(n, text)
			continue
		}
		out, err := st.exec(t, fr.path)
		if err != nil {
			return nil, err
		}
		sections.Capture(n, out)
	}

	for _, n := range fr.sections.Names() {
		if sections.Has(n) {
			continue
		}
		text, _ := fr.sections.Lookup(n)
		sections.Capture(n, text)
	}
	return sections, nil
}

func (st *renderState) exec(t *template.Template, path string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, st.data); err != nil {
		if st.err != nil {
			return "", st.err
		}
		return "", fmt.Errorf("%w: %q: %w", ErrTemplateRender, path, err)
	}
	return buf.String(), nil
}

// fail records the first error that must abort the whole render as-is.
func (st *renderState) fail(err error) error {
	if st.err == nil {
		st.err = err
	}
	return err
}

func (st *renderState) include(parent *frame, name string) (string, error) {
	if st.depth >= st.engine.maxIncludeDepth {
		return "", st.fail(fmt.Errorf("%w: %q from %q", ErrIncludeDepth, name, parent.path))
	}
	p, err := st.engine.resolver.ResolveInclude(name)
	if err != nil {
		return "", st.fail(err)
	}
	tpl, err := st.engine.load(st.ctx, p)
	if err != nil {
		return "", st.fail(err)
	}

	fr := &frame{path: p, include: true, sections: parent.sections}
	clone, err := st.bind(tpl, fr)
	if err != nil {
		return "", st.fail(err)
	}
	st.depth++
	defer func() { st.depth-- }()
	out, err := st.exec(clone, p)
	if err != nil {
		return "", st.fail(err)
	}
	return out, nil
}

func (st *renderState) funcMap(fr *frame, clone *template.Template) template.FuncMap {
	ext := st.engine.extensions
	return template.FuncMap{
		funcExtends: func(name string) (string, error) {
			if fr.include {
				return "", fmt.Errorf("%w: extends %q in included template %q", ErrTemplateRender, name, fr.path)
			}
			if fr.layout == name {
				return "", nil
			}
			if fr.layout != "" {
				return "", fmt.Errorf("%w: %q extends %q and %q", ErrMultipleLayouts, fr.path, fr.layout, name)
			}
			fr.layout = name
			return "", nil
		},
		funcInclude: func(name string) (string, error) {
			return st.include(fr, name)
		},
		funcExt: func(name string, args ...any) any {
			v, ok := ext.Invoke(name, args...)
			if !ok || v == nil {
				return ""
			}
			return v
		},
		funcRecord: func(name string, dot any) (string, error) {
			return st.record(fr, clone, name, dot)
		},
		funcSection: func(name string) string {
			text, _ := fr.carried(name)
			return text
		},
		funcHasSection: func(name string) bool {
			_, ok := fr.carried(name)
			return ok
		},
	}
}
