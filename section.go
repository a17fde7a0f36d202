package view

import "slices"

// DefaultSection names the implicit section holding body content written outside
// any {{ define }} block.
const DefaultSection = "default"

// SectionStack captures the named sections produced while executing one template
// body, plus the implicit default section. It is allocated per render call.
// Once frozen it is handed read-only to the parent layout.
type SectionStack struct {
	text   map[string]string
	order  []string
	frozen bool
}

// NewSectionStack returns an empty, writable stack.
func NewSectionStack() *SectionStack {
	return &SectionStack{text: make(map[string]string)}
}

// Capture records text under name. A repeated capture replaces the text but keeps
// the original position. Returns false when the stack is frozen.
func (s *SectionStack) Capture(name, text string) bool {
	if s.frozen {
		return false
	}
	if _, ok := s.text[name]; !ok {
		s.order = append(s.order, name)
	}
	s.text[name] = text
	return true
}

// Lookup returns the captured text for name.
func (s *SectionStack) Lookup(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	t, ok := s.text[name]
	return t, ok
}

// Has reports whether name was captured.
func (s *SectionStack) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Default returns the implicit default section.
func (s *SectionStack) Default() string {
	t, _ := s.Lookup(DefaultSection)
	return t
}

// Names returns captured section names in capture order.
func (s *SectionStack) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Len returns the number of captured sections, the default one included.
func (s *SectionStack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Freeze makes the stack read-only and returns it.
func (s *SectionStack) Freeze() *SectionStack {
	s.frozen = true
	return s
}

// Frozen reports whether Freeze was called.
func (s *SectionStack) Frozen() bool { return s.frozen }
