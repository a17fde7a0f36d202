package view

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultSuffix is appended to template names that do not already carry it.
const DefaultSuffix = ".tmpl"

var errNotDirectory = errors.New("not a directory")

// Resolver maps template names to files below a root directory.
// Names are slash-separated and relative to the root; the suffix is optional.
// Names that would escape the root never resolve.
type Resolver struct {
	fsys   fs.FS
	root   string
	suffix string
}

// NewResolver validates root and returns a Resolver reading from it.
// An empty, missing, or non-directory root is a *ConfigurationError.
func NewResolver(root, suffix string) (*Resolver, error) {
	if root == "" {
		return nil, &ConfigurationError{}
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ConfigurationError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ConfigurationError{Root: root, Err: errNotDirectory}
	}
	return newResolver(os.DirFS(root), root, suffix)
}

// NewFSResolver returns a Resolver over fsys (e.g. an embed.FS).
func NewFSResolver(fsys fs.FS, suffix string) (*Resolver, error) {
	if fsys == nil {
		return nil, &ConfigurationError{}
	}
	return newResolver(fsys, ".", suffix)
}

func newResolver(fsys fs.FS, root, suffix string) (*Resolver, error) {
	// The root must be listable, not merely present.
	if _, err := fs.ReadDir(fsys, "."); err != nil {
		return nil, &ConfigurationError{Root: root, Err: err}
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return &Resolver{fsys: fsys, root: root, suffix: suffix}, nil
}

// Root returns the configured root directory ("." for fs.FS resolvers).
func (r *Resolver) Root() string { return r.root }

// Suffix returns the canonical template suffix.
func (r *Resolver) Suffix() string { return r.suffix }

// Canonical returns the slash-separated path name maps to, without checking that
// the file exists. ok is false for names that are empty or escape the root.
func (r *Resolver) Canonical(name string) (p string, ok bool) {
	p = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	if p == "" {
		return "", false
	}
	if !strings.HasSuffix(p, r.suffix) {
		p += r.suffix
	}
	p = path.Clean(p)
	if !fs.ValidPath(p) || p == "." {
		return "", false
	}
	return p, true
}

// Resolve returns the path of the template called name.
// A missing template is a *TemplateNotFoundError carrying name as given.
func (r *Resolver) Resolve(name string) (string, error) {
	p, ok := r.lookup(name)
	if !ok {
		return "", &TemplateNotFoundError{Name: name}
	}
	return p, nil
}

// ResolveInclude is Resolve for included fragments; a missing fragment is an
// *IncludeNotFoundError.
func (r *Resolver) ResolveInclude(name string) (string, error) {
	p, ok := r.lookup(name)
	if !ok {
		return "", &IncludeNotFoundError{Name: name}
	}
	return p, nil
}

// FullPath joins a resolved path with the root for display and watching.
func (r *Resolver) FullPath(p string) string {
	return filepath.Join(r.root, filepath.FromSlash(p))
}

// ReadFile reads a resolved template.
func (r *Resolver) ReadFile(p string) ([]byte, error) {
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("view: read template %q: %w", p, err)
	}
	return data, nil
}

func (r *Resolver) lookup(name string) (string, bool) {
	p, ok := r.Canonical(name)
	if !ok {
		return "", false
	}
	info, err := fs.Stat(r.fsys, p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}
