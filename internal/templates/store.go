// Package templates loads the template corpus. Templates come from an
// optional directory layered over the set embedded in the binary, and each
// is read at most once per Store.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"stratforge/internal/artifact"
	"stratforge/internal/logging"
)

//go:embed builtin
var builtinFS embed.FS

// Builtin returns the embedded template corpus.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}

var defaultNames = map[artifact.Kind]string{
	artifact.KindSource:         "main.rs.tmpl",
	artifact.KindManifest:       "Cargo.toml.tmpl",
	artifact.KindContainerBuild: "Dockerfile.tmpl",
	artifact.KindIgnoreFile:     "dockerignore.tmpl",
	artifact.KindDocumentation:  "README.md.tmpl",
	artifact.KindEnvExample:     "env.example.tmpl",
}

// DefaultName returns the file name a kind's template is stored under.
func DefaultName(kind artifact.Kind) string {
	return defaultNames[kind]
}

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateEmpty    = errors.New("template is empty")
)

// LoadError reports a template that could not be loaded.
type LoadError struct {
	Kind artifact.Kind
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s template %q: %v", e.Kind, e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Template is an immutable template body.
type Template struct {
	Kind artifact.Kind
	Name string
	Body string
}

// Store caches templates for its lifetime. It is safe for concurrent use.
type Store struct {
	layers    []fs.FS
	noBuiltin bool
	names     map[artifact.Kind]string

	mu    sync.RWMutex
	cache map[string]*Template
	group singleflight.Group
	loads atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

// WithDir layers a directory over the built-in templates.
func WithDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.layers = append([]fs.FS{os.DirFS(dir)}, s.layers...)
		}
	}
}

// WithFS layers fsys over the existing sources.
func WithFS(fsys fs.FS) Option {
	return func(s *Store) { s.layers = append([]fs.FS{fsys}, s.layers...) }
}

// WithFile stores kind's template under name instead of its default name.
func WithFile(kind artifact.Kind, name string) Option {
	return func(s *Store) { s.names[kind] = name }
}

// WithoutBuiltin drops the embedded corpus, so every template must come
// from a layered source.
func WithoutBuiltin() Option {
	return func(s *Store) { s.noBuiltin = true }
}

// NewStore creates a store over the built-in corpus.
func NewStore(opts ...Option) *Store {
	s := &Store{
		names: make(map[artifact.Kind]string, len(defaultNames)),
		cache: make(map[string]*Template),
	}
	for k, v := range defaultNames {
		s.names[k] = v
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.noBuiltin {
		s.layers = append(s.layers, Builtin())
	}
	return s
}

// Name returns the file name the store reads for kind.
func (s *Store) Name(kind artifact.Kind) string {
	return s.names[kind]
}

// Load returns kind's template, reading it on first use.
func (s *Store) Load(kind artifact.Kind) (*Template, error) {
	name := s.names[kind]
	key := kind.String() + ":" + name

	s.mu.RLock()
	t, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		s.mu.RLock()
		t, ok := s.cache[key]
		s.mu.RUnlock()
		if ok {
			return t, nil
		}

		t, err := s.read(kind, name)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[key] = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Template), nil
}

func (s *Store) read(kind artifact.Kind, name string) (*Template, error) {
	log := logging.Get(logging.CategoryTemplates)
	if name == "" {
		return nil, &LoadError{Kind: kind, Name: name, Err: ErrTemplateNotFound}
	}

	for i, layer := range s.layers {
		data, err := fs.ReadFile(layer, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &LoadError{Kind: kind, Name: name, Err: err}
		}
		s.loads.Add(1)
		if strings.TrimSpace(string(data)) == "" {
			return nil, &LoadError{Kind: kind, Name: name, Err: ErrTemplateEmpty}
		}
		log.Debug("loaded %s template %s from layer %d (%d bytes)", kind, name, i, len(data))
		return &Template{Kind: kind, Name: name, Body: string(data)}, nil
	}

	log.Warn("%s template %s not found in %d layers", kind, name, len(s.layers))
	return nil, &LoadError{Kind: kind, Name: name, Err: ErrTemplateNotFound}
}

// LoadAll loads every kind's template in render order.
func (s *Store) LoadAll() ([]*Template, error) {
	out := make([]*Template, 0, len(artifact.Kinds))
	for _, kind := range artifact.Kinds {
		t, err := s.Load(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Loads reports how many times a template file has been read.
func (s *Store) Loads() int64 {
	return s.loads.Load()
}

// Clear drops every cached template.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cache = make(map[string]*Template)
	s.mu.Unlock()
}
