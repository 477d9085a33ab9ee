package theme

import (
	"errors"
	"sync"
)

// Storage is a string key/value store that may fail, like browser
// localStorage with storage disabled.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// ErrNotFound is returned by storages when the key is absent.
var ErrNotFound = errors.New("key not found")

// Scheme reports the OS color-scheme preference.
type Scheme interface {
	PrefersDark() bool
	// Watch registers fn for changes and returns a function that removes it.
	Watch(fn func(prefersDark bool)) (stop func())
}

// Root receives the resolved theme, like the document's <html> element.
type Root interface {
	Apply(Resolved)
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	// Err, when set, is returned from every call.
	Err error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.values[key] = value
	return nil
}

// MediaQuery is a Scheme whose value is pushed in from outside, mirroring
// a prefers-color-scheme media query list.
type MediaQuery struct {
	mu        sync.Mutex
	dark      bool
	seq       int
	listeners map[int]func(bool)
}

func NewMediaQuery(prefersDark bool) *MediaQuery {
	return &MediaQuery{dark: prefersDark, listeners: make(map[int]func(bool))}
}

func (m *MediaQuery) PrefersDark() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dark
}

func (m *MediaQuery) Watch(fn func(bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Set updates the OS preference and notifies listeners on change.
func (m *MediaQuery) Set(prefersDark bool) {
	m.mu.Lock()
	if m.dark == prefersDark {
		m.mu.Unlock()
		return
	}
	m.dark = prefersDark
	fns := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(prefersDark)
	}
}

// Listeners returns the number of attached listeners.
func (m *MediaQuery) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// StaticScheme never changes; used when rendering a single request.
type StaticScheme bool

func (s StaticScheme) PrefersDark() bool          { return bool(s) }
func (StaticScheme) Watch(func(bool)) (stop func()) { return func() {} }

// DocumentRoot models the class list and data-theme attribute of <html>.
type DocumentRoot struct {
	mu      sync.Mutex
	classes map[string]bool
	attr    string
}

func NewDocumentRoot() *DocumentRoot {
	return &DocumentRoot{classes: make(map[string]bool)}
}

// Apply sets exactly one of the two theme classes.
func (d *DocumentRoot) Apply(r Resolved) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.classes, string(ResolvedLight))
	delete(d.classes, string(ResolvedDark))
	d.classes[string(r)] = true
	d.attr = string(r)
}

// HasClass reports whether name is on the root.
func (d *DocumentRoot) HasClass(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classes[name]
}

// DataTheme returns the data-theme attribute value.
func (d *DocumentRoot) DataTheme() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attr
}

// RootFunc adapts a function to Root.
type RootFunc func(Resolved)

func (f RootFunc) Apply(r Resolved) { f(r) }
