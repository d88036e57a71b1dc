package ini

import (
	"sort"

	"github.com/Super-StarX/INIValidator/internal/diag"
)

// Value is a stored string payload plus its provenance.
type Value struct {
	Text      string
	File      string
	Path      string
	FileIndex int
	Line      int
	// Inherited is set when the value was copied from a parent section
	// rather than written in this section.
	Inherited bool
}

// String returns the payload.
func (v Value) String() string { return v.Text }

// Pos returns where the value was written.
func (v Value) Pos() diag.Position {
	return diag.Position{Path: v.Path, File: v.File, FileIndex: v.FileIndex, Line: v.Line}
}

// Section is a named mapping of keys to values.
type Section struct {
	Name      string
	File      string
	Path      string
	FileIndex int
	Line      int

	values map[string]Value
}

// NewSection creates an empty section with no provenance.
func NewSection(name string) *Section {
	return &Section{Name: name, FileIndex: -1, Line: -1, values: make(map[string]Value)}
}

// Pos returns where the section header was declared.
func (s *Section) Pos() diag.Position {
	return diag.Position{Path: s.Path, File: s.File, FileIndex: s.FileIndex, Line: s.Line}
}

// Get returns the value stored under key.
func (s *Section) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Section) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Lookup returns the payload stored under key. It lets a section act as a
// variable scope for expressions.
func (s *Section) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v.Text, ok
}

// Len returns the number of keys.
func (s *Section) Len() int { return len(s.values) }

// Set stores v under key, replacing any previous value.
func (s *Section) Set(key string, v Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	s.values[key] = v
}

// Keys returns the keys ordered by provenance (file, then line), then by
// name. The order is deterministic across runs.
func (s *Section) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.values[keys[i]], s.values[keys[j]]
		if a.FileIndex != b.FileIndex {
			return a.FileIndex < b.FileIndex
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Map returns a plain key/value copy of the section.
func (s *Section) Map() map[string]string {
	m := make(map[string]string, len(s.values))
	for k, v := range s.values {
		m[k] = v.Text
	}
	return m
}
