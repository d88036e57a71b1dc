package ini

import (
	"fmt"
	"path/filepath"
)

// IncludeSection is the reserved section whose values name files to load
// after the declaring file.
const IncludeSection = "#include"

// Document maps section names to sections. It owns the table of loaded
// files, so several documents can be loaded side by side.
type Document struct {
	// FileType is the file-scope tag matched against schema keys that are
	// restricted to one kind of document.
	FileType string

	sections map[string]*Section
	order    []string
	files    []string
	paths    []string
	nextVar  int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{sections: make(map[string]*Section)}
}

// Section returns the named section.
func (d *Document) Section(name string) (*Section, bool) {
	s, ok := d.sections[name]
	return s, ok
}

// Has reports whether the named section exists.
func (d *Document) Has(name string) bool {
	_, ok := d.sections[name]
	return ok
}

// Sections returns every section in the order it was first declared.
func (d *Document) Sections() []*Section {
	out := make([]*Section, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.sections[name])
	}
	return out
}

// Len returns the number of sections.
func (d *Document) Len() int { return len(d.sections) }

// Files returns the names of loaded files, indexed by file index.
func (d *Document) Files() []string {
	out := make([]string, len(d.files))
	copy(out, d.files)
	return out
}

// Paths returns the loaded files as they were opened, indexed by file
// index. Unlike Files they can be passed back to the filesystem.
func (d *Document) Paths() []string {
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

// FileName returns the file registered under index, or "" if none.
func (d *Document) FileName(index int) string {
	if index < 0 || index >= len(d.files) {
		return ""
	}
	return d.files[index]
}

// AddSection returns the named section, creating it if needed.
func (d *Document) AddSection(name string) *Section {
	if s, ok := d.sections[name]; ok {
		return s
	}
	s := NewSection(name)
	d.sections[name] = s
	d.order = append(d.order, name)
	return s
}

func (d *Document) addFile(path string) int {
	d.files = append(d.files, filepath.Base(path))
	d.paths = append(d.paths, path)
	return len(d.files) - 1
}

// generatedKey returns the next key for the "+=" append idiom.
func (d *Document) generatedKey() string {
	key := fmt.Sprintf("var_%d", d.nextVar)
	d.nextVar++
	return key
}
