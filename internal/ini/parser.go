package ini

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/diag"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Progress receives per-line progress while a file is parsed.
type Progress interface {
	Start(phase string, total int)
	Step()
}

// LoadOption customises a Load call.
type LoadOption func(*loader)

// WithProgress reports per-line progress for every loaded file.
func WithProgress(p Progress) LoadOption {
	return func(l *loader) { l.progress = p }
}

type loader struct {
	doc      *Document
	sink     diag.Sink
	progress Progress
	// active holds the include chain currently being loaded.
	active map[string]bool
}

// Parse creates a document and loads path into it.
func Parse(ctx context.Context, path string, sink diag.Sink, opts ...LoadOption) *Document {
	doc := NewDocument()
	doc.Load(ctx, path, sink, opts...)
	return doc
}

// Load merges the file at path, and any files it includes, into d. Problems
// are reported to sink and never stop the load.
func (d *Document) Load(ctx context.Context, path string, sink diag.Sink, opts ...LoadOption) {
	if sink == nil {
		sink = diag.Discard
	}
	l := &loader{doc: d, sink: sink, active: make(map[string]bool)}
	for _, opt := range opts {
		opt(l)
	}
	l.load(ctx, path)
}

func (l *loader) load(ctx context.Context, path string) {
	logger := ctxlog.FromContext(ctx)
	path = unquote(path)

	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	if l.active[key] {
		l.sink.Report(diag.New(diag.IncludeCycle, path).In("", "", path))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.sink.Report(diag.New(diag.FileNotFound, path).In("", "", path))
		} else {
			l.sink.Report(diag.New(diag.FileUnreadable, path, err.Error()).In("", "", path))
		}
		return
	}

	l.active[key] = true
	defer delete(l.active, key)

	name := filepath.Base(path)
	index := l.doc.addFile(path)
	logger.Debug("Loading file.", "path", path, "file_index", index)

	data = bytes.TrimPrefix(data, utf8BOM)
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	if l.progress != nil {
		l.progress.Start(name, len(lines))
	}
	p := fileParser{loader: l, file: name, path: path, index: index}
	for i, origin := range lines {
		if ctx != nil && ctx.Err() != nil {
			return
		}
		p.line(origin, i+1)
		if l.progress != nil {
			l.progress.Step()
		}
	}

	l.processIncludes(ctx, filepath.Dir(path), index)
}

// processIncludes loads the include entries declared by the file with the
// given index, in line order.
func (l *loader) processIncludes(ctx context.Context, dir string, index int) {
	sec, ok := l.doc.Section(IncludeSection)
	if !ok {
		return
	}
	var entries []Value
	for _, k := range sec.Keys() {
		v, _ := sec.Get(k)
		if v.FileIndex == index && v.Text != "" {
			entries = append(entries, v)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Line < entries[j].Line })
	for _, v := range entries {
		l.load(ctx, filepath.Join(dir, unquote(v.Text)))
	}
}

type fileParser struct {
	loader  *loader
	file    string
	path    string
	index   int
	current *Section
}

func (p *fileParser) report(d diag.Diagnostic, line int) {
	p.loader.sink.Report(d.AtPos(p.pos(line)))
}

func (p *fileParser) pos(line int) diag.Position {
	return diag.Position{Path: p.path, File: p.file, FileIndex: p.index, Line: line}
}

func (p *fileParser) value(text string, line int) Value {
	return Value{Text: text, File: p.file, Path: p.path, FileIndex: p.index, Line: line}
}

func (p *fileParser) line(origin string, n int) {
	line := strings.TrimSpace(stripComment(origin))
	if line == "" {
		return
	}
	if line[0] == '[' {
		p.section(line, origin, n)
		return
	}
	if p.current != nil {
		p.keyValue(line, n)
	}
}

func (p *fileParser) section(line, origin string, n int) {
	doc := p.loader.doc
	end := strings.IndexByte(line, ']')
	if end < 0 {
		name := strings.TrimSpace(line[1:])
		p.report(diag.New(diag.BracketClosed, line).In(name, "", origin), n)
		p.open(doc.AddSection(name), n)
		return
	}
	name := line[1:end]
	sec := doc.AddSection(name)
	p.open(sec, n)

	rest := line[end+1:]
	if rest == "" {
		return
	}
	if rest[0] != ':' {
		p.report(diag.New(diag.InheritanceBracketClosed, line).In(name, "", origin), n)
		return
	}
	if len(rest) < 2 || rest[1] != '[' {
		p.report(diag.New(diag.SectionFormat, line).In(name, "", origin), n)
		return
	}
	parentEnd := strings.IndexByte(rest[2:], ']')
	if parentEnd < 0 {
		p.report(diag.New(diag.InheritanceBracketClosed, line).In(name, "", origin), n)
		return
	}
	parentName := rest[2 : 2+parentEnd]
	parent, ok := doc.Section(parentName)
	if !ok {
		p.report(diag.New(diag.InheritanceSectionExist, parentName).In(name, "", origin), n)
		return
	}
	for _, key := range parent.Keys() {
		pv, _ := parent.Get(key)
		cur, exists := sec.Get(key)
		if !exists {
			pv.Inherited = true
			sec.Set(key, pv)
			continue
		}
		if cur.Inherited {
			p.report(diag.New(diag.InheritanceDuplicateKey, key, parentName, cur.Text, pv.Text).In(name, key, pv.Text), n)
		}
	}
}

func (p *fileParser) open(sec *Section, n int) {
	sec.File = p.file
	sec.Path = p.path
	sec.FileIndex = p.index
	sec.Line = n
	p.current = sec
}

func (p *fileParser) keyValue(line string, n int) {
	sec := p.current
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		sec.Set(line, p.value("", n))
		return
	}
	key := strings.TrimSpace(line[:eq])
	value := strings.TrimSpace(line[eq+1:])

	if key == "+" {
		key = p.loader.doc.generatedKey()
	} else if old, ok := sec.Get(key); ok && !old.Inherited && old.FileIndex == p.index {
		// Same-file redefinition keeps the first value.
		p.report(diag.New(diag.DuplicateKey, key, old.Line, old.Text, value).In(sec.Name, key, value), n)
		return
	}
	sec.Set(key, p.value(value, n))
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

func unquote(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, `"`)
	return strings.TrimSuffix(path, `"`)
}
