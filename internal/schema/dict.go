// Package schema holds the per-type key tables ("dicts") built from a
// schema document and validates target sections against them.
package schema

import (
	"sort"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
)

// DictData describes one schema key: the accepted type names, tried left to
// right, an informational default and an optional file-scope tag.
type DictData struct {
	Types     []string
	Default   string
	FileScope string
}

// ParseDictData parses "type1||type2, default, fileScope". Missing fields
// are left empty.
func ParseDictData(raw string) DictData {
	parts := strings.SplitN(raw, ",", 3)
	var d DictData
	for _, t := range strings.Split(parts[0], "||") {
		if t = strings.TrimSpace(t); t != "" {
			d.Types = append(d.Types, t)
		}
	}
	if len(parts) > 1 {
		d.Default = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		d.FileScope = strings.TrimSpace(parts[2])
	}
	return d
}

// Env is what a Dict needs from the surrounding validation run.
type Env interface {
	// Visit marks sec as scanned. It returns false if sec was already
	// scanned, in which case the caller must not validate it again.
	Visit(sec *ini.Section) bool
	// Check validates one value against one type name and returns the
	// diagnostics it would raise. It must not report them itself.
	Check(sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic
	Report(d diag.Diagnostic)
	// FileType is the file-scope tag of the target document, or "".
	FileType() string
}

// Dict is the schema of one named type.
type Dict struct {
	Name      string
	Keys      map[string]DictData
	Templates []Template
}

// Build creates the dict for a schema section. Keys containing both
// parentheses become dynamic templates.
func Build(sec *ini.Section) *Dict {
	d := &Dict{Name: sec.Name, Keys: make(map[string]DictData)}
	for _, key := range sec.Keys() {
		v, _ := sec.Get(key)
		data := ParseDictData(v.Text)
		if strings.Contains(key, "(") && strings.Contains(key, ")") {
			d.Templates = append(d.Templates, Template{Key: key, Data: data})
			continue
		}
		d.Keys[key] = data
	}
	return d
}

// Types returns every type name referenced by the dict, in first-seen order.
func (d *Dict) Types() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(data DictData) {
		for _, t := range data.Types {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	for _, t := range d.Templates {
		add(t.Data)
	}
	for _, k := range sortedKeys(d.Keys) {
		add(d.Keys[k])
	}
	return out
}

// ValidateSection checks every key of sec against the dict. A section is
// validated at most once per Env.
func (d *Dict) ValidateSection(env Env, sec *ini.Section) {
	if !env.Visit(sec) {
		return
	}

	covered := make(map[string]bool)
	for _, t := range d.Templates {
		keys, err := t.Expand(sec)
		if err != nil {
			env.Report(templateDiagnostic(d, sec, t, err))
			continue
		}
		for _, key := range keys {
			v, ok := sec.Get(key)
			if !ok {
				continue
			}
			covered[key] = true
			d.validateKey(env, sec, key, v, t.Data)
		}
	}

	for _, key := range sec.Keys() {
		if covered[key] {
			continue
		}
		v, _ := sec.Get(key)
		data, ok := d.Keys[key]
		if !ok {
			env.Report(diag.New(diag.KeyNotExist, key, d.Name).
				AtPos(v.Pos()).
				In(sec.Name, key, v.Text))
			continue
		}
		d.validateKey(env, sec, key, v, data)
	}
}

// validateKey treats the accepted types as alternatives: the first type
// that passes wins, otherwise the first type's diagnostics are reported.
func (d *Dict) validateKey(env Env, sec *ini.Section, key string, v ini.Value, data DictData) {
	if data.FileScope != "" && env.FileType() != "" && !strings.EqualFold(data.FileScope, env.FileType()) {
		return
	}
	var first []diag.Diagnostic
	for i, typeName := range data.Types {
		found := env.Check(sec, key, v, typeName)
		if len(found) == 0 {
			return
		}
		if i == 0 {
			first = found
		}
	}
	for _, f := range first {
		env.Report(f)
	}
}

func sortedKeys(m map[string]DictData) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
