package registry

import (
	"context"
	"strings"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/schema"
	"github.com/Super-StarX/INIValidator/internal/validator"
)

// Load populates the registry from a schema document. Names listed in a
// well-known section without a schema section of their own are reported
// as TypeNotExist and skipped.
func (r *Registry) Load(ctx context.Context, doc *ini.Document, sink diag.Sink) {
	logger := ctxlog.FromContext(ctx)
	if sink == nil {
		sink = diag.Discard
	}

	forEachType(doc, NumberLimitsSection, sink, func(sec *ini.Section) {
		rule, found := validator.ParseNumberRule(sec)
		reportAll(sink, found)
		r.Numbers[sec.Name] = rule
	})
	forEachType(doc, LimitsSection, sink, func(sec *ini.Section) {
		rule, found := validator.ParseLimitRule(sec)
		reportAll(sink, found)
		r.Limits[sec.Name] = rule
	})
	forEachType(doc, ListsSection, sink, func(sec *ini.Section) {
		rule, found := validator.ParseListRule(sec)
		reportAll(sink, found)
		if len(rule.Types) > 0 {
			r.Lists[sec.Name] = rule
		}
	})
	forEachType(doc, GlobalsSection, sink, func(sec *ini.Section) {
		r.Globals = append(r.Globals, schema.Build(sec))
	})
	forEachType(doc, SectionsSection, sink, func(sec *ini.Section) {
		r.Sections[sec.Name] = schema.Build(sec)
	})
	r.loadEntries(doc)

	logger.Debug("Schema registry loaded.",
		"numbers", len(r.Numbers),
		"limits", len(r.Limits),
		"lists", len(r.Lists),
		"globals", len(r.Globals),
		"sections", len(r.Sections),
		"registries", len(r.Entries),
	)
}

func (r *Registry) loadEntries(doc *ini.Document) {
	list, ok := doc.Section(RegistriesSection)
	if !ok {
		return
	}
	for _, name := range list.Keys() {
		v, _ := list.Get(name)
		e := Entry{
			Name:       name,
			Type:       strings.TrimSpace(v.Text),
			CheckExist: true,
			File:       v.File,
			Path:       v.Path,
			FileIndex:  v.FileIndex,
			Line:       v.Line,
		}
		if cfg, ok := doc.Section(name); ok {
			if t, ok := cfg.Get("Type"); ok && t.Text != "" {
				e.Type = t.Text
			}
			if c, ok := cfg.Get("CheckExist"); ok {
				e.CheckExist = validator.IsTrue(c.Text)
			}
			if p, ok := cfg.Get("PresetItems"); ok {
				for _, item := range strings.Split(p.Text, ",") {
					if item = strings.TrimSpace(item); item != "" {
						e.PresetItems = append(e.PresetItems, item)
					}
				}
			}
		}
		r.Entries = append(r.Entries, e)
	}
}

// forEachType calls fn with the schema section of every name listed in the
// named well-known section.
func forEachType(doc *ini.Document, listName string, sink diag.Sink, fn func(*ini.Section)) {
	list, ok := doc.Section(listName)
	if !ok {
		return
	}
	for _, name := range list.Keys() {
		sec, ok := doc.Section(name)
		if !ok {
			v, _ := list.Get(name)
			sink.Report(diag.New(diag.TypeNotExist, name).
				AtPos(v.Pos()).
				In(listName, name, v.Text))
			continue
		}
		fn(sec)
	}
}

func reportAll(sink diag.Sink, found []diag.Diagnostic) {
	for _, d := range found {
		sink.Report(d)
	}
}
