package checker

import (
	"context"
	"sync"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/registry"
	"github.com/Super-StarX/INIValidator/internal/validator"
)

// Stats summarises one run.
type Stats struct {
	Sections    int
	Visited     int
	Unreachable int
}

// run is the per-target state. It implements schema.Env.
type run struct {
	ctx        context.Context
	sink       diag.Sink
	dispatcher *validator.Dispatcher
	fileType   string
	progress   Progress

	mu          sync.Mutex
	visited     map[*ini.Section]bool
	unreachable int
}

func newRun(ctx context.Context, sink diag.Sink, d *validator.Dispatcher, fileType string, p Progress) *run {
	return &run{
		ctx:        ctx,
		sink:       sink,
		dispatcher: d,
		fileType:   fileType,
		progress:   p,
		visited:    make(map[*ini.Section]bool),
	}
}

// Visit is the scan-once guard: it marks sec and reports whether this call
// was the first.
func (r *run) Visit(sec *ini.Section) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visited[sec] {
		return false
	}
	r.visited[sec] = true
	if r.progress != nil {
		r.progress.Step()
	}
	return true
}

func (r *run) Check(sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic {
	return r.dispatcher.Check(r, sec, key, v, typeName)
}

func (r *run) Report(d diag.Diagnostic) { r.sink.Report(d) }

func (r *run) FileType() string { return r.fileType }

func (r *run) cancelled() bool {
	return r.ctx != nil && r.ctx.Err() != nil
}

func (r *run) start(phase string, total int) {
	if r.progress != nil {
		r.progress.Start(phase, total)
	}
}

func (r *run) globals(reg *registry.Registry) {
	r.start("globals", len(reg.Globals))
	target := r.dispatcher.Target
	for _, dict := range reg.Globals {
		if r.cancelled() {
			return
		}
		sec, ok := target.Section(dict.Name)
		if !ok {
			r.Report(diag.New(diag.UnusedGlobal, dict.Name).In(dict.Name, "", ""))
			continue
		}
		dict.ValidateSection(r, sec)
	}
}

func (r *run) registries(reg *registry.Registry) {
	target := r.dispatcher.Target
	r.start("registries", target.Len())
	for _, e := range reg.Entries {
		if r.cancelled() {
			return
		}
		dict := reg.Sections[e.Type]

		for _, item := range e.PresetItems {
			sec, ok := target.Section(item)
			if !ok {
				if e.CheckExist {
					r.Report(diag.New(diag.SectionExist, item, e.Name).In(e.Name, "", item))
				}
				continue
			}
			dict.ValidateSection(r, sec)
		}

		list, ok := target.Section(e.Name)
		if !ok {
			if len(e.PresetItems) == 0 {
				r.Report(diag.New(diag.UnusedRegistry, e.Name).In(e.Name, "", ""))
			}
			continue
		}
		r.Visit(list)

		for _, key := range list.Keys() {
			v, _ := list.Get(key)
			name := v.Text
			if name == "" {
				name = key
			}
			sec, ok := target.Section(name)
			if !ok {
				if e.CheckExist {
					r.Report(diag.New(diag.SectionExist, name, e.Name).
						AtPos(v.Pos()).
						In(e.Name, key, name))
				}
				continue
			}
			dict.ValidateSection(r, sec)
		}
	}
}

func (r *run) sweep(target *ini.Document) {
	r.start("unreachable", target.Len())
	for _, sec := range target.Sections() {
		if sec.Name == ini.IncludeSection {
			continue
		}
		r.mu.Lock()
		seen := r.visited[sec]
		r.mu.Unlock()
		if seen {
			continue
		}
		r.unreachable++
		r.Report(diag.New(diag.UnreachableSection, sec.Name).
			AtPos(sec.Pos()).
			In(sec.Name, "", ""))
	}
}

func (r *run) stats(target *ini.Document) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Sections: target.Len(), Visited: len(r.visited), Unreachable: r.unreachable}
}
