package registry

import (
	"context"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/diag"
)

// Validate checks that every registry entry names a known section type.
// Entries that do not are reported as TypeNotExist and removed, so the rest
// of the run skips them.
func (r *Registry) Validate(ctx context.Context, sink diag.Sink) {
	logger := ctxlog.FromContext(ctx)
	if sink == nil {
		sink = diag.Discard
	}

	kept := r.Entries[:0]
	for _, e := range r.Entries {
		if _, ok := r.Sections[e.Type]; !ok {
			sink.Report(diag.New(diag.TypeNotExist, e.Type).
				AtPos(diag.Position{Path: e.Path, File: e.File, FileIndex: e.FileIndex, Line: e.Line}).
				In(RegistriesSection, e.Name, e.Type))
			logger.Debug("Skipping registry with unknown type.", "registry", e.Name, "type", e.Type)
			continue
		}
		kept = append(kept, e)
	}
	r.Entries = kept
}
