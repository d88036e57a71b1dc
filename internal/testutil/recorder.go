package testutil

import (
	"sync"

	"github.com/Super-StarX/INIValidator/internal/diag"
)

// Recorder is a diag.Sink that keeps every diagnostic it receives.
type Recorder struct {
	mu    sync.Mutex
	items []diag.Diagnostic
}

// Report implements diag.Sink.
func (r *Recorder) Report(d diag.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, d)
}

// All returns a copy of the recorded diagnostics.
func (r *Recorder) All() []diag.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]diag.Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Codes returns the code of every recorded diagnostic in order.
func (r *Recorder) Codes() []diag.Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]diag.Code, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d.Code)
	}
	return out
}

// ByCode returns the recorded diagnostics with the given code.
func (r *Recorder) ByCode(code diag.Code) []diag.Diagnostic {
	return diag.Filter(r.All(), code)
}
