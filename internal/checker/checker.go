// Package checker walks a target document the way a schema describes it:
// globals by name, then every registry and the sections it registers,
// recursively through section references, and finally reports whatever
// was never reached.
package checker

import (
	"context"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/registry"
	"github.com/Super-StarX/INIValidator/internal/validator"
)

// Progress receives phase and step notifications during a run.
type Progress interface {
	Start(phase string, total int)
	Step()
}

// Option configures a Checker.
type Option func(*Checker)

// WithMaxStringLength overrides the string primitive's length limit.
func WithMaxStringLength(n int) Option {
	return func(c *Checker) { c.maxStringLength = n }
}

// WithOptionalReferenceTypes lists section types whose references may name
// sections that do not exist.
func WithOptionalReferenceTypes(types ...string) Option {
	return func(c *Checker) {
		for _, t := range types {
			c.optional[t] = true
		}
	}
}

// WithFileType sets the file-scope tag of target documents.
func WithFileType(fileType string) Option {
	return func(c *Checker) { c.fileType = fileType }
}

// WithExternal installs the hook for type names no built-in strategy knows.
func WithExternal(ext validator.External) Option {
	return func(c *Checker) { c.external = ext }
}

// WithProgress reports run progress to p.
func WithProgress(p Progress) Option {
	return func(c *Checker) { c.progress = p }
}

// Checker validates target documents against one loaded schema. It is safe
// to Run several targets with the same Checker, one after another or
// concurrently; each run keeps its own scan state.
type Checker struct {
	registry        *registry.Registry
	maxStringLength int
	optional        map[string]bool
	fileType        string
	external        validator.External
	progress        Progress
}

// New loads the schema tables from schemaDoc. Schema problems are reported
// to sink.
func New(ctx context.Context, schemaDoc *ini.Document, sink diag.Sink, opts ...Option) *Checker {
	c := &Checker{optional: make(map[string]bool)}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = registry.New()
	c.registry.Load(ctx, schemaDoc, sink)
	c.registry.Validate(ctx, sink)
	return c
}

// Registry exposes the loaded schema tables.
func (c *Checker) Registry() *registry.Registry { return c.registry }

// Run validates target and reports every finding to sink.
func (c *Checker) Run(ctx context.Context, target *ini.Document, sink diag.Sink) Stats {
	logger := ctxlog.FromContext(ctx)
	if sink == nil {
		sink = diag.Discard
	}
	fileType := c.fileType
	if fileType == "" {
		fileType = target.FileType
	}

	d := c.registry.Dispatcher()
	d.Target = target
	d.Optional = c.optional
	d.External = c.external
	d.MaxStringLength = c.maxStringLength
	d.Logger = logger

	r := newRun(ctx, sink, d, fileType, c.progress)
	r.globals(c.registry)
	r.registries(c.registry)
	r.sweep(target)

	stats := r.stats(target)
	logger.Debug("Validation walk finished.", "sections", stats.Sections, "visited", stats.Visited, "unreachable", stats.Unreachable)
	return stats
}

// Run is a convenience wrapper that validates target against schemaDoc and
// returns every diagnostic in report order.
func Run(ctx context.Context, schemaDoc, target *ini.Document, opts ...Option) []diag.Diagnostic {
	collector := diag.NewCollector(nil)
	New(ctx, schemaDoc, collector, opts...).Run(ctx, target, collector)
	return collector.Diagnostics()
}
