// Package validator implements the value-checking strategies a schema type
// name can resolve to: built-in primitives, numeric ranges, string limits,
// lists, references to other sections, and an external script hook.
package validator

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/Super-StarX/INIValidator/internal/diag"
	"github.com/Super-StarX/INIValidator/internal/ini"
	"github.com/Super-StarX/INIValidator/internal/schema"
)

// DefaultMaxStringLength is the length limit of the string primitive.
const DefaultMaxStringLength = 512

// Kind is the strategy a type name resolves to.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrimitive
	KindNumber
	KindLimit
	KindList
	KindSection
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNumber:
		return "number"
	case KindLimit:
		return "limit"
	case KindList:
		return "list"
	case KindSection:
		return "section"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// External validates type names no built-in strategy knows. A returned
// severity of diag.SeverityOff means the value passed.
type External interface {
	Supports(typeName string) bool
	Validate(sec *ini.Section, key, value, typeName string) (diag.Severity, string, error)
}

// Dispatcher routes a (value, type name) pair to its strategy.
type Dispatcher struct {
	Numbers  map[string]NumberRule
	Limits   map[string]LimitRule
	Lists    map[string]ListRule
	Sections map[string]*schema.Dict
	// Target is the document section references are resolved in.
	Target *ini.Document
	// Optional lists section types whose references may dangle.
	Optional        map[string]bool
	External        External
	MaxStringLength int
	Logger          *slog.Logger

	mu      sync.Mutex
	unknown map[string]bool
}

// Resolve returns the strategy for typeName. Resolution order is fixed:
// primitives, numbers, limits, lists, sections, then the external hook.
func (d *Dispatcher) Resolve(typeName string) Kind {
	switch {
	case isPrimitive(typeName):
		return KindPrimitive
	case has(d.Numbers, typeName):
		return KindNumber
	case has(d.Limits, typeName):
		return KindLimit
	case has(d.Lists, typeName):
		return KindList
	case has(d.Sections, typeName):
		return KindSection
	case d.External != nil && d.External.Supports(typeName):
		return KindExternal
	default:
		return KindUnknown
	}
}

// Known reports whether typeName resolves to any strategy.
func (d *Dispatcher) Known(typeName string) bool {
	return d.Resolve(typeName) != KindUnknown
}

// Check validates v against typeName and returns the diagnostics raised.
// Diagnostics of recursively validated sections go straight to env.
func (d *Dispatcher) Check(env schema.Env, sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic {
	if v.Text == "" {
		return fail(diag.EmptyValue, sec, key, v, key)
	}

	switch d.Resolve(typeName) {
	case KindPrimitive:
		return d.checkPrimitive(sec, key, v, typeName)
	case KindNumber:
		return d.Numbers[typeName].check(d, env, sec, key, v)
	case KindLimit:
		return d.Limits[typeName].check(sec, key, v)
	case KindList:
		return d.Lists[typeName].check(d, env, sec, key, v)
	case KindSection:
		return d.checkSection(env, sec, key, v, typeName)
	case KindExternal:
		return d.checkExternal(sec, key, v, typeName)
	default:
		d.reportUnknown(env, sec, key, v, typeName)
		return nil
	}
}

func (d *Dispatcher) checkSection(env schema.Env, sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic {
	name := v.Text
	if strings.EqualFold(name, "none") || strings.EqualFold(name, "<none>") {
		return nil
	}
	var target *ini.Section
	if d.Target != nil {
		target, _ = d.Target.Section(name)
	}
	if target == nil {
		if d.Optional[typeName] {
			return nil
		}
		return fail(diag.SectionRefMissing, sec, key, v, name, typeName)
	}
	d.Sections[typeName].ValidateSection(env, target)
	return nil
}

func (d *Dispatcher) checkExternal(sec *ini.Section, key string, v ini.Value, typeName string) []diag.Diagnostic {
	severity, msg, err := d.External.Validate(sec, key, v.Text, typeName)
	if err != nil {
		d.logger().Error("Script validation failed.", "type", typeName, "section", sec.Name, "key", key, "error", err)
		return nil
	}
	if severity == diag.SeverityOff {
		return nil
	}
	return []diag.Diagnostic{
		diag.New(diag.ScriptResult, msg).
			WithSeverity(severity).
			AtPos(v.Pos()).
			In(sec.Name, key, v.Text),
	}
}

// reportUnknown raises TypeNotExist the first time a type name is seen.
func (d *Dispatcher) reportUnknown(env schema.Env, sec *ini.Section, key string, v ini.Value, typeName string) {
	d.mu.Lock()
	if d.unknown == nil {
		d.unknown = make(map[string]bool)
	}
	seen := d.unknown[typeName]
	d.unknown[typeName] = true
	d.mu.Unlock()
	if seen {
		return
	}
	env.Report(diag.New(diag.TypeNotExist, typeName).
		AtPos(v.Pos()).
		In(sec.Name, key, v.Text))
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d *Dispatcher) maxStringLength() int {
	if d.MaxStringLength > 0 {
		return d.MaxStringLength
	}
	return DefaultMaxStringLength
}

func fail(code diag.Code, sec *ini.Section, key string, v ini.Value, args ...any) []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.New(code, args...).
			AtPos(v.Pos()).
			In(sec.Name, key, v.Text),
	}
}

func has[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}
