package diag

import (
	"fmt"
	"strings"
)

// Severity ranks a diagnostic.
type Severity int

const (
	// SeverityOff is only meaningful in a Policy: it suppresses a code.
	SeverityOff Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a level name as used in flags and settings files.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "never":
		return SeverityOff, nil
	case "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityOff, fmt.Errorf("unknown severity %q: must be 'off', 'info', 'warning' or 'error'", s)
	}
}

// Diagnostic is a single structured event. Line and FileIndex are -1 when
// the event has no source location (for example an unused registry).
// File is the display name; Path is the file as it was opened.
type Diagnostic struct {
	Severity  Severity
	Code      Code
	File      string
	Path      string
	FileIndex int
	Line      int
	Section   string
	Key       string
	Value     string
	Args      []any
}

// New returns a diagnostic for code with its default severity and no
// location.
func New(code Code, args ...any) Diagnostic {
	return Diagnostic{
		Severity:  code.DefaultSeverity(),
		Code:      code,
		FileIndex: -1,
		Line:      -1,
		Args:      args,
	}
}

// At sets the source location.
func (d Diagnostic) At(file string, fileIndex, line int) Diagnostic {
	d.File = file
	d.FileIndex = fileIndex
	d.Line = line
	return d
}

// Position is a source location. FileIndex is only unique within the
// document that loaded the file, so Path tells documents apart.
type Position struct {
	Path      string
	File      string
	FileIndex int
	Line      int
}

// AtPos sets the source location from p.
func (d Diagnostic) AtPos(p Position) Diagnostic {
	d = d.At(p.File, p.FileIndex, p.Line)
	d.Path = p.Path
	return d
}

// In sets the section, key and value the diagnostic refers to.
func (d Diagnostic) In(section, key, value string) Diagnostic {
	d.Section = section
	d.Key = key
	d.Value = value
	return d
}

// WithSeverity overrides the default severity.
func (d Diagnostic) WithSeverity(s Severity) Diagnostic {
	d.Severity = s
	return d
}

// HasLocation reports whether the diagnostic points at a source line.
func (d Diagnostic) HasLocation() bool {
	return d.Line >= 0
}

// Sink receives diagnostics. Implementations must not block the caller for
// long; validation runs on a single goroutine and feeds the sink directly.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d Diagnostic)

// Report implements Sink.
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})
