package diag

import (
	"fmt"
	"sort"
	"sync"
)

// Policy overrides the default severity of individual codes. A code mapped
// to SeverityOff is dropped.
type Policy map[Code]Severity

// ParsePolicy builds a Policy from code/level pairs as found in settings
// files.
func ParsePolicy(levels map[string]string) (Policy, error) {
	p := make(Policy, len(levels))
	for code, level := range levels {
		c := Code(code)
		if !c.Known() {
			return nil, fmt.Errorf("unknown diagnostic code %q", code)
		}
		s, err := ParseSeverity(level)
		if err != nil {
			return nil, fmt.Errorf("diagnostic code %q: %w", code, err)
		}
		p[c] = s
	}
	return p, nil
}

// Apply returns d with the policy applied, and false if d is suppressed.
func (p Policy) Apply(d Diagnostic) (Diagnostic, bool) {
	s, ok := p[d.Code]
	if !ok {
		return d, true
	}
	if s == SeverityOff {
		return d, false
	}
	d.Severity = s
	return d, true
}

// Collector is a thread-safe buffering Sink. Diagnostics are kept in the
// order they were reported.
type Collector struct {
	mu     sync.Mutex
	policy Policy
	items  []Diagnostic
}

// NewCollector creates a Collector that applies policy to every report.
// A nil policy keeps default severities.
func NewCollector(policy Policy) *Collector {
	return &Collector{policy: policy}
}

// Report implements Sink.
func (c *Collector) Report(d Diagnostic) {
	d, keep := c.policy.Apply(d)
	if !keep {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything collected so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Reset drops everything collected so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Counts tallies diagnostics by severity.
func Counts(diags []Diagnostic) map[Severity]int {
	counts := make(map[Severity]int)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}

// Max returns the highest severity in diags, or SeverityOff if empty.
func Max(diags []Diagnostic) Severity {
	max := SeverityOff
	for _, d := range diags {
		if d.Severity > max {
			max = d.Severity
		}
	}
	return max
}

// Sort orders diagnostics by file then line, keeping the report order for
// ties. Diagnostics without a location sort first. When files is given, a
// file's rank is the position of its path in files and paths not listed
// follow in name order. Otherwise files are ranked by file index.
func Sort(diags []Diagnostic, files ...string) {
	rank := FileRank(files)
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return ra < rb
		}
		if a.Path != b.Path && ra == len(files) && len(files) > 0 {
			return a.Path < b.Path
		}
		return a.Line < b.Line
	})
}

// FileRank returns the ordering key Sort uses for a diagnostic's file.
func FileRank(files []string) func(Diagnostic) int {
	index := make(map[string]int, len(files))
	for i, f := range files {
		if _, ok := index[f]; !ok {
			index[f] = i
		}
	}
	return func(d Diagnostic) int {
		if !d.HasLocation() {
			return -1
		}
		if len(files) == 0 {
			return d.FileIndex
		}
		if r, ok := index[d.Path]; ok {
			return r
		}
		return len(files)
	}
}

// Filter returns the diagnostics with the given code.
func Filter(diags []Diagnostic, code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
