package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/Super-StarX/INIValidator/internal/diag"
)

// Report is one validation run ready for rendering. Files lists the paths
// of every loaded file in load order and decides the file order of the
// output.
type Report struct {
	RunID       string
	Schema      string
	Targets     []string
	Files       []string
	Diagnostics []diag.Diagnostic
}

// Sorted returns the diagnostics ordered by file and line.
func (r Report) Sorted() []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(r.Diagnostics))
	copy(out, r.Diagnostics)
	diag.Sort(out, r.Files...)
	return out
}

// FileSummary counts diagnostics of one file by severity.
type FileSummary struct {
	File     string `json:"file"`
	Path     string `json:"path,omitempty"`
	Info     int    `json:"info"`
	Warnings int    `json:"warnings"`
	Errors   int    `json:"errors"`
}

// Summaries returns one summary per file, ordered like Sorted. Files are
// told apart by path, so two files sharing a name get separate rows.
// Diagnostics without a file are grouped under "".
func (r Report) Summaries() []FileSummary {
	type entry struct {
		rank int
		sum  FileSummary
	}
	rank := diag.FileRank(r.Files)
	byFile := make(map[string]*entry)
	for _, d := range r.Diagnostics {
		key := d.Path
		if key == "" {
			key = d.File
		}
		e, ok := byFile[key]
		if !ok {
			e = &entry{rank: rank(d), sum: FileSummary{File: d.File, Path: d.Path}}
			byFile[key] = e
		}
		switch d.Severity {
		case diag.SeverityInfo:
			e.sum.Info++
		case diag.SeverityWarning:
			e.sum.Warnings++
		case diag.SeverityError:
			e.sum.Errors++
		}
	}
	entries := make([]*entry, 0, len(byFile))
	for _, e := range byFile {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].sum, entries[j].sum
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.File < b.File
	})
	out := make([]FileSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.sum)
	}
	return out
}

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

// Formats accepted by NewRenderer.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewRenderer returns the renderer for format. color only affects text.
func NewRenderer(format string, color bool) (Renderer, error) {
	switch format {
	case FormatText, "":
		return &TextRenderer{Color: color}, nil
	case FormatJSON:
		return &JSONRenderer{Indent: "  "}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q: must be 'text' or 'json'", format)
	}
}
