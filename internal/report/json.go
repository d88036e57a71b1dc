package report

import (
	"encoding/json"
	"io"

	"github.com/Super-StarX/INIValidator/internal/diag"
)

// JSONRenderer writes the report as a single JSON document.
type JSONRenderer struct {
	Indent string
}

type jsonDiagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line,omitempty"`
	Section  string `json:"section,omitempty"`
	Key      string `json:"key,omitempty"`
	Value    string `json:"value,omitempty"`
}

type jsonReport struct {
	RunID       string           `json:"run_id,omitempty"`
	Schema      string           `json:"schema,omitempty"`
	Targets     []string         `json:"targets,omitempty"`
	Summary     jsonTotals       `json:"summary"`
	Files       []FileSummary    `json:"files"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonTotals struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Render implements Renderer.
func (j *JSONRenderer) Render(w io.Writer, rep Report) error {
	counts := diag.Counts(rep.Diagnostics)
	out := jsonReport{
		RunID:   rep.RunID,
		Schema:  rep.Schema,
		Targets: rep.Targets,
		Summary: jsonTotals{
			Errors:   counts[diag.SeverityError],
			Warnings: counts[diag.SeverityWarning],
			Info:     counts[diag.SeverityInfo],
		},
		Files:       rep.Summaries(),
		Diagnostics: make([]jsonDiagnostic, 0, len(rep.Diagnostics)),
	}
	for _, d := range rep.Sorted() {
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  Message(d),
			File:     d.File,
			Path:     d.Path,
			Section:  d.Section,
			Key:      d.Key,
			Value:    d.Value,
		}
		if d.HasLocation() {
			jd.Line = d.Line
		}
		out.Diagnostics = append(out.Diagnostics, jd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", j.Indent)
	return enc.Encode(out)
}
