package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/Super-StarX/INIValidator/internal/diag"
)

// TextRenderer prints one line per diagnostic followed by a summary table.
type TextRenderer struct {
	// Color enables ANSI styling. Without it the output is plain text.
	Color bool
}

type textStyles struct {
	info, warning, errs, location, section, muted lipgloss.Style
}

func newTextStyles(r *lipgloss.Renderer) textStyles {
	return textStyles{
		info:     r.NewStyle().Foreground(lipgloss.Color("12")).Width(7),
		warning:  r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true).Width(7),
		errs:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Width(7),
		location: r.NewStyle().Foreground(lipgloss.Color("8")),
		section:  r.NewStyle().Bold(true),
		muted:    r.NewStyle().Faint(true),
	}
}

func (s textStyles) severity(sev diag.Severity) string {
	switch sev {
	case diag.SeverityError:
		return s.errs.Render(sev.String())
	case diag.SeverityWarning:
		return s.warning.Render(sev.String())
	default:
		return s.info.Render(sev.String())
	}
}

// Render implements Renderer.
func (t *TextRenderer) Render(w io.Writer, rep Report) error {
	profile := termenv.Ascii
	if t.Color {
		profile = termenv.ANSI256
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	st := newTextStyles(r)

	var b strings.Builder
	for _, d := range rep.Sorted() {
		b.WriteString(st.severity(d.Severity))
		b.WriteByte(' ')
		if loc := Location(d); loc != "" {
			b.WriteString(st.location.Render(loc))
			b.WriteByte(' ')
		}
		if d.Section != "" {
			b.WriteString(st.section.Render("[" + d.Section + "]"))
			if d.Key != "" {
				b.WriteString(" " + d.Key)
			}
			b.WriteString(": ")
		}
		b.WriteString(Message(d))
		b.WriteByte('\n')
	}

	counts := diag.Counts(rep.Diagnostics)
	if len(rep.Diagnostics) == 0 {
		b.WriteString(st.muted.Render("No problems found."))
		b.WriteByte('\n')
	} else {
		b.WriteByte('\n')
		b.WriteString(summaryTable(r, rep.Summaries()))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%d errors, %d warnings, %d info\n",
			counts[diag.SeverityError], counts[diag.SeverityWarning], counts[diag.SeverityInfo])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func summaryTable(r *lipgloss.Renderer, sums []FileSummary) string {
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Faint(true)).
		Headers("File", "Errors", "Warnings", "Info").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	names := make(map[string]int, len(sums))
	for _, s := range sums {
		names[s.File]++
	}
	for _, s := range sums {
		name := s.File
		switch {
		case name == "":
			name = "(no file)"
		case names[name] > 1 && s.Path != "":
			name = s.Path
		}
		tbl.Row(name, strconv.Itoa(s.Errors), strconv.Itoa(s.Warnings), strconv.Itoa(s.Info))
	}
	return tbl.String()
}
