package app

import (
	"io"
	"os"

	"golang.org/x/term"
)

// useColor decides whether the text report written to w is styled.
func (a *App) useColor(w io.Writer) bool {
	switch a.config.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
