package logging

import (
	"io"

	"github.com/pterm/pterm"
)

// NewLogger returns the leveled logger used for diagnostic output. Debug
// entries are only written when verbose is set.
func NewLogger(w io.Writer, verbose bool) *pterm.Logger {
	level := pterm.LogLevelInfo
	if verbose {
		level = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(w).
		WithTime(false)
}

// Discard returns a logger that drops everything.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
}
