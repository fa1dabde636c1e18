// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure pawgrate surfaces belongs to exactly one Kind, so callers can tell
// a bad configuration apart from a missing ogr2ogr binary or a failed import
// without matching on message text.
//
// Each Kind maps to a process exit code. ImportFailed errors carry the exit code
// of the external tool instead, so a wrapper script sees what ogr2ogr returned.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConfigError indicates a missing, unreadable or malformed configuration.
	ConfigError Kind = "config_error"
	// ToolMissing indicates ogr2ogr could not be found on PATH.
	ToolMissing Kind = "tool_missing"
	// ImportFailed indicates ogr2ogr ran and did not exit cleanly.
	ImportFailed Kind = "import_failed"
	// PreflightFailed indicates the destination database check failed.
	PreflightFailed Kind = "preflight_failed"
	// SecretUnavailable indicates no database password could be obtained.
	SecretUnavailable Kind = "secret_unavailable"
)

// Fixed exit codes for failures that do not originate from ogr2ogr.
const (
	ExitGeneric     = 1
	ExitConfig      = 2
	ExitToolMissing = 3
	ExitPreflight   = 4
)

// E wraps an error with kind and human-friendly message.
// Detail holds multi-line diagnostic text (ogr2ogr stderr) that is printed
// after the message.
type E struct {
	Kind     Kind
	Message  string
	Err      error
	ExitCode int
	Detail   string
}

func (e *E) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Detail != "" {
		msg += "\n\n" + e.Detail
	}
	return msg
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, a ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// Failed builds an ImportFailed error for a tool that exited with code.
func Failed(code int, msg, stderr string) *E {
	return &E{Kind: ImportFailed, Message: msg, ExitCode: code, Detail: stderr}
}

// KindOf reports the Kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCodeOf maps err to the process exit code pawgrate should return.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var e *E
	if !stderrors.As(err, &e) {
		return ExitGeneric
	}
	switch e.Kind {
	case ConfigError:
		return ExitConfig
	case ToolMissing:
		return ExitToolMissing
	case PreflightFailed:
		return ExitPreflight
	case ImportFailed:
		if e.ExitCode > 0 {
			return e.ExitCode
		}
	}
	return ExitGeneric
}
