package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var quiet, verbose bytes.Buffer

	NewLogger(&quiet, false).Debug("resolved tool", NewLogger(&quiet, false).Args("path", "/usr/bin/ogr2ogr"))
	if quiet.Len() != 0 {
		t.Fatalf("debug output written without verbose: %q", quiet.String())
	}

	l := NewLogger(&verbose, true)
	l.Debug("resolved tool", l.Args("path", "/usr/bin/ogr2ogr"))
	if !strings.Contains(verbose.String(), "resolved tool") {
		t.Fatalf("verbose logger dropped debug entry: %q", verbose.String())
	}
}

func TestPresentError(t *testing.T) {
	if got := PresentError("ctx", nil); got != "" {
		t.Fatalf("PresentError(nil) = %q", got)
	}
	err := errString("connect failed: password=hunter2")
	if got := PresentError("preflight", err); got != "preflight: connect failed: password=***" {
		t.Fatalf("PresentError() = %q", got)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
