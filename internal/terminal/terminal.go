// Package terminal provides the interactive pieces pawgrate needs from the
// user's terminal: reading a password without echo and sizing output.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptySecret is returned when the user submits an empty password.
var ErrEmptySecret = errors.New("empty password")

// Width returns the width of stdout, or 80 when it is not a terminal.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PromptSecret writes prompt to w and reads one line from in. When in is a
// terminal, echo is disabled while the user types; otherwise a plain line is
// read so the password can be piped in.
func PromptSecret(w io.Writer, in *os.File, prompt string) (string, error) {
	fmt.Fprint(w, prompt)

	var secret string
	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		// The newline typed by the user is not echoed either.
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		secret = string(b)
	} else {
		line, err := readLine(in)
		if err != nil {
			return "", err
		}
		secret = line
	}

	if secret == "" {
		return "", ErrEmptySecret
	}
	return secret, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrEmptySecret
		}
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
