package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"pawgrate/cli/internal/config"
	perrors "pawgrate/cli/internal/errors"
	"pawgrate/cli/internal/keychain"
	"pawgrate/cli/internal/terminal"
)

const passwordPrompt = "[!] Postgres password "

// passwordSource supplies the database password for an import: prompted when
// the config asks for it, otherwise read from the OS keychain. A prompted
// value is remembered so --save-password can store it afterwards.
type passwordSource struct {
	in       *os.File
	out      io.Writer
	keychain func() (*keychain.Manager, error)

	prompted string
}

func newPasswordSource() *passwordSource {
	return &passwordSource{in: os.Stdin, out: os.Stderr, keychain: keychain.GetManager}
}

func (s *passwordSource) Password(_ context.Context, cfg config.ImportConfig) (string, error) {
	if cfg.PromptPassword {
		pw, err := promptPassword(s.out, s.in)
		if err != nil {
			return "", err
		}
		s.prompted = pw
		return pw, nil
	}

	km, err := s.keychain()
	if err != nil {
		return "", perrors.Wrap(perrors.SecretUnavailable, "secure storage is not available on this system", err)
	}
	key := cfg.SecretKey()
	pw, err := km.LoadPassword(key)
	if errors.Is(err, keychain.ErrNotFound) {
		return "", perrors.Newf(perrors.SecretUnavailable, "no password stored for %s; run 'pawgrate password set' first", key)
	}
	if err != nil {
		return "", perrors.Wrap(perrors.SecretUnavailable, "could not read password for "+key, err)
	}
	return pw, nil
}

func promptPassword(out io.Writer, in *os.File) (string, error) {
	pw, err := terminal.PromptSecret(out, in, passwordPrompt)
	if errors.Is(err, terminal.ErrEmptySecret) {
		return "", perrors.New(perrors.SecretUnavailable, "no password entered")
	}
	if err != nil {
		return "", perrors.Wrap(perrors.SecretUnavailable, "could not read password", err)
	}
	return pw, nil
}
