package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"pawgrate/cli/internal/config"
	perrors "pawgrate/cli/internal/errors"
	"pawgrate/cli/internal/logging"

	"github.com/pterm/pterm"
)

// PasswordEnv is the variable ogr2ogr (libpq) reads the password from.
const PasswordEnv = "PGPASSWORD"

// waitDelay bounds how long Wait keeps draining pipes after the child was
// killed, in case a grandchild still holds them open.
const waitDelay = 5 * time.Second

// SecretSource supplies the database password for an import.
type SecretSource interface {
	Password(ctx context.Context, cfg config.ImportConfig) (string, error)
}

// SecretFunc adapts a function to SecretSource.
type SecretFunc func(ctx context.Context, cfg config.ImportConfig) (string, error)

func (f SecretFunc) Password(ctx context.Context, cfg config.ImportConfig) (string, error) {
	return f(ctx, cfg)
}

// Outcome describes a completed ogr2ogr process. Stdout and Stderr hold at
// most the last maxCapture bytes of each stream.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Result is what a single Run produced. Outcome is nil for dry runs and for
// runs that failed before ogr2ogr was spawned.
type Result struct {
	Command []string
	Outcome *Outcome
}

// Runner executes imports. The zero value is usable: it never asks for a
// password and shows no progress.
type Runner struct {
	// Secrets is consulted when the config asks for a password.
	Secrets SecretSource
	// Progress, if set, is started once ogr2ogr is running. The returned
	// function stops it and must return only once the indicator is gone.
	Progress func() (stop func())
	// Preflight, if set, runs before ogr2ogr for configs with
	// CheckConnection. It receives the password the child will get ("" when
	// none was requested). An error aborts the run without spawning.
	Preflight func(ctx context.Context, cfg config.ImportConfig, password string) error
	// Started, if set, is called with the command right before it is spawned.
	Started func(command []string)
	Log     *pterm.Logger
}

// Run performs one import: verify the tool, build the command, and unless
// cfg.DryRun is set, run ogr2ogr to completion. A non-zero exit is reported
// as ImportFailed together with the Result, so callers can still echo the
// command and captured output.
func (r *Runner) Run(ctx context.Context, cfg config.ImportConfig) (Result, error) {
	log := r.logger()

	var toolPath string
	if !cfg.DryRun {
		path, err := VerifyToolAvailable()
		if err != nil {
			return Result{}, err
		}
		toolPath = path
		log.Debug("resolved "+ToolName, log.Args("path", toolPath))
	}

	command, err := BuildCommand(cfg)
	if err != nil {
		return Result{}, err
	}
	res := Result{Command: command}
	if cfg.DryRun {
		return res, nil
	}

	password, err := r.password(ctx, cfg)
	if err != nil {
		return res, err
	}
	if cfg.CheckConnection && r.Preflight != nil {
		if err := r.Preflight(ctx, cfg, password); err != nil {
			return res, err
		}
	}

	env := os.Environ()
	if password != "" {
		env = append(env, PasswordEnv+"="+password)
	}
	if r.Started != nil {
		r.Started(command)
	}

	log.Debug("starting "+ToolName, log.Args("command", logging.Mask(Quote(command)), "timeout", cfg.Timeout))
	out, err := r.execute(ctx, toolPath, command, env, cfg.Timeout)
	res.Outcome = out
	if out != nil {
		log.Debug(ToolName+" exited", log.Args("code", out.ExitCode, "duration", out.Duration.Round(time.Millisecond)))
	}
	return res, err
}

// password obtains the password when cfg asks for one. It only ever ends up
// in the child's environment; os.Environ is never modified.
func (r *Runner) password(ctx context.Context, cfg config.ImportConfig) (string, error) {
	if !cfg.PromptPassword && !cfg.UseKeychain {
		return "", nil
	}
	if r.Secrets == nil {
		return "", perrors.New(perrors.SecretUnavailable, "a password was requested but no password source is configured")
	}
	password, err := r.Secrets.Password(ctx, cfg)
	if err != nil {
		if perrors.KindOf(err) != "" {
			return "", err
		}
		return "", perrors.Wrap(perrors.SecretUnavailable, "could not obtain database password", err)
	}
	if password == "" {
		return "", perrors.New(perrors.SecretUnavailable, "the password source returned an empty password")
	}
	return password, nil
}

func (r *Runner) execute(ctx context.Context, toolPath string, command, env []string, timeout time.Duration) (*Outcome, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, toolPath)
	cmd.Args = command
	cmd.Env = env
	cmd.WaitDelay = waitDelay
	stdout, stderr := newTailBuffer(maxCapture), newTailBuffer(maxCapture)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, perrors.Wrap(perrors.ImportFailed, "could not start "+ToolName, err)
	}

	stop := func() {}
	if r.Progress != nil {
		stop = r.Progress()
	}
	waitErr := cmd.Wait()
	stop()

	out := &Outcome{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	detail := strings.TrimSpace(out.Stderr)

	if waitErr != nil && ctx.Err() != nil {
		reason := "was cancelled"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "exceeded its deadline"
			if timeout > 0 {
				reason = fmt.Sprintf("timed out after %s", timeout)
			}
		}
		return out, perrors.Failed(out.ExitCode, fmt.Sprintf("%s %s and was stopped", ToolName, reason), detail)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return out, perrors.Wrap(perrors.ImportFailed, ToolName+" did not complete", waitErr)
		}
	}
	if out.ExitCode != 0 {
		return out, perrors.Failed(out.ExitCode, fmt.Sprintf("%s failed with return code %d", ToolName, out.ExitCode), detail)
	}
	return out, nil
}

func (r *Runner) logger() *pterm.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logging.Discard()
}
