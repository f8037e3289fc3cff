package oracle

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/logging"
)

const (
	// waitDelay bounds how long Wait keeps draining pipes after the process
	// group was killed.
	waitDelay = 2 * time.Second
	// maxStderr is the number of stderr bytes kept for error reports.
	maxStderr = 512
)

// Exec runs an external executable as `<Path> <input>` for every probe.
type Exec struct {
	// Path is the executable to run.
	Path string
	// Env is appended to the parent environment of the child.
	Env []string
	// Timeout bounds a single invocation. Zero disables the limit.
	Timeout time.Duration
	// IgnoreExitCode accepts output from processes exiting non-zero.
	IgnoreExitCode bool
	// Logger receives probe diagnostics. Nil discards them.
	Logger logging.Logger
}

var _ Oracle = (*Exec)(nil)

// Name returns the executable path.
func (e *Exec) Name() string { return e.Path }

// Probe starts the oracle with input as its sole argument, waits for it to
// exit and returns the second whitespace-separated token of its output.
//
// The child runs in its own process group, which is killed when the probe
// timeout elapses or ctx is canceled. A canceled parent context is returned
// as-is so callers can tell an aborted run from a failed probe.
func (e *Exec) Probe(ctx context.Context, input string) (string, error) {
	parent := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.Path, input)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	killProcessGroupOnCancel(cmd)

	runErr := cmd.Run()

	if err := parent.Err(); err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", e.fail(input, apperrors.OracleProcessError{
			Input:    input,
			ExitCode: -1,
			Stderr:   truncate(stderr.String()),
			Cause:    apperrors.TimeoutError{Operation: "oracle probe", Limit: e.Timeout},
		})
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return "", e.fail(input, apperrors.OracleProcessError{Input: input, ExitCode: -1, Cause: runErr})
		}
		if !e.IgnoreExitCode {
			return "", e.fail(input, apperrors.OracleProcessError{
				Input:    input,
				ExitCode: exitErr.ExitCode(),
				Stderr:   truncate(stderr.String()),
				Cause:    runErr,
			})
		}
	}

	hash, err := ParseOutput(input, stdout.String())
	if err != nil {
		return "", e.fail(input, err)
	}
	return hash, nil
}

func (e *Exec) fail(input string, err error) error {
	if e.Logger != nil {
		e.Logger.Debug("oracle probe failed", logging.String("oracle", e.Path), logging.String("input", input), logging.Err(err))
	}
	return err
}

func truncate(s string) string {
	if len(s) > maxStderr {
		return s[:maxStderr]
	}
	return s
}
