package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess            = 0   // Indicates successful execution.
	ExitErrorGeneric       = 1   // Indicates a generic error.
	ExitErrorTimeout       = 2   // Indicates the run timed out.
	ExitErrorCollision     = 3   // Indicates collisions were found and the caller asked to fail on them.
	ExitErrorConfig        = 4   // Indicates a configuration error.
	ExitErrorProbeFailures = 5   // Indicates the report carries per-input probe failures.
	ExitErrorCanceled      = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as an invalid input
// space size or worker count. It indicates that the run cannot start.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// OracleProtocolError reports oracle output that does not carry a hash token.
// The oracle is expected to print at least two whitespace-separated tokens,
// the second one being the hash value.
type OracleProtocolError struct {
	// Input is the probe input that produced the malformed output.
	Input string
	// Output is the trimmed standard output of the oracle.
	Output string
}

// Error returns a formatted message describing the malformed output.
func (e OracleProtocolError) Error() string {
	out := e.Output
	if len(out) > 64 {
		out = out[:64] + "..."
	}
	return fmt.Sprintf("oracle protocol error for input %q: expected at least 2 tokens, got %q", e.Input, out)
}

// OracleProcessError reports a failure to run the oracle process: it could not
// be started, it exited with a non-zero status, or it exceeded its timeout.
type OracleProcessError struct {
	// Input is the probe input passed to the oracle.
	Input string
	// ExitCode is the process exit status, or -1 when the process never
	// exited normally.
	ExitCode int
	// Stderr holds the first bytes the process wrote to standard error.
	Stderr string
	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted message describing the process failure.
func (e OracleProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "oracle process error for input %q", e.Input)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, ": %s", strings.TrimSpace(e.Stderr))
	}
	return b.String()
}

// Unwrap returns the underlying cause, allowing errors.Is and errors.As to
// inspect it.
func (e OracleProcessError) Unwrap() error { return e.Cause }

// TimeoutError represents an operation that exceeded its time limit. It
// captures the operation name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// IsOracleError reports whether err carries an OracleProtocolError or an
// OracleProcessError anywhere in its chain.
func IsOracleError(err error) bool {
	var protoErr OracleProtocolError
	var procErr OracleProcessError
	return errors.As(err, &protoErr) || errors.As(err, &procErr)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps a run error to the process exit code.
func ExitCodeFor(err error) int {
	var cfgErr ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}

// HandleRunError writes a human-readable description of a failed run to out
// and returns the matching exit code.
//
// Parameters:
//   - err: The error returned by the run. A nil error yields ExitSuccess.
//   - duration: How long the run lasted before failing.
//   - out: The writer receiving the message.
//
// Returns:
//   - int: The exit code for the process.
func HandleRunError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return ExitSuccess
	}
	code := ExitCodeFor(err)
	elapsed := ""
	if duration > 0 {
		elapsed = fmt.Sprintf(" after %s", duration.Round(time.Millisecond))
	}
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The run exceeded its time limit%s.\n", elapsed)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "Status: Canceled%s.\n", elapsed)
	case ExitErrorConfig:
		fmt.Fprintf(out, "Configuration error: %v\n", err)
	default:
		fmt.Fprintf(out, "Status: Failure%s. %v\n", elapsed, err)
	}
	return code
}
