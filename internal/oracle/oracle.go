//go:generate mockgen -source=oracle.go -destination=mocks/mock_oracle.go -package=mocks

// Package oracle invokes the hash function under test. The default
// implementation runs an external executable once per input; builtin
// implementations hash in-process for smoke tests and calibration.
package oracle

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/logging"
)

// BuiltinPrefix selects an in-process oracle in an oracle spec string.
const BuiltinPrefix = "builtin:"

// Oracle hashes one input and returns its opaque hash token.
type Oracle interface {
	// Probe returns the hash value for input. Implementations must honor ctx
	// cancellation and return ctx.Err() (possibly wrapped) when it fires.
	Probe(ctx context.Context, input string) (string, error)
	// Name identifies the oracle in logs and reports.
	Name() string
}

// ExecOptions configures an external oracle created through New.
type ExecOptions struct {
	// Timeout bounds every single invocation. Zero disables the limit.
	Timeout time.Duration
	// IgnoreExitCode accepts the output of processes exiting non-zero.
	IgnoreExitCode bool
	// Env is appended to the parent environment of every child process.
	Env []string
	// Logger receives probe diagnostics. Nil discards them.
	Logger logging.Logger
}

// New resolves an oracle spec: "builtin:<algo>[/<bits>]" selects an in-process
// oracle, anything else is the path of an executable.
func New(spec string, opts ExecOptions) (Oracle, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, apperrors.NewConfigError("oracle must not be empty")
	}
	if strings.HasPrefix(spec, BuiltinPrefix) {
		return ParseBuiltin(spec)
	}
	return &Exec{
		Path:           spec,
		Env:            opts.Env,
		Timeout:        opts.Timeout,
		IgnoreExitCode: opts.IgnoreExitCode,
		Logger:         opts.Logger,
	}, nil
}

// ParseOutput extracts the hash token from raw oracle output: the output is
// trimmed, split on whitespace, and the second token is returned.
//
// Parameters:
//   - input: The probe input, used for error reporting.
//   - output: The raw standard output of the oracle.
//
// Returns:
//   - string: The hash value.
//   - error: An apperrors.OracleProtocolError when fewer than two tokens exist.
func ParseOutput(input, output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) < 2 {
		return "", apperrors.OracleProtocolError{Input: input, Output: strings.TrimSpace(output)}
	}
	return fields[1], nil
}
