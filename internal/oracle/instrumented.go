package oracle

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/agbru/hashprobe/internal/errors"
)

// Probe outcomes reported to a ProbeRecorder.
const (
	OutcomeOK            = "ok"
	OutcomeProtocolError = "protocol_error"
	OutcomeProcessError  = "process_error"
	OutcomeTimeout       = "timeout"
	OutcomeCanceled      = "canceled"
	OutcomeError         = "error"
)

// ProbeRecorder receives one observation per probe.
type ProbeRecorder interface {
	ObserveProbe(outcome string, d time.Duration)
}

// Instrumented wraps an Oracle and reports every probe to a ProbeRecorder.
type Instrumented struct {
	Oracle
	Recorder ProbeRecorder
}

// Probe delegates to the wrapped oracle and records the outcome and latency.
func (i Instrumented) Probe(ctx context.Context, input string) (string, error) {
	start := time.Now()
	hash, err := i.Oracle.Probe(ctx, input)
	if i.Recorder != nil {
		i.Recorder.ObserveProbe(Outcome(err), time.Since(start))
	}
	return hash, err
}

// Outcome classifies a probe error into one of the Outcome constants.
func Outcome(err error) string {
	var protoErr apperrors.OracleProtocolError
	var procErr apperrors.OracleProcessError
	var timeoutErr apperrors.TimeoutError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &protoErr):
		return OutcomeProtocolError
	case errors.As(err, &timeoutErr):
		return OutcomeTimeout
	case errors.As(err, &procErr):
		return OutcomeProcessError
	case apperrors.IsContextError(err):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
