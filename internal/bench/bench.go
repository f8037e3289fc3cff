// Package bench measures hash oracle latency as a function of input length.
// It probes the same random input repeatedly and reports the mean, fastest
// and slowest invocation per length. It performs no collision detection.
package bench

import (
	"context"
	"time"

	"pgregory.net/rand"

	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/logging"
	"github.com/agbru/hashprobe/internal/oracle"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Config controls a benchmark run.
type Config struct {
	// Lengths are the input lengths to measure, in order.
	Lengths []int
	// Trials is the number of sequential probes per length.
	Trials int
	// Seed seeds input generation; zero picks a random seed.
	Seed   uint64
	Logger logging.Logger
}

// Result summarizes the trials of one input length. Failed probes are timed
// like successful ones and counted in Failures.
type Result struct {
	Length    int           `json:"length"`
	Trials    int           `json:"trials"`
	Failures  int           `json:"failures"`
	Total     time.Duration `json:"total_ns"`
	Average   time.Duration `json:"average_ns"`
	Fastest   time.Duration `json:"fastest_ns"`
	Slowest   time.Duration `json:"slowest_ns"`
	LastError string        `json:"last_error,omitempty"`
}

// RandomString returns n characters drawn uniformly from [a-zA-Z0-9].
func RandomString(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

// Run measures every configured length in order and calls onResult (when
// non-nil) as soon as a length completes. It stops early only when ctx is
// done.
func Run(ctx context.Context, o oracle.Oracle, cfg Config, onResult func(Result)) ([]Result, error) {
	if cfg.Trials <= 0 {
		return nil, apperrors.NewConfigError("benchmark trials must be positive, got %d", cfg.Trials)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	var r *rand.Rand
	if cfg.Seed != 0 {
		r = rand.New(cfg.Seed)
	} else {
		r = rand.New()
	}

	results := make([]Result, 0, len(cfg.Lengths))
	for _, length := range cfg.Lengths {
		res, err := measure(ctx, o, RandomString(r, length), cfg.Trials)
		if err != nil {
			return results, err
		}
		res.Length = length
		logger.Debug("benchmark length done",
			logging.Int("length", length),
			logging.Duration("average", res.Average),
			logging.Int("failures", res.Failures),
		)
		results = append(results, res)
		if onResult != nil {
			onResult(res)
		}
	}
	return results, nil
}

func measure(ctx context.Context, o oracle.Oracle, input string, trials int) (Result, error) {
	res := Result{Trials: trials}
	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := time.Now()
		_, err := o.Probe(ctx, input)
		d := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failures++
			res.LastError = err.Error()
		}
		res.Total += d
		if i == 0 || d < res.Fastest {
			res.Fastest = d
		}
		if d > res.Slowest {
			res.Slowest = d
		}
	}
	res.Average = res.Total / time.Duration(trials)
	return res, nil
}
