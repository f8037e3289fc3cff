package collision

import (
	"context"
	"fmt"
	"time"

	"github.com/agbru/hashprobe/internal/logging"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/partition"
	"github.com/agbru/hashprobe/internal/progress"
)

// Worker hashes every input of one chunk and detects collisions inside it.
// It shares no mutable state with other workers: its ResultSet is private
// until Run returns it inside the WorkerResult.
type Worker struct {
	Index    int
	Chunk    partition.Chunk
	Oracle   oracle.Oracle
	FailFast bool

	// ProgressEvery is the number of inputs between two updates on Progress.
	// Zero selects DefaultProgressEvery.
	ProgressEvery int64
	Progress      chan<- progress.Update

	Recorder CollisionRecorder
	Logger   logging.Logger
}

// Run probes the chunk in ascending order. In fail-fast mode the first probe
// error aborts the worker; otherwise failed inputs are recorded and skipped.
// Cancellation of ctx always aborts with the context error.
func (w *Worker) Run(ctx context.Context) (WorkerResult, error) {
	start := time.Now()
	logger := w.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	every := w.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	total := w.Chunk.Len()
	set := NewResultSet(int(min(total, 1<<16)))
	res := WorkerResult{Chunk: w.Chunk}

	logger.Debug("worker started",
		logging.Int("worker", w.Index),
		logging.String("chunk", w.Chunk.String()),
	)

	for n := w.Chunk.Start; n <= w.Chunk.End; n++ {
		if err := ctx.Err(); err != nil {
			return WorkerResult{}, err
		}
		input := Input(n)
		hash, err := w.Oracle.Probe(ctx, input.String())
		res.Processed++

		switch {
		case err != nil && ctx.Err() != nil:
			return WorkerResult{}, ctx.Err()
		case err != nil && w.FailFast:
			return WorkerResult{}, fmt.Errorf("worker %d: input %d: %w", w.Index, n, err)
		case err != nil:
			res.Failures = append(res.Failures, FailureRecord{Input: input, Err: err})
			logger.Debug("probe failed",
				logging.Int("worker", w.Index),
				logging.Int64("input", n),
				logging.Err(err),
			)
		default:
			h := HashValue(hash)
			if first, inserted := set.Insert(h, input); !inserted {
				res.LocalCollisions++
				res.Records = append(res.Records, CollisionRecord{Hash: h, First: first, Second: input, Scope: ScopeLocal})
				if w.Recorder != nil {
					w.Recorder.ObserveCollision(ScopeLocal)
				}
			}
		}

		if res.Processed%every == 0 && res.Processed < total {
			w.emit(ctx, res, total, false)
		}
	}

	res.Set = set
	res.Duration = time.Since(start)
	w.emit(ctx, res, total, true)

	logger.Debug("worker finished",
		logging.Int("worker", w.Index),
		logging.Int64("processed", res.Processed),
		logging.Int64("local_collisions", res.LocalCollisions),
		logging.Int("failures", len(res.Failures)),
		logging.Duration("duration", res.Duration),
	)
	return res, nil
}

func (w *Worker) emit(ctx context.Context, res WorkerResult, total int64, done bool) {
	if w.Progress == nil {
		return
	}
	u := progress.Update{
		WorkerIndex: w.Index,
		Start:       w.Chunk.Start,
		End:         w.Chunk.End,
		Processed:   res.Processed,
		Total:       total,
		Collisions:  res.LocalCollisions,
		Failures:    int64(len(res.Failures)),
		Done:        done,
	}
	select {
	case w.Progress <- u:
	case <-ctx.Done():
	}
}
