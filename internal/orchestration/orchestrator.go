package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/hashprobe/internal/collision"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/logging"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/partition"
	"github.com/agbru/hashprobe/internal/progress"
)

// ProgressBufferMultiplier sizes the progress channel relative to the worker
// count so that a slow display rarely holds workers back.
const ProgressBufferMultiplier = 5

const tracerName = "github.com/agbru/hashprobe/internal/orchestration"

// WorkerGauge tracks the number of running workers.
type WorkerGauge interface {
	Inc()
	Dec()
}

// RunConfig holds the orchestrator's inputs.
type RunConfig struct {
	N             int64
	Workers       int
	FailFast      bool
	ProgressEvery int64

	Recorder      collision.CollisionRecorder
	ActiveWorkers WorkerGauge
	Logger        logging.Logger
}

// Run executes a complete collision test.
//
// The input space [1..N] is split into cfg.Workers chunks, one worker
// goroutine is started per chunk and each publishes exactly one
// WorkerResult on a channel of capacity cfg.Workers. Once every worker has
// joined, the results are merged into a Report. In fail-fast mode the first
// worker error cancels the others and is returned as is, so callers can
// inspect it with errors.As.
func Run(ctx context.Context, cfg RunConfig, o oracle.Oracle, reporter ProgressReporter, out io.Writer) (collision.Report, error) {
	start := time.Now()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	if o == nil {
		return collision.Report{}, apperrors.NewConfigError("no hash oracle configured")
	}
	chunks, err := partition.Split(cfg.N, int64(cfg.Workers))
	if err != nil {
		return collision.Report{}, err
	}
	if reporter == nil {
		reporter = NullProgressReporter{}
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "hashprobe.run", trace.WithAttributes(
		attribute.Int64("hashprobe.n", cfg.N),
		attribute.Int("hashprobe.workers", len(chunks)),
		attribute.String("hashprobe.oracle", o.Name()),
		attribute.Bool("hashprobe.fail_fast", cfg.FailFast),
	))
	defer span.End()

	logger.Info("collision test started",
		logging.Int64("n", cfg.N),
		logging.Int("workers", len(chunks)),
		logging.String("oracle", o.Name()),
	)

	progressChan := make(chan progress.Update, len(chunks)*ProgressBufferMultiplier)
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(chunks), out)

	published := make(chan collision.WorkerResult, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		g.Go(func() error {
			wctx, wspan := tracer.Start(gctx, "hashprobe.worker", trace.WithAttributes(
				attribute.Int("hashprobe.worker.index", chunk.Index),
				attribute.Int64("hashprobe.worker.start", chunk.Start),
				attribute.Int64("hashprobe.worker.end", chunk.End),
			))
			defer wspan.End()
			if cfg.ActiveWorkers != nil {
				cfg.ActiveWorkers.Inc()
				defer cfg.ActiveWorkers.Dec()
			}

			w := &collision.Worker{
				Index:         chunk.Index,
				Chunk:         chunk,
				Oracle:        o,
				FailFast:      cfg.FailFast,
				ProgressEvery: cfg.ProgressEvery,
				Progress:      progressChan,
				Recorder:      cfg.Recorder,
				Logger:        logger,
			}
			res, err := w.Run(wctx)
			if err != nil {
				wspan.RecordError(err)
				wspan.SetStatus(codes.Error, err.Error())
				return err
			}
			wspan.SetAttributes(
				attribute.Int64("hashprobe.worker.local_collisions", res.LocalCollisions),
				attribute.Int("hashprobe.worker.failures", len(res.Failures)),
			)
			published <- res
			return nil
		})
	}

	err = g.Wait()
	close(published)
	close(progressChan)
	displayWg.Wait()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !apperrors.IsContextError(err) {
			logger.Error("collision test aborted", err, logging.Duration("elapsed", time.Since(start)))
		}
		return collision.Report{}, err
	}

	results := make([]collision.WorkerResult, 0, len(chunks))
	for res := range published {
		results = append(results, res)
	}
	if len(results) != len(chunks) {
		err := fmt.Errorf("expected %d worker results, got %d", len(chunks), len(results))
		span.SetStatus(codes.Error, err.Error())
		return collision.Report{}, err
	}

	report := collision.Aggregator{N: cfg.N, Oracle: o.Name(), Recorder: cfg.Recorder}.Merge(results)
	report.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int64("hashprobe.collisions.local", report.LocalCollisions),
		attribute.Int64("hashprobe.collisions.global", report.GlobalCollisions),
		attribute.Int64("hashprobe.failures", report.Failures),
	)
	logger.Info("collision test finished",
		logging.Int64("collisions", report.TotalCollisions),
		logging.Int64("local", report.LocalCollisions),
		logging.Int64("global", report.GlobalCollisions),
		logging.Int64("failures", report.Failures),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

// AnalyzeReport presents report and returns the exit code it implies:
// collisions only fail the run when opts.FailOnCollision is set, and any
// recorded probe failure yields ExitErrorProbeFailures.
func AnalyzeReport(report collision.Report, opts PresentationOptions, presenter ResultPresenter, out io.Writer) int {
	presenter.PresentReport(report, opts, out)
	switch {
	case report.Failures > 0:
		return apperrors.ExitErrorProbeFailures
	case opts.FailOnCollision && report.TotalCollisions > 0:
		return apperrors.ExitErrorCollision
	default:
		return apperrors.ExitSuccess
	}
}
