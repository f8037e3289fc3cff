package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/hashprobe/internal/cli"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/logging"
	"github.com/agbru/hashprobe/internal/metrics"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/orchestration"
	"github.com/agbru/hashprobe/internal/server"
	"github.com/agbru/hashprobe/internal/tui"
	"github.com/agbru/hashprobe/internal/ui"
)

// peakSampleInterval is how often the verbose memory report samples the heap.
const peakSampleInterval = 50 * time.Millisecond

// runCollide runs the collision test, in the terminal or in the dashboard.
func (a *Application) runCollide(ctx context.Context, o oracle.Oracle, out io.Writer) int {
	logger := a.newLogger()

	m := server.NewMetrics()
	if a.Config.MetricsAddr != "" {
		srv := server.New(a.Config.MetricsAddr, m, logger)
		if err := srv.Start(); err != nil {
			fmt.Fprintf(a.ErrWriter, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return apperrors.ExitErrorConfig
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", err)
			}
		}()
	}

	instrumented := oracle.Instrumented{Oracle: o, Recorder: m}
	runCfg := a.Config.ToRunConfig()
	runCfg.Recorder = m
	runCfg.ActiveWorkers = m.ActiveWorkers()
	runCfg.Logger = logger

	if a.Config.TUI {
		return tui.Run(ctx, instrumented, a.Config, runCfg, Version)
	}

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
	}

	var reporter orchestration.ProgressReporter
	progressOut := out
	switch {
	case a.Config.Quiet:
		progressOut = io.Discard
		reporter = orchestration.NullProgressReporter{}
	case a.Config.Verbose:
		reporter = cli.VerboseProgressReporter{}
	default:
		reporter = cli.CLIProgressReporter{}
	}

	var sampler *metrics.PeakSampler
	mc := metrics.NewMemoryCollector()
	if a.Config.Verbose {
		sampler = metrics.NewPeakSampler(mc, peakSampleInterval)
		sampleCtx, stopSampling := context.WithCancel(ctx)
		sampler.Start(sampleCtx)
		defer func() {
			stopSampling()
			sampler.Wait()
		}()
	}

	presenter := cli.CLIResultPresenter{}
	start := time.Now()
	report, err := orchestration.Run(ctx, runCfg, instrumented, reporter, progressOut)
	if err != nil {
		return presenter.HandleError(err, time.Since(start), out)
	}

	exitCode := orchestration.AnalyzeReport(report, a.Config.ToPresentationOptions(), presenter, out)

	if a.Config.OutputFile != "" {
		if err := cli.WriteJSONFile(a.Config.OutputFile, "collision", Version, report); err != nil {
			fmt.Fprintf(out, "%sError saving report: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			if exitCode == apperrors.ExitSuccess {
				exitCode = apperrors.ExitErrorGeneric
			}
		} else if !a.Config.Quiet {
			cli.DisplaySaved(out, a.Config.OutputFile)
		}
	}

	if sampler != nil {
		snap := mc.Snapshot()
		peak := sampler.Peak()
		if snap.HeapAlloc > peak {
			peak = snap.HeapAlloc
		}
		cli.DisplayMemoryStats(peak, snap.TotalAlloc, snap.NumGC, snap.PauseTotalNs, out)
	}
	return exitCode
}

// newLogger returns the structured logger for the run. The dashboard owns
// the terminal, so logging is silenced in TUI mode.
func (a *Application) newLogger() logging.Logger {
	if a.Config.TUI {
		return logging.Nop()
	}
	return logging.NewConsoleLogger(a.ErrWriter, a.Config.LogLevel, a.Config.NoColor)
}
