package tui

import (
	"context"
	"io"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/hashprobe/internal/config"
	"github.com/agbru/hashprobe/internal/metrics"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/orchestration"
	"github.com/agbru/hashprobe/internal/sysmon"
)

// tickInterval paces sampling and the rate sparkline.
const tickInterval = 500 * time.Millisecond

var memCollector = metrics.NewMemoryCollector()

// startRunCmd runs one collision test in the background and reports its
// exit code tagged with gen.
func startRunCmd(ref *programRef, ctx context.Context, o oracle.Oracle, cfg config.AppConfig, runCfg orchestration.RunConfig, gen uint64) tea.Cmd {
	return func() tea.Msg {
		presenter := &TUIResultPresenter{ref: ref, gen: gen}
		start := time.Now()
		report, err := orchestration.Run(ctx, runCfg, o, &TUIProgressReporter{ref: ref, gen: gen}, io.Discard)
		if err != nil {
			return RunCompleteMsg{ExitCode: presenter.HandleError(err, time.Since(start), io.Discard), Generation: gen}
		}
		code := orchestration.AnalyzeReport(report, cfg.ToPresentationOptions(), presenter, io.Discard)
		return RunCompleteMsg{ExitCode: code, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		snap := memCollector.Snapshot()
		return MemStatsMsg{
			Alloc:        snap.HeapAlloc,
			HeapSys:      snap.HeapSys,
			NumGC:        snap.NumGC,
			PauseTotalNs: snap.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent, RSS: s.RSS, Children: s.Children}
	}
}

// watchContextCmd reports the end of ctx, whether from the run timeout, a
// signal or a restart.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
