package tui

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/hashprobe/internal/collision"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/format"
	"github.com/agbru/hashprobe/internal/orchestration"
	"github.com/agbru/hashprobe/internal/progress"
)

// programRef lets the orchestration goroutines reach the running program.
// Bubbletea copies the model on every Update, so the model carries a
// pointer to this shared slot. Messages sent before SetProgram are dropped.
type programRef struct {
	program atomic.Pointer[tea.Program]
}

// SetProgram publishes p to the bridge goroutines.
func (r *programRef) SetProgram(p *tea.Program) { r.program.Store(p) }

// Send forwards msg to the program, if one is set.
func (r *programRef) Send(msg tea.Msg) {
	if p := r.program.Load(); p != nil {
		p.Send(msg)
	}
}

// TUIProgressReporter turns worker progress updates into ProgressMsg
// tagged with the generation of the run.
type TUIProgressReporter struct {
	ref *programRef
	gen uint64
}

var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress aggregates updates until the channel closes, then sends
// ProgressDoneMsg.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numWorkers int, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(numWorkers)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}
	for update := range progressChan {
		t.ref.Send(newProgressMsg(agg.Update(update), update.Done, t.gen))
	}
	t.ref.Send(ProgressDoneMsg{Generation: t.gen})
}

func newProgressMsg(ap orchestration.AggregatedProgress, workerDone bool, gen uint64) ProgressMsg {
	return ProgressMsg{
		Generation:      gen,
		WorkerIndex:     ap.WorkerIndex,
		Value:           ap.Value,
		AverageProgress: ap.AverageProgress,
		ETA:             ap.ETA,
		Processed:       ap.Processed,
		Collisions:      ap.Collisions,
		Failures:        ap.Failures,
		WorkersDone:     ap.WorkersDone,
		WorkerDone:      workerDone,
	}
}

// TUIResultPresenter routes the final report and run errors to the
// dashboard instead of the terminal.
type TUIResultPresenter struct {
	ref *programRef
	gen uint64
}

var (
	_ orchestration.ResultPresenter   = (*TUIResultPresenter)(nil)
	_ orchestration.DurationFormatter = (*TUIResultPresenter)(nil)
	_ orchestration.ErrorHandler      = (*TUIResultPresenter)(nil)
)

// PresentReport sends the report to the event log.
func (t *TUIResultPresenter) PresentReport(report collision.Report, _ orchestration.PresentationOptions, _ io.Writer) {
	t.ref.Send(ReportMsg{Report: report, Generation: t.gen})
}

// FormatDuration formats d like the terminal output does.
func (t *TUIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError shows err in the dashboard and returns its exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	t.ref.Send(ErrorMsg{Err: err, Duration: duration, Generation: t.gen})
	return apperrors.ExitCodeFor(err)
}
