package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/hashprobe/internal/collision"
	"github.com/agbru/hashprobe/internal/progress"
)

// PresentationOptions configures how a report is presented to the user.
type PresentationOptions struct {
	Verbose         bool
	Quiet           bool
	FailOnCollision bool
}

// ProgressReporter displays worker progress. It decouples the orchestration
// layer from spinners, dashboards and other UI concerns.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done. It is run in its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numWorkers int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.Update, numWorkers int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numWorkers int, out io.Writer) {
	f(wg, progressChan, numWorkers, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode and tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders a finished report.
type ResultPresenter interface {
	// PresentReport writes the summary line and, depending on opts, the
	// breakdown and collision records.
	PresentReport(report collision.Report, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler maps run errors to exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
