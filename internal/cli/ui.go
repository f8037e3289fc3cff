package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/hashprobe/internal/format"
	"github.com/agbru/hashprobe/internal/orchestration"
	"github.com/agbru/hashprobe/internal/progress"
	"github.com/agbru/hashprobe/internal/ui"
)

const (
	// ProgressRefreshRate is how often the spinner line is redrawn.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts a terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with a run-wide progress bar, the number
// of probed inputs, collisions found so far and an ETA. It returns when
// progressChan is closed.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numWorkers int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numWorkers)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	defer s.Stop()

	var last orchestration.AggregatedProgress
	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(progressSuffix(last.AverageProgress, 0, last))
				return
			}
			last = agg.Update(u)
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(agg.CalculateAverage(), agg.GetETA(), last))
		}
	}
}

func progressSuffix(avg float64, eta time.Duration, ap orchestration.AggregatedProgress) string {
	return fmt.Sprintf(" %s %s| %s probed, %s%s%s collisions",
		format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth),
		ui.ColorGrey(),
		format.FormatCount(ap.Processed),
		ui.ColorYellow(), format.FormatCount(ap.Collisions), ui.ColorReset())
}

// VerboseProgressReporter prints a line for every worker update instead of
// animating a spinner, and a summary line when a worker finishes.
type VerboseProgressReporter struct{}

// DisplayProgress implements orchestration.ProgressReporter.
func (VerboseProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numWorkers int, out io.Writer) {
	defer wg.Done()
	for u := range progressChan {
		if !u.Done {
			fmt.Fprintf(out, "  worker %d/%d range %d-%d: %s of %s inputs processed\n",
				u.WorkerIndex+1, numWorkers, u.Start, u.End,
				format.FormatCount(u.Processed), format.FormatCount(u.Total))
			continue
		}
		fmt.Fprintf(out, "  worker %d/%d done: %s inputs, %s local collisions, %s failures\n",
			u.WorkerIndex+1, numWorkers,
			format.FormatCount(u.Processed), format.FormatCount(u.Collisions), format.FormatCount(u.Failures))
	}
}
