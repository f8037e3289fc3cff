package orchestration

import (
	"time"

	"github.com/agbru/hashprobe/internal/format"
	"github.com/agbru/hashprobe/internal/progress"
)

// ProgressAggregator folds per-worker progress updates into run totals and
// an ETA. Both the CLI spinner and the TUI use it.
type ProgressAggregator struct {
	state      *format.ProgressWithETA
	numWorkers int
	latest     []progress.Update
}

// NewProgressAggregator returns an aggregator for numWorkers workers, or nil
// if numWorkers <= 0.
func NewProgressAggregator(numWorkers int) *ProgressAggregator {
	if numWorkers <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:      format.NewProgressWithETA(numWorkers),
		numWorkers: numWorkers,
		latest:     make([]progress.Update, numWorkers),
	}
}

// AggregatedProgress is the run-wide view after one update.
type AggregatedProgress struct {
	WorkerIndex     int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	Processed       int64
	Collisions      int64
	Failures        int64
	WorkersDone     int
}

// Update records u and returns the new aggregated view.
func (a *ProgressAggregator) Update(u progress.Update) AggregatedProgress {
	if u.WorkerIndex >= 0 && u.WorkerIndex < len(a.latest) {
		a.latest[u.WorkerIndex] = u
	}
	avg, eta := a.state.UpdateWithETA(u.WorkerIndex, u.Value())
	ap := AggregatedProgress{
		WorkerIndex:     u.WorkerIndex,
		Value:           u.Value(),
		AverageProgress: avg,
		ETA:             eta,
	}
	for _, l := range a.latest {
		ap.Processed += l.Processed
		ap.Collisions += l.Collisions
		ap.Failures += l.Failures
		if l.Done {
			ap.WorkersDone++
		}
	}
	return ap
}

// Latest returns the last update received from each worker, indexed by worker.
func (a *ProgressAggregator) Latest() []progress.Update {
	out := make([]progress.Update, len(a.latest))
	copy(out, a.latest)
	return out
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumWorkers returns the number of workers being tracked.
func (a *ProgressAggregator) NumWorkers() int {
	return a.numWorkers
}

// DrainChannel reads all updates from the channel until it is closed.
func DrainChannel(progressChan <-chan progress.Update) {
	for range progressChan {
	}
}
