// Package orchestration runs a collision test end to end: it partitions the
// input space, fans the chunks out to concurrent workers, collects their
// published results and merges them into a report. Presentation concerns are
// kept behind the ProgressReporter and ResultPresenter interfaces.
package orchestration
