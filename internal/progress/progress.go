// Package progress defines the progress notification shared by workers,
// the orchestrator and the presentation layers.
package progress

// Update is a progress notification emitted by a worker.
type Update struct {
	// WorkerIndex identifies the worker (equal to its chunk index).
	WorkerIndex int
	// Start and End are the inclusive bounds of the worker's chunk.
	Start, End int64
	// Processed is the number of inputs the worker has probed so far.
	Processed int64
	// Total is the number of inputs in the worker's chunk.
	Total int64
	// Collisions is the worker's local collision count so far.
	Collisions int64
	// Failures is the worker's probe failure count so far.
	Failures int64
	// Done is set on the final update of a worker.
	Done bool
}

// Value returns the normalized progress (0.0 to 1.0).
func (u Update) Value() float64 {
	if u.Total <= 0 {
		return 0
	}
	v := float64(u.Processed) / float64(u.Total)
	if v > 1 {
		return 1
	}
	return v
}
