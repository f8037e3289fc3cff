package collision

import (
	"cmp"
	"slices"
)

// Aggregator merges worker results into a Report. It is used once, after
// every worker has published, and owns the global result set.
type Aggregator struct {
	N        int64
	Oracle   string
	Recorder CollisionRecorder
}

// Merge combines results in ascending chunk order, whatever order they
// arrived in. Local sets are replayed in insertion order against the global
// set, so the same inputs always yield the same Report.
func (a Aggregator) Merge(results []WorkerResult) Report {
	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(x, y WorkerResult) int {
		return cmp.Compare(x.Chunk.Start, y.Chunk.Start)
	})

	var capacity int
	for _, r := range sorted {
		if r.Set != nil {
			capacity += r.Set.Len()
		}
	}
	global := NewResultSet(capacity)

	report := Report{
		Oracle:     a.Oracle,
		N:          a.N,
		Workers:    len(sorted),
		Collisions: []CollisionRecord{},
	}
	var globalRecords []CollisionRecord

	for _, r := range sorted {
		report.Processed += r.Processed
		report.LocalCollisions += r.LocalCollisions
		report.Collisions = append(report.Collisions, r.Records...)
		report.FailureRecords = append(report.FailureRecords, r.Failures...)
		if r.Set == nil {
			continue
		}
		r.Set.Each(func(h HashValue, in Input) {
			if first, inserted := global.Insert(h, in); !inserted {
				report.GlobalCollisions++
				globalRecords = append(globalRecords, CollisionRecord{Hash: h, First: first, Second: in, Scope: ScopeGlobal})
				if a.Recorder != nil {
					a.Recorder.ObserveCollision(ScopeGlobal)
				}
			}
		})
	}

	report.Collisions = append(report.Collisions, globalRecords...)
	report.Failures = int64(len(report.FailureRecords))
	report.Hashed = report.Processed - report.Failures
	report.DistinctHashes = int64(global.Len())
	report.TotalCollisions = report.LocalCollisions + report.GlobalCollisions
	return report
}
