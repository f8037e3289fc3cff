// Package metrics reads Go runtime memory statistics for the end-of-run
// memory report.
package metrics

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	HeapSys      uint64 // bytes obtained from OS for heap
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	HeapObjects  uint64 // number of allocated heap objects
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
	}
}

// PeakSampler tracks the highest HeapAlloc observed while a run is in
// progress. Result sets grow with N, so the end-of-run heap can be far
// below the peak once workers return.
type PeakSampler struct {
	mc       *MemoryCollector
	interval time.Duration
	peak     atomic.Uint64
	done     chan struct{}
}

// NewPeakSampler returns a sampler polling every interval.
func NewPeakSampler(mc *MemoryCollector, interval time.Duration) *PeakSampler {
	return &PeakSampler{mc: mc, interval: interval, done: make(chan struct{})}
}

// Start polls until ctx is canceled. It must be called at most once.
func (ps *PeakSampler) Start(ctx context.Context) {
	ps.observe()
	go func() {
		defer close(ps.done)
		ticker := time.NewTicker(ps.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ps.observe()
			}
		}
	}()
}

// Wait blocks until the polling goroutine has exited.
func (ps *PeakSampler) Wait() { <-ps.done }

func (ps *PeakSampler) observe() {
	heap := ps.mc.Snapshot().HeapAlloc
	for {
		cur := ps.peak.Load()
		if heap <= cur || ps.peak.CompareAndSwap(cur, heap) {
			return
		}
	}
}

// Peak returns the highest HeapAlloc seen, including a final reading.
func (ps *PeakSampler) Peak() uint64 {
	ps.observe()
	return ps.peak.Load()
}
