// Package sysmon samples system-wide CPU and memory usage along with the
// footprint of the current process and its running oracle children.
package sysmon

import (
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single snapshot of resource usage.
type Stats struct {
	CPUPercent float64 // system-wide, 0.0 .. 100.0
	MemPercent float64 // system-wide, 0.0 .. 100.0
	RSS        uint64  // resident set size of this process in bytes
	Children   int     // live child processes, i.e. oracle invocations in flight
}

// Sample collects a single snapshot.
// CPU uses interval=0 (delta since last call). Fields that cannot be read
// are left at zero.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}

	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s
	}
	if mi, err := self.MemoryInfo(); err == nil && mi != nil {
		s.RSS = mi.RSS
	}
	if children, err := self.Children(); err == nil {
		s.Children = len(children)
	}
	return s
}
