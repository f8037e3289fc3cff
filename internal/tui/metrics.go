package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/hashprobe/internal/format"
)

// rateSmoothing weights the newest sample in the exponential moving average.
const rateSmoothing = 0.3

// minRateWindow is the shortest interval that produces a rate sample.
// Shorter gaps would make the rate jump with every burst of updates.
const minRateWindow = 50 * time.Millisecond

// rateMeter turns a monotonically growing counter into a smoothed
// per-second rate.
type rateMeter struct {
	rate      float64
	lastCount int64
	lastAt    time.Time
}

func (r *rateMeter) observe(count int64, now time.Time) {
	window := now.Sub(r.lastAt)
	if window < minRateWindow {
		return
	}
	if delta := count - r.lastCount; delta > 0 {
		sample := float64(delta) / window.Seconds()
		if r.rate == 0 {
			r.rate = sample
		} else {
			r.rate += rateSmoothing * (sample - r.rate)
		}
	}
	r.lastCount = count
	r.lastAt = now
}

// MetricsModel is the counters panel: probe totals from the run plus the
// heap and process footprint sampled on each tick.
type MetricsModel struct {
	mem MemStatsMsg
	sys SysStatsMsg

	processed   int64
	collisions  int64
	failures    int64
	workersDone int
	numWorkers  int
	meter       rateMeter

	width  int
	height int
}

// NewMetricsModel creates the panel for a run with numWorkers workers.
func NewMetricsModel(numWorkers int) MetricsModel {
	return MetricsModel{numWorkers: numWorkers, meter: rateMeter{lastAt: time.Now()}}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats stores the latest runtime sample.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) { m.mem = msg }

// UpdateSysStats stores the latest process sample.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) { m.sys = msg }

// UpdateCounters records the aggregated counters of a progress message.
func (m *MetricsModel) UpdateCounters(msg ProgressMsg) {
	m.processed = msg.Processed
	m.collisions = msg.Collisions
	m.failures = msg.Failures
	m.workersDone = msg.WorkersDone
	m.meter.observe(msg.Processed, time.Now())
}

// Rate returns the smoothed probe rate in probes per second.
func (m MetricsModel) Rate() float64 { return m.meter.rate }

type metricCell struct {
	label string
	value string
	alert bool
}

// cells lists the panel cells, two per row. The footprint row only fits
// in a full-height panel.
func (m MetricsModel) cells() []metricCell {
	cells := []metricCell{
		{"Probed:", format.FormatCount(m.processed), false},
		{"Rate:", format.FormatRate(m.meter.rate), false},
		{"Collisions:", format.FormatCount(m.collisions), m.collisions > 0},
		{"Failures:", format.FormatCount(m.failures), m.failures > 0},
		{"Oracles:", fmt.Sprintf("%d running", m.sys.Children), false},
		{"Workers:", fmt.Sprintf("%d/%d done", m.workersDone, m.numWorkers), false},
	}
	if m.height >= MetricsPanelHeight {
		cells = append(cells,
			metricCell{"RSS:", format.FormatBytes(m.sys.RSS), false},
			metricCell{"Goroutines:", strconv.Itoa(m.mem.NumGoroutine), false},
		)
	}
	return cells
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	sep := metricLabelStyle.Render(" | ")
	lines := []string{"  " +
		metricLabelStyle.Render("Heap: ") +
		metricValueStyle.Render(format.FormatBytes(m.mem.Alloc)+" / "+format.FormatBytes(m.mem.HeapSys)) +
		sep +
		metricLabelStyle.Render("GC: ") +
		metricValueStyle.Render(fmt.Sprintf("%d (%.1fms)", m.mem.NumGC, float64(m.mem.PauseTotalNs)/1e6)),
	}

	colWidth := (m.width - 6) / 2
	cells := m.cells()
	for i := 0; i+1 < len(cells); i += 2 {
		lines = append(lines, renderCell(cells[i], colWidth)+renderCell(cells[i+1], colWidth))
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(strings.Join(lines, "\n"))
}

func renderCell(c metricCell, width int) string {
	style := metricValueStyle
	if c.alert {
		style = metricAlertStyle
	}
	cell := " " + metricLabelStyle.Render(fmt.Sprintf("%-12s", c.label)) + " " + style.Render(c.value)
	if pad := width - lipgloss.Width(cell); pad > 0 {
		cell += strings.Repeat(" ", pad)
	}
	return cell
}
