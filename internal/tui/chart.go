package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/agbru/hashprobe/internal/format"
)

const (
	// sparklineWidth is the horizontal space taken by a sparkline label and
	// its value suffix.
	sparklineWidth = 20
	// minSparklineHeight is the chart height from which sparklines are drawn.
	minSparklineHeight = 10
	// chartPadding is the width taken by the border and inner padding.
	chartPadding = 4
	// barLabelWidth is the width of the "  w01 " prefix of a worker bar.
	barLabelWidth = 6
	// percentWidth is the width of the " 100.0%" suffix.
	percentWidth = 7
)

// ChartModel shows overall and per-worker progress, the ETA and system
// sparklines.
type ChartModel struct {
	bar             progress.Model
	workers         []float64
	workerDone      []bool
	averageProgress float64
	eta             time.Duration
	cpuHistory      *History
	memHistory      *History
	rateHistory     *History
	width           int
	height          int
	done            bool
	elapsed         time.Duration
}

// NewChartModel creates a chart for numWorkers workers.
func NewChartModel(numWorkers int) ChartModel {
	return ChartModel{
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
			progress.WithFillCharacters('█', '░'),
		),
		workers:     make([]float64, max(numWorkers, 0)),
		workerDone:  make([]bool, max(numWorkers, 0)),
		cpuHistory:  NewHistory(32),
		memHistory:  NewHistory(32),
		rateHistory: NewHistory(32),
	}
}

// SetSize updates dimensions and resizes the sparkline history to fit.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
	if n := w - sparklineWidth; n > 0 {
		c.cpuHistory.SetLimit(n)
		c.memHistory.SetLimit(n)
		c.rateHistory.SetLimit(n)
	}
}

// AddDataPoint records a worker's progress and the run-wide average.
func (c *ChartModel) AddDataPoint(worker int, value, average float64, eta time.Duration, done bool) {
	if worker >= 0 && worker < len(c.workers) {
		c.workers[worker] = value
		c.workerDone[worker] = c.workerDone[worker] || done
	}
	c.averageProgress = average
	c.eta = eta
}

// UpdateSysStats appends a CPU and memory sample.
func (c *ChartModel) UpdateSysStats(cpu, mem float64) {
	c.cpuHistory.Push(cpu)
	c.memHistory.Push(mem)
}

// AddRate appends a probe-rate sample in probes per second.
func (c *ChartModel) AddRate(rate float64) {
	c.rateHistory.Push(rate)
}

// SetDone freezes the chart with the final elapsed time.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
	c.eta = 0
}

// ClearETA drops the estimate once no more progress will arrive.
func (c *ChartModel) ClearETA() { c.eta = 0 }

// Reset clears all progress and history.
func (c *ChartModel) Reset() {
	clear(c.workers)
	clear(c.workerDone)
	c.averageProgress = 0
	c.eta = 0
	c.done = false
	c.elapsed = 0
	c.cpuHistory.Reset()
	c.memHistory.Reset()
	c.rateHistory.Reset()
}

// renderBar renders one labelled bar, or "" when the chart is too narrow.
func (c ChartModel) renderBar(label string, value float64) string {
	barWidth := c.width - chartPadding - barLabelWidth - percentWidth
	if barWidth < 5 {
		return ""
	}
	c.bar.Width = barWidth
	return fmt.Sprintf("%-*s%s %5.1f%%", barLabelWidth, label, c.bar.ViewAs(value), value*100)
}

// renderProgressBar renders the run-wide bar.
func (c ChartModel) renderProgressBar() string {
	return c.renderBar("  all", c.averageProgress)
}

// workerRows is the number of per-worker bars that fit.
func (c ChartModel) workerRows() int {
	// title, overall bar, ETA line and the border
	avail := c.height - 5
	if c.height >= minSparklineHeight {
		avail -= 3
	}
	return max(min(avail, len(c.workers)), 0)
}

// View renders the chart panel.
func (c ChartModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(" Progress Chart"))

	if bar := c.renderProgressBar(); bar != "" {
		b.WriteString("\n")
		b.WriteString(bar)
	}
	rows := c.workerRows()
	for i := 0; i < rows; i++ {
		label := fmt.Sprintf("  w%02d", i+1)
		if line := c.renderBar(label, c.workers[i]); line != "" {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}
	if hidden := len(c.workers) - rows; hidden > 0 && rows > 0 {
		b.WriteString("\n")
		b.WriteString(metricLabelStyle.Render(fmt.Sprintf("  ... %d more workers", hidden)))
	}

	b.WriteString("\n")
	if c.done {
		b.WriteString(metricLabelStyle.Render("  Completed in ") +
			metricValueStyle.Render(format.FormatExecutionDuration(c.elapsed)))
	} else {
		b.WriteString(metricLabelStyle.Render("  ETA: ") + metricValueStyle.Render(format.FormatETA(c.eta)))
	}

	if c.height >= minSparklineHeight {
		b.WriteString("\n")
		b.WriteString(sparkRow("CPU", cpuSparklineStyle.Render(RenderSparkline(c.cpuHistory.Values())), fmt.Sprintf("%3.0f%%", c.cpuHistory.Last())))
		b.WriteString("\n")
		b.WriteString(sparkRow("MEM", memSparklineStyle.Render(RenderSparkline(c.memHistory.Values())), fmt.Sprintf("%3.0f%%", c.memHistory.Last())))
		b.WriteString("\n")
		b.WriteString(sparkRow("RATE", rateSparklineStyle.Render(RenderSparkline(ScaleToPercent(c.rateHistory.Values()))), format.FormatRate(c.rateHistory.Last())))
	}

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(b.String())
}

func sparkRow(label, line, value string) string {
	return fmt.Sprintf("  %s %s %s", metricLabelStyle.Render(fmt.Sprintf("%-4s", label)), line, metricValueStyle.Render(value))
}
