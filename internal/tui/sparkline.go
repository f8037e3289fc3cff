package tui

import "strings"

// sparkLevels are the eight block heights of a sparkline, lowest first.
const sparkLevels = "▁▂▃▄▅▆▇█"

// History keeps the most recent samples of a series, up to a limit.
type History struct {
	samples []float64
	limit   int
}

// NewHistory returns an empty history holding at most limit samples.
func NewHistory(limit int) *History {
	return &History{limit: max(limit, 1)}
}

// Push appends v, dropping the oldest sample once the limit is reached.
func (h *History) Push(v float64) {
	h.samples = append(h.samples, v)
	h.trim()
}

// SetLimit changes the limit, keeping the newest samples that still fit.
func (h *History) SetLimit(limit int) {
	h.limit = max(limit, 1)
	h.trim()
}

func (h *History) trim() {
	if extra := len(h.samples) - h.limit; extra > 0 {
		h.samples = append(h.samples[:0], h.samples[extra:]...)
	}
}

// Limit returns the maximum number of samples kept.
func (h *History) Limit() int { return h.limit }

// Len returns the number of samples kept.
func (h *History) Len() int { return len(h.samples) }

// Last returns the newest sample, or 0 when empty.
func (h *History) Last() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1]
}

// Values returns a copy of the samples, oldest first.
func (h *History) Values() []float64 {
	return append([]float64(nil), h.samples...)
}

// Reset drops every sample.
func (h *History) Reset() { h.samples = h.samples[:0] }

// RenderSparkline draws percentages (0..100, clamped) as block characters.
func RenderSparkline(values []float64) string {
	levels := []rune(sparkLevels)
	var b strings.Builder
	for _, v := range values {
		v = min(max(v, 0), 100)
		idx := min(int(v/100*float64(len(levels)-1)), len(levels)-1)
		b.WriteRune(levels[idx])
	}
	return b.String()
}

// ScaleToPercent maps values onto 0..100 relative to their maximum, so
// unbounded series such as probe rates can be drawn as sparklines.
func ScaleToPercent(values []float64) []float64 {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	out := make([]float64, len(values))
	if peak <= 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / peak * 100
	}
	return out
}
