package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders d with a unit suited to its magnitude:
// "850µs", "42ms", "1.52s", and whole seconds ("3m12s") from one minute on.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

// FormatRate renders a throughput in events per second: "950/s", "12.3k/s",
// "1.2M/s". Negative rates render as "0/s".
func FormatRate(perSecond float64) string {
	switch {
	case perSecond < 0:
		return "0/s"
	case perSecond < 1000:
		return fmt.Sprintf("%.0f/s", perSecond)
	case perSecond < 1_000_000:
		return fmt.Sprintf("%.1fk/s", perSecond/1000)
	default:
		return fmt.Sprintf("%.1fM/s", perSecond/1_000_000)
	}
}
