package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/agbru/hashprobe/internal/bench"
	"github.com/agbru/hashprobe/internal/collision"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/format"
	"github.com/agbru/hashprobe/internal/orchestration"
	"github.com/agbru/hashprobe/internal/progress"
	"github.com/agbru/hashprobe/internal/ui"
)

// maxListedRecords caps the collision and failure lists in non-verbose mode.
const maxListedRecords = 10

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.Update, numWorkers int, out io.Writer) {
	DisplayProgress(wg, progressChan, numWorkers, out)
}

// CLIResultPresenter renders reports for the terminal.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// SummaryLine returns the one-line verdict of a run.
func SummaryLine(report collision.Report) string {
	return fmt.Sprintf("Total collisions found: %d out of %d hashes", report.TotalCollisions, report.N)
}

// PresentReport prints the summary line, then unless opts.Quiet a breakdown
// and the first collision and failure records (all of them with
// opts.Verbose).
func (p CLIResultPresenter) PresentReport(report collision.Report, opts orchestration.PresentationOptions, out io.Writer) {
	if opts.Quiet {
		fmt.Fprintln(out, SummaryLine(report))
		return
	}

	color := ui.ColorGreen()
	if report.TotalCollisions > 0 {
		color = ui.ColorYellow()
	}
	fmt.Fprintf(out, "\n--- Results ---\n")
	fmt.Fprintf(out, "%s%s%s%s\n", ui.ColorBold(), color, SummaryLine(report), ui.ColorReset())
	fmt.Fprintf(out, "  Local collisions:  %s%s%s\n", ui.ColorCyan(), format.FormatCount(report.LocalCollisions), ui.ColorReset())
	fmt.Fprintf(out, "  Global collisions: %s%s%s\n", ui.ColorCyan(), format.FormatCount(report.GlobalCollisions), ui.ColorReset())
	fmt.Fprintf(out, "  Distinct hashes:   %s / %s hashed\n", format.FormatCount(report.DistinctHashes), format.FormatCount(report.Hashed))
	if report.Failures > 0 {
		fmt.Fprintf(out, "  Probe failures:    %s%s%s\n", ui.ColorRed(), format.FormatCount(report.Failures), ui.ColorReset())
	}
	fmt.Fprintf(out, "  Duration:          %s%s%s with %d workers\n", ui.ColorYellow(), p.FormatDuration(report.Duration), ui.ColorReset(), report.Workers)

	p.presentCollisions(report.Collisions, opts.Verbose, out)
	p.presentFailures(report.FailureRecords, opts.Verbose, out)
}

func (CLIResultPresenter) presentCollisions(records []collision.CollisionRecord, verbose bool, out io.Writer) {
	if len(records) == 0 {
		return
	}
	width := hashColumnWidth(records)
	fmt.Fprintf(out, "\n%sScope%s    %sHash%s%s%sFirst%s      %sSecond%s\n",
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", width-4),
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())
	for i, r := range records {
		if !verbose && i == maxListedRecords {
			fmt.Fprintf(out, "  ... %d more (use -v to list all)\n", len(records)-i)
			break
		}
		fmt.Fprintf(out, "%-6s   %s%s%s%s%-10d %-10d\n",
			r.Scope, ui.ColorMagenta(), r.Hash, ui.ColorReset(), padRight("", width-len(r.Hash)), r.First, r.Second)
	}
}

func (CLIResultPresenter) presentFailures(failures []collision.FailureRecord, verbose bool, out io.Writer) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%sProbe failures%s\n", ui.ColorRed(), ui.ColorReset())
	for i, f := range failures {
		if !verbose && i == maxListedRecords {
			fmt.Fprintf(out, "  ... %d more (use -v to list all)\n", len(failures)-i)
			break
		}
		fmt.Fprintf(out, "  input %d: %v\n", f.Input, f.Err)
	}
}

// hashColumnWidth returns the hash column width including two spaces of padding.
func hashColumnWidth(records []collision.CollisionRecord) int {
	w := 4
	for _, r := range records {
		if len(r.Hash) > w {
			w = len(r.Hash)
		}
	}
	return w + 2
}

// padRight pads s with spaces up to length extra characters.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// FormatDuration formats a duration for display.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError prints err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleRunError(err, duration, out)
}

// PresentBenchmarkHeader prints the banner of a benchmark run.
func PresentBenchmarkHeader(oracleName string, out io.Writer) {
	fmt.Fprintf(out, "Benchmarking %s%s%s...\n", ui.ColorCyan(), oracleName, ui.ColorReset())
	fmt.Fprintln(out, strings.Repeat("=", 50))
}

// PresentBenchmarkResult prints the measurements of one input length.
func PresentBenchmarkResult(r bench.Result, out io.Writer) {
	fmt.Fprintf(out, "Input length: %s%d%s\n", ui.ColorMagenta(), r.Length, ui.ColorReset())
	fmt.Fprintf(out, "Average time taken over %d runs: %s%.6f seconds%s\n",
		r.Trials, ui.ColorYellow(), r.Average.Seconds(), ui.ColorReset())
	fmt.Fprintf(out, "  fastest %s, slowest %s\n",
		format.FormatExecutionDuration(r.Fastest), format.FormatExecutionDuration(r.Slowest))
	if r.Failures > 0 {
		fmt.Fprintf(out, "  %s%d failed probes%s (last: %s)\n", ui.ColorRed(), r.Failures, ui.ColorReset(), r.LastError)
	}
	fmt.Fprintln(out, strings.Repeat("-", 50))
}

// DisplayMemoryStats shows memory statistics after a run.
func DisplayMemoryStats(heapAlloc, totalAlloc uint64, numGC uint32, pauseTotalNs uint64, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", format.FormatBytes(heapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(totalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", numGC)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(pauseTotalNs)/1e6)
}
