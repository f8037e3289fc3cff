package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/hashprobe/internal/config"
	"github.com/agbru/hashprobe/internal/format"
	"github.com/agbru/hashprobe/internal/ui"
)

// PrintExecutionConfig displays the run parameters before a collision test.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Probing %s%s%s inputs with oracle %s%s%s.\n",
		ui.ColorMagenta(), format.FormatCount(cfg.N), ui.ColorReset(),
		ui.ColorCyan(), cfg.Oracle, ui.ColorReset())
	fmt.Fprintf(out, "Workers: %s%d%s, probe timeout %s%s%s, run timeout %s%s%s.\n",
		ui.ColorCyan(), cfg.Workers, ui.ColorReset(),
		ui.ColorYellow(), cfg.ProbeTimeout, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	mode := "tolerant (failed probes are recorded)"
	if cfg.FailFast {
		mode = "fail-fast (the first failed probe aborts the run)"
	}
	fmt.Fprintf(out, "Failure policy: %s.\n", mode)
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
