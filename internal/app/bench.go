package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/hashprobe/internal/bench"
	"github.com/agbru/hashprobe/internal/cli"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/ui"
)

// runBench measures oracle latency for each configured input length.
// Results are printed as soon as each length completes.
func (a *Application) runBench(ctx context.Context, o oracle.Oracle, out io.Writer) int {
	if !a.Config.Quiet {
		cli.PresentBenchmarkHeader(o.Name(), out)
	}

	cfg := bench.Config{
		Lengths: a.Config.BenchLengths,
		Trials:  a.Config.BenchTrials,
		Seed:    a.Config.Seed,
		Logger:  a.newLogger(),
	}
	start := time.Now()
	results, err := bench.Run(ctx, o, cfg, func(r bench.Result) {
		cli.PresentBenchmarkResult(r, out)
	})
	if err != nil {
		return cli.CLIResultPresenter{}.HandleError(err, time.Since(start), out)
	}

	if err := cli.WriteJSONFile(a.Config.OutputFile, "benchmark", Version, results); err != nil {
		fmt.Fprintf(out, "%sError saving report: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	if a.Config.OutputFile != "" && !a.Config.Quiet {
		cli.DisplaySaved(out, a.Config.OutputFile)
	}
	return apperrors.ExitSuccess
}
