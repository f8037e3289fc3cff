package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/hashprobe/internal/cli"
	"github.com/agbru/hashprobe/internal/config"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/ui"
)

// Application represents the hashprobe application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	// newOracle builds the oracle from its spec; tests replace it.
	newOracle func(spec string, opts oracle.ExecOptions) (oracle.Oracle, error)
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithOracleFactory overrides how the oracle is built from the -oracle spec.
func WithOracleFactory(f func(spec string, opts oracle.ExecOptions) (oracle.Oracle, error)) AppOption {
	return func(a *Application) { a.newOracle = f }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, newOracle: oracle.New}
	for _, opt := range opts {
		opt(app)
	}

	programName := "hashprobe"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	if lvl, err := zerolog.ParseLevel(a.Config.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	ui.InitTheme(a.Config.NoColor)

	o, err := a.newOracle(a.Config.Oracle, a.Config.ToExecOptions())
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorConfig
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.Bench {
		return a.runBench(ctx, o, out)
	}
	return a.runCollide(ctx, o, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
