// Package config parses and validates the command-line configuration of
// hashprobe. Flags take precedence over HASHPROBE_* environment variables,
// which take precedence over an optional dotenv file and the defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/orchestration"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "HASHPROBE_"

// Defaults.
const (
	DefaultN             = 1_000_000
	DefaultWorkers       = 4
	DefaultOracle        = "./hhvlm"
	DefaultProbeTimeout  = 10 * time.Second
	DefaultTimeout       = 2 * time.Hour
	DefaultProgressEvery = 1000
	DefaultBenchLengths  = "10,50,100,1000,10000,100000"
	DefaultBenchTrials   = 1000
	DefaultLogLevel      = "info"
)

// completionShells lists the accepted -completion values.
var completionShells = []string{"bash", "zsh", "fish"}

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N is the size of the input space [1..N].
	N int64
	// Workers is the number of concurrent workers P.
	Workers int
	// Oracle is an executable path or a builtin:<algo>[/bits] spec.
	Oracle string
	// ProbeTimeout bounds a single oracle invocation.
	ProbeTimeout time.Duration
	// Timeout bounds the whole run.
	Timeout time.Duration
	// IgnoreExitCode accepts oracle output whatever its exit status.
	IgnoreExitCode bool
	// FailFast aborts the run on the first probe failure.
	FailFast bool
	// ProgressEvery is the number of inputs between progress updates.
	ProgressEvery int64
	// FailOnCollision makes collisions an error (exit code 3).
	FailOnCollision bool
	// OutputFile receives the JSON report when set.
	OutputFile string
	Quiet      bool
	Verbose    bool
	TUI        bool
	// MetricsAddr serves Prometheus metrics on this address when set.
	MetricsAddr string
	LogLevel    string
	NoColor     bool
	EnvFile     string

	// Bench selects the latency benchmark instead of the collision test.
	Bench        bool
	BenchLengths []int
	BenchTrials  int
	// Seed seeds benchmark input generation; zero picks a random seed.
	Seed uint64

	// Completion, when set, prints a shell completion script and exits.
	Completion string

	benchLengths string
}

// Validate checks the semantic validity of the configuration.
func (c AppConfig) Validate() error {
	if c.Completion != "" {
		for _, s := range completionShells {
			if c.Completion == s {
				return nil
			}
		}
		return apperrors.NewConfigError("unsupported shell %q for -completion (accepted: %s)", c.Completion, strings.Join(completionShells, ", "))
	}
	if strings.TrimSpace(c.Oracle) == "" {
		return apperrors.NewConfigError("the -oracle flag must not be empty")
	}
	if c.ProbeTimeout <= 0 {
		return apperrors.NewConfigError("the -probe-timeout value must be positive")
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("the -timeout value must be positive")
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("-quiet and -verbose cannot be combined")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid -log-level %q", c.LogLevel)
	}
	if c.Bench {
		if c.BenchTrials <= 0 {
			return apperrors.NewConfigError("the -bench-trials value must be positive")
		}
		if len(c.BenchLengths) == 0 {
			return apperrors.NewConfigError("the -bench-lengths list must not be empty")
		}
		return nil
	}
	if c.N <= 0 {
		return apperrors.NewConfigError("the -n value must be positive, got %d", c.N)
	}
	if c.Workers <= 0 {
		return apperrors.NewConfigError("the -workers value must be positive, got %d", c.Workers)
	}
	if int64(c.Workers) > c.N {
		return apperrors.NewConfigError("the -workers value (%d) cannot exceed -n (%d)", c.Workers, c.N)
	}
	if c.ProgressEvery <= 0 {
		return apperrors.NewConfigError("the -progress-every value must be positive")
	}
	return nil
}

// ToRunConfig projects the configuration onto the orchestrator's inputs.
func (c AppConfig) ToRunConfig() orchestration.RunConfig {
	return orchestration.RunConfig{
		N:             c.N,
		Workers:       c.Workers,
		FailFast:      c.FailFast,
		ProgressEvery: c.ProgressEvery,
	}
}

// ToExecOptions projects the configuration onto the oracle options.
func (c AppConfig) ToExecOptions() oracle.ExecOptions {
	return oracle.ExecOptions{
		Timeout:        c.ProbeTimeout,
		IgnoreExitCode: c.IgnoreExitCode,
	}
}

// ToPresentationOptions projects the configuration onto the presenter options.
func (c AppConfig) ToPresentationOptions() orchestration.PresentationOptions {
	return orchestration.PresentationOptions{
		Verbose:         c.Verbose,
		Quiet:           c.Quiet,
		FailOnCollision: c.FailOnCollision,
	}
}

// ParseConfig parses args into an AppConfig. A dotenv file named by
// -env-file (or HASHPROBE_ENV_FILE) is loaded first; it never overrides
// variables already present in the environment.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	config := AppConfig{}

	fs.Int64Var(&config.N, "n", DefaultN, "Size N of the input space [1..N].")
	fs.IntVar(&config.Workers, "workers", DefaultWorkers, "Number of concurrent workers.")
	fs.IntVar(&config.Workers, "p", DefaultWorkers, "Number of concurrent workers (shorthand).")
	fs.StringVar(&config.Oracle, "oracle", DefaultOracle, "Hash oracle executable, or builtin:<"+strings.Join(oracle.BuiltinAlgorithms(), "|")+">[/bits].")
	fs.DurationVar(&config.ProbeTimeout, "probe-timeout", DefaultProbeTimeout, "Time limit for one oracle invocation.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Time limit for the whole run.")
	fs.BoolVar(&config.IgnoreExitCode, "ignore-exit-code", false, "Accept oracle output regardless of its exit status.")
	fs.BoolVar(&config.FailFast, "fail-fast", false, "Abort the run on the first probe failure.")
	fs.Int64Var(&config.ProgressEvery, "progress-every", DefaultProgressEvery, "Inputs between two progress updates.")
	fs.BoolVar(&config.FailOnCollision, "fail-on-collision", false, "Exit with status 3 when collisions are found.")
	fs.StringVar(&config.OutputFile, "output", "", "Write the JSON report to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Write the JSON report to this file (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the summary line.")
	fs.BoolVar(&config.Quiet, "q", false, "Print only the summary line (shorthand).")
	fs.BoolVar(&config.Verbose, "verbose", false, "List every collision and show memory statistics.")
	fs.BoolVar(&config.Verbose, "v", false, "List every collision and show memory statistics (shorthand).")
	fs.BoolVar(&config.TUI, "tui", false, "Show the interactive dashboard.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.EnvFile, "env-file", "", "Load environment variables from this dotenv file.")
	fs.BoolVar(&config.Bench, "bench", false, "Measure oracle latency instead of testing for collisions.")
	fs.StringVar(&config.benchLengths, "bench-lengths", DefaultBenchLengths, "Comma-separated benchmark input lengths.")
	fs.IntVar(&config.BenchTrials, "bench-trials", DefaultBenchTrials, "Oracle invocations per benchmark length.")
	fs.Uint64Var(&config.Seed, "seed", 0, "Benchmark RNG seed (0 picks a random seed).")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")
	fs.Bool("version", false, "Print version information.")
	fs.Bool("V", false, "Print version information (shorthand).")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if !slices.Contains(setFlags(fs), "env-file") {
		config.EnvFile = getEnvString("ENV_FILE", "")
	}
	if config.EnvFile != "" {
		if err := godotenv.Load(config.EnvFile); err != nil {
			return AppConfig{}, apperrors.NewConfigError("cannot load env file %q: %v", config.EnvFile, err)
		}
	}
	applyEnvOverrides(&config, fs)

	lengths, err := ParseLengths(config.benchLengths)
	if err != nil {
		return AppConfig{}, err
	}
	config.BenchLengths = lengths

	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

// ParseLengths parses a comma-separated list of positive integers.
func ParseLengths(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n <= 0 {
			return nil, apperrors.NewConfigError("invalid benchmark length %q", field)
		}
		out = append(out, n)
	}
	return out, nil
}

// String summarizes the run-relevant settings for logs.
func (c AppConfig) String() string {
	if c.Bench {
		return fmt.Sprintf("bench oracle=%s lengths=%v trials=%d", c.Oracle, c.BenchLengths, c.BenchTrials)
	}
	return fmt.Sprintf("n=%d workers=%d oracle=%s probe-timeout=%s fail-fast=%t", c.N, c.Workers, c.Oracle, c.ProbeTimeout, c.FailFast)
}
