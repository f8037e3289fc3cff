package config

import (
	"flag"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) []string {
	var names []string
	fs.Visit(func(f *flag.Flag) { names = append(names, f.Name) })
	return names
}

// envOverride binds HASHPROBE_<key> to a config field. flags lists the
// command-line names that take precedence over the variable.
type envOverride struct {
	key   string
	flags []string
	apply func(*AppConfig, string)
}

// parsed builds an apply function that ignores values parse rejects.
func parsed[T any](parse func(string) (T, error), set func(*AppConfig, T)) func(*AppConfig, string) {
	return func(c *AppConfig, raw string) {
		if v, err := parse(raw); err == nil {
			set(c, v)
		}
	}
}

func parseInt64(s string) (int64, error)   { return strconv.ParseInt(s, 10, 64) }
func parseUint64(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }
func parseString(s string) (string, error) { return s, nil }

// parseBool accepts true/1/yes and false/0/no in any case.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

var envOverrides = []envOverride{
	{"N", []string{"n"}, parsed(parseInt64, func(c *AppConfig, v int64) { c.N = v })},
	{"WORKERS", []string{"workers", "p"}, parsed(strconv.Atoi, func(c *AppConfig, v int) { c.Workers = v })},
	{"PROGRESS_EVERY", []string{"progress-every"}, parsed(parseInt64, func(c *AppConfig, v int64) { c.ProgressEvery = v })},
	{"BENCH_TRIALS", []string{"bench-trials"}, parsed(strconv.Atoi, func(c *AppConfig, v int) { c.BenchTrials = v })},
	{"SEED", []string{"seed"}, parsed(parseUint64, func(c *AppConfig, v uint64) { c.Seed = v })},

	{"TIMEOUT", []string{"timeout"}, parsed(time.ParseDuration, func(c *AppConfig, v time.Duration) { c.Timeout = v })},
	{"PROBE_TIMEOUT", []string{"probe-timeout"}, parsed(time.ParseDuration, func(c *AppConfig, v time.Duration) { c.ProbeTimeout = v })},

	{"ORACLE", []string{"oracle"}, parsed(parseString, func(c *AppConfig, v string) { c.Oracle = v })},
	{"OUTPUT", []string{"output", "o"}, parsed(parseString, func(c *AppConfig, v string) { c.OutputFile = v })},
	{"METRICS_ADDR", []string{"metrics-addr"}, parsed(parseString, func(c *AppConfig, v string) { c.MetricsAddr = v })},
	{"LOG_LEVEL", []string{"log-level"}, parsed(parseString, func(c *AppConfig, v string) { c.LogLevel = v })},
	{"BENCH_LENGTHS", []string{"bench-lengths"}, parsed(parseString, func(c *AppConfig, v string) { c.benchLengths = v })},

	{"IGNORE_EXIT_CODE", []string{"ignore-exit-code"}, parsed(parseBool, func(c *AppConfig, v bool) { c.IgnoreExitCode = v })},
	{"FAIL_FAST", []string{"fail-fast"}, parsed(parseBool, func(c *AppConfig, v bool) { c.FailFast = v })},
	{"FAIL_ON_COLLISION", []string{"fail-on-collision"}, parsed(parseBool, func(c *AppConfig, v bool) { c.FailOnCollision = v })},
	{"VERBOSE", []string{"v", "verbose"}, parsed(parseBool, func(c *AppConfig, v bool) { c.Verbose = v })},
	{"QUIET", []string{"quiet", "q"}, parsed(parseBool, func(c *AppConfig, v bool) { c.Quiet = v })},
	{"TUI", []string{"tui"}, parsed(parseBool, func(c *AppConfig, v bool) { c.TUI = v })},
	{"NO_COLOR", []string{"no-color"}, parsed(parseBool, func(c *AppConfig, v bool) { c.NoColor = v })},
	{"BENCH", []string{"bench"}, parsed(parseBool, func(c *AppConfig, v bool) { c.Bench = v })},
}

// applyEnvOverrides applies HASHPROBE_* variables to the fields whose flags
// were not given: command line, then environment, then defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	given := setFlags(fs)
	for _, o := range envOverrides {
		if slices.ContainsFunc(o.flags, func(name string) bool { return slices.Contains(given, name) }) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.key); val != "" {
			o.apply(config, val)
		}
	}
}
