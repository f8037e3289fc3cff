package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/hashprobe/internal/errors"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig("hashprobe", nil, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, int64(DefaultN), cfg.N)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultOracle, cfg.Oracle)
	assert.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, int64(DefaultProgressEvery), cfg.ProgressEvery)
	assert.Equal(t, []int{10, 50, 100, 1000, 10000, 100000}, cfg.BenchLengths)
	assert.Equal(t, DefaultBenchTrials, cfg.BenchTrials)
	assert.False(t, cfg.FailFast)
	assert.False(t, cfg.IgnoreExitCode)
}

func TestParseConfig_Flags(t *testing.T) {
	args := []string{
		"-n", "500", "-p", "5", "-oracle", "builtin:xxhash64/12",
		"-probe-timeout", "1s", "-timeout", "30s", "-fail-fast",
		"-ignore-exit-code", "-o", "report.json", "-q", "-fail-on-collision",
	}
	cfg, err := ParseConfig("hashprobe", args, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, int64(500), cfg.N)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "builtin:xxhash64/12", cfg.Oracle)
	assert.Equal(t, time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.FailFast)
	assert.True(t, cfg.IgnoreExitCode)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.FailOnCollision)
	assert.Equal(t, "report.json", cfg.OutputFile)

	run := cfg.ToRunConfig()
	assert.Equal(t, int64(500), run.N)
	assert.Equal(t, 5, run.Workers)
	assert.True(t, run.FailFast)

	opts := cfg.ToExecOptions()
	assert.Equal(t, time.Second, opts.Timeout)
	assert.True(t, opts.IgnoreExitCode)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Zero N", []string{"-n", "0"}},
		{"Negative workers", []string{"-workers", "-1"}},
		{"More workers than inputs", []string{"-n", "3", "-p", "4"}},
		{"Empty oracle", []string{"-oracle", ""}},
		{"Zero probe timeout", []string{"-probe-timeout", "0s"}},
		{"Quiet and verbose", []string{"-q", "-v"}},
		{"Bad log level", []string{"-log-level", "loud"}},
		{"Bad bench length", []string{"-bench", "-bench-lengths", "10,x"}},
		{"Unknown shell", []string{"-completion", "tcsh"}},
		{"Positional argument", []string{"extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig("hashprobe", tt.args, &bytes.Buffer{})
			var cfgErr apperrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestParseConfig_Help(t *testing.T) {
	var buf bytes.Buffer
	_, err := ParseConfig("hashprobe", []string{"-h"}, &buf)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, buf.String(), "-oracle")
}

func TestParseConfig_BenchSkipsRangeChecks(t *testing.T) {
	cfg, err := ParseConfig("hashprobe", []string{"-bench", "-n", "0", "-bench-lengths", "5, 7", "-seed", "42"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 7}, cfg.BenchLengths)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HASHPROBE_N", "777")
	t.Setenv("HASHPROBE_WORKERS", "7")
	t.Setenv("HASHPROBE_ORACLE", "builtin:blake3")
	t.Setenv("HASHPROBE_FAIL_FAST", "yes")
	t.Setenv("HASHPROBE_PROBE_TIMEOUT", "250ms")
	t.Setenv("HASHPROBE_TIMEOUT", "not-a-duration")

	cfg, err := ParseConfig("hashprobe", []string{"-p", "3"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, int64(777), cfg.N)
	assert.Equal(t, 3, cfg.Workers, "command-line flags win over the environment")
	assert.Equal(t, "builtin:blake3", cfg.Oracle)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, 250*time.Millisecond, cfg.ProbeTimeout)
	assert.Equal(t, DefaultTimeout, cfg.Timeout, "unparseable values are ignored")
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashprobe.env")
	require.NoError(t, os.WriteFile(path, []byte("HASHPROBE_N=1234\nHASHPROBE_WORKERS=2\n"), 0o600))
	// godotenv sets variables for the whole process; t.Setenv restores them.
	t.Setenv("HASHPROBE_N", "")
	t.Setenv("HASHPROBE_WORKERS", "9")
	require.NoError(t, os.Unsetenv("HASHPROBE_N"))

	cfg, err := ParseConfig("hashprobe", []string{"-env-file", path}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), cfg.N)
	assert.Equal(t, 9, cfg.Workers, "the environment wins over the dotenv file")

	_, err = ParseConfig("hashprobe", []string{"-env-file", filepath.Join(dir, "missing.env")}, &bytes.Buffer{})
	var cfgErr apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseBool(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"YES", true, false},
		{"1", true, false},
		{"false", false, false},
		{"No", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		got, err := parseBool(tt.in)
		assert.Equal(t, tt.wantErr, err != nil, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseLengths(t *testing.T) {
	t.Parallel()
	got, err := ParseLengths(" 1,2 ,, 3")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	_, err = ParseLengths("1,-2")
	assert.Error(t, err)
}
