package bench

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rand"

	"github.com/agbru/hashprobe/internal/oracle"
)

type recordingOracle struct {
	mu     sync.Mutex
	inputs []string
	fail   bool
}

func (r *recordingOracle) Name() string { return "recording" }

func (r *recordingOracle) Probe(ctx context.Context, input string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	if r.fail {
		return "", errors.New("boom")
	}
	return "h", nil
}

func TestRandomString(t *testing.T) {
	t.Parallel()
	r := rand.New(1)
	s := RandomString(r, 500)
	assert.Len(t, s, 500)
	for _, c := range s {
		assert.Contains(t, alphabet, string(c))
	}
	assert.Empty(t, RandomString(r, 0))
}

func TestRandomString_SeedIsReproducible(t *testing.T) {
	t.Parallel()
	assert.Equal(t, RandomString(rand.New(42), 64), RandomString(rand.New(42), 64))
}

func TestRun(t *testing.T) {
	t.Parallel()
	o := &recordingOracle{}
	var streamed []int
	results, err := Run(context.Background(), o, Config{Lengths: []int{3, 10}, Trials: 4, Seed: 7}, func(r Result) {
		streamed = append(streamed, r.Length)
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int{3, 10}, streamed)

	require.Len(t, o.inputs, 8)
	for i := 1; i < 4; i++ {
		assert.Equal(t, o.inputs[0], o.inputs[i], "one input is reused for every trial of a length")
	}
	assert.Len(t, o.inputs[0], 3)
	assert.Len(t, o.inputs[4], 10)

	for _, r := range results {
		assert.Equal(t, 4, r.Trials)
		assert.Zero(t, r.Failures)
		assert.LessOrEqual(t, r.Fastest, r.Average)
		assert.LessOrEqual(t, r.Average, r.Slowest)
	}
}

func TestRun_CountsFailures(t *testing.T) {
	t.Parallel()
	results, err := Run(context.Background(), &recordingOracle{fail: true}, Config{Lengths: []int{5}, Trials: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, results[0].Failures)
	assert.Equal(t, "boom", results[0].LastError)
}

func TestRun_Builtin(t *testing.T) {
	t.Parallel()
	o, err := oracle.New("builtin:blake3", oracle.ExecOptions{})
	require.NoError(t, err)
	results, err := Run(context.Background(), o, Config{Lengths: []int{10, 1000}, Trials: 10}, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, &recordingOracle{}, Config{Lengths: []int{5}, Trials: 3}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_InvalidTrials(t *testing.T) {
	t.Parallel()
	_, err := Run(context.Background(), &recordingOracle{}, Config{Lengths: []int{5}}, nil)
	assert.Error(t, err)
}
