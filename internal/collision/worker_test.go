package collision

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/oracle/mocks"
	"github.com/agbru/hashprobe/internal/partition"
	"github.com/agbru/hashprobe/internal/progress"
)

// tableOracle answers from a fixed input->hash table and fails for inputs
// listed in fail.
type tableOracle struct {
	hashes map[string]string
	fail   map[string]error
}

func (o tableOracle) Name() string { return "table" }

func (o tableOracle) Probe(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := o.fail[input]; ok {
		return "", err
	}
	if h, ok := o.hashes[input]; ok {
		return h, nil
	}
	return "h" + input, nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[Scope]int
}

func (r *countingRecorder) ObserveCollision(s Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[Scope]int)
	}
	r.counts[s]++
}

func TestWorker_LocalDetection(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := mocks.NewMockOracle(ctrl)
	gomock.InOrder(
		o.EXPECT().Probe(gomock.Any(), "1").Return("H1", nil),
		o.EXPECT().Probe(gomock.Any(), "2").Return("H1", nil),
		o.EXPECT().Probe(gomock.Any(), "3").Return("H2", nil),
	)
	rec := &countingRecorder{}

	w := &Worker{Chunk: partition.Chunk{Start: 1, End: 3}, Oracle: o, Recorder: rec}
	res, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.Processed)
	assert.Equal(t, int64(1), res.LocalCollisions)
	want := []CollisionRecord{{Hash: "H1", First: 1, Second: 2, Scope: ScopeLocal}}
	if diff := cmp.Diff(want, res.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, res.Set)
	assert.Equal(t, 2, res.Set.Len())
	first, ok := res.Set.Lookup("H1")
	require.True(t, ok)
	assert.Equal(t, Input(1), first)
	assert.Equal(t, 1, rec.counts[ScopeLocal])
}

func TestWorker_FailFast(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := mocks.NewMockOracle(ctrl)
	protoErr := apperrors.OracleProtocolError{Input: "2", Output: "garbage"}
	o.EXPECT().Probe(gomock.Any(), "1").Return("H1", nil)
	o.EXPECT().Probe(gomock.Any(), "2").Return("", protoErr)

	w := &Worker{Chunk: partition.Chunk{Start: 1, End: 5}, Oracle: o, FailFast: true}
	res, err := w.Run(context.Background())
	require.Error(t, err)
	var got apperrors.OracleProtocolError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "2", got.Input)
	assert.Nil(t, res.Set, "an aborted worker publishes nothing")
}

func TestWorker_TolerantRecordsFailures(t *testing.T) {
	t.Parallel()
	procErr := apperrors.OracleProcessError{Input: "2", ExitCode: 1}
	o := tableOracle{
		hashes: map[string]string{"1": "A", "3": "A"},
		fail:   map[string]error{"2": procErr},
	}

	w := &Worker{Chunk: partition.Chunk{Start: 1, End: 4}, Oracle: o}
	res, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), res.Processed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, Input(2), res.Failures[0].Input)
	assert.ErrorIs(t, res.Failures[0].Err, procErr)
	assert.Equal(t, int64(1), res.LocalCollisions)
	assert.Equal(t, 2, res.Set.Len())
	_, ok := res.Set.Lookup("h2")
	assert.False(t, ok, "failed inputs never reach the result set")
}

func TestWorker_Progress(t *testing.T) {
	t.Parallel()
	ch := make(chan progress.Update, 16)
	w := &Worker{
		Index:         3,
		Chunk:         partition.Chunk{Index: 3, Start: 1, End: 10},
		Oracle:        tableOracle{},
		ProgressEvery: 4,
		Progress:      ch,
	}
	_, err := w.Run(context.Background())
	require.NoError(t, err)
	close(ch)

	var processed []int64
	var last progress.Update
	for u := range ch {
		assert.Equal(t, 3, u.WorkerIndex)
		assert.Equal(t, int64(10), u.Total)
		assert.Equal(t, [2]int64{1, 10}, [2]int64{u.Start, u.End})
		processed = append(processed, u.Processed)
		last = u
	}
	assert.Equal(t, []int64{4, 8, 10}, processed)
	assert.True(t, last.Done)
	assert.InDelta(t, 1.0, last.Value(), 1e-9)
}

func TestWorker_Cancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	o := probeFunc(func(ctx context.Context, input string) (string, error) {
		calls++
		if calls == 3 {
			cancel()
			return "", ctx.Err()
		}
		return "h" + input, nil
	})

	w := &Worker{Chunk: partition.Chunk{Start: 1, End: 100}, Oracle: o}
	_, err := w.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 3, calls, "no probe is issued after cancellation")
}

func TestWorker_CancellationWinsOverTolerance(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	o := probeFunc(func(ctx context.Context, input string) (string, error) {
		if input == "2" {
			cancel()
			return "", apperrors.OracleProcessError{Input: input, ExitCode: -1, Cause: context.Canceled}
		}
		return "h" + input, nil
	})

	w := &Worker{Chunk: partition.Chunk{Start: 1, End: 5}, Oracle: o}
	_, err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type probeFunc func(ctx context.Context, input string) (string, error)

func (f probeFunc) Name() string { return "func" }

func (f probeFunc) Probe(ctx context.Context, input string) (string, error) { return f(ctx, input) }

func TestResultSet_InsertionOrder(t *testing.T) {
	t.Parallel()
	s := NewResultSet(0)
	for i, h := range []HashValue{"c", "a", "b", "a"} {
		s.Insert(h, Input(i+1))
	}
	var got []string
	s.Each(func(h HashValue, in Input) {
		got = append(got, string(h)+"="+strconv.FormatInt(int64(in), 10))
	})
	assert.Equal(t, []string{"c=1", "a=2", "b=3"}, got)
}
