package orchestration

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/agbru/hashprobe/internal/collision"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/oracle/mocks"
	"github.com/agbru/hashprobe/internal/progress"
)

// MockResultPresenter records the report it was given.
type MockResultPresenter struct {
	got *collision.Report
}

func (m MockResultPresenter) PresentReport(report collision.Report, _ PresentationOptions, _ io.Writer) {
	if m.got != nil {
		*m.got = report
	}
}

// modOracle hashes input i to "m<i mod m>", failing for inputs in fail.
type modOracle struct {
	m     int
	fail  map[string]error
	calls atomic.Int64
}

func (o *modOracle) Name() string { return "mod" }

func (o *modOracle) Probe(ctx context.Context, input string) (string, error) {
	o.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := o.fail[input]; ok {
		return "", err
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		return "", err
	}
	return "m" + strconv.Itoa(n%o.m), nil
}

type scopeCounter struct {
	local, global atomic.Int64
}

func (c *scopeCounter) ObserveCollision(s collision.Scope) {
	if s == collision.ScopeLocal {
		c.local.Add(1)
	} else {
		c.global.Add(1)
	}
}

type gauge struct {
	cur, peak atomic.Int64
}

func (g *gauge) Inc() {
	v := g.cur.Add(1)
	for {
		p := g.peak.Load()
		if v <= p || g.peak.CompareAndSwap(p, v) {
			return
		}
	}
}

func (g *gauge) Dec() { g.cur.Add(-1) }

func TestRun(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		n       int64
		workers int
		m       int
		want    int64
	}{
		{"Single worker", 20, 1, 5, 15},
		{"Many workers", 1000, 8, 97, 903},
		{"No collisions", 50, 4, 1000, 0},
		{"One input per worker", 4, 4, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := &modOracle{m: tt.m}
			rec := &scopeCounter{}
			active := &gauge{}
			cfg := RunConfig{N: tt.n, Workers: tt.workers, Recorder: rec, ActiveWorkers: active}

			report, err := Run(context.Background(), cfg, o, NullProgressReporter{}, io.Discard)
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if report.TotalCollisions != tt.want {
				t.Errorf("TotalCollisions = %d, want %d", report.TotalCollisions, tt.want)
			}
			if report.TotalCollisions != report.Hashed-report.DistinctHashes {
				t.Errorf("Total %d != Hashed %d - Distinct %d", report.TotalCollisions, report.Hashed, report.DistinctHashes)
			}
			if got := o.calls.Load(); got != tt.n {
				t.Errorf("oracle called %d times, want %d", got, tt.n)
			}
			if report.Workers != tt.workers || report.N != tt.n || report.Oracle != "mod" {
				t.Errorf("unexpected report header: %+v", report)
			}
			if rec.local.Load() != report.LocalCollisions || rec.global.Load() != report.GlobalCollisions {
				t.Errorf("recorder saw %d/%d, report has %d/%d",
					rec.local.Load(), rec.global.Load(), report.LocalCollisions, report.GlobalCollisions)
			}
			if active.cur.Load() != 0 || active.peak.Load() < 1 || active.peak.Load() > int64(tt.workers) {
				t.Errorf("active workers gauge: cur=%d peak=%d", active.cur.Load(), active.peak.Load())
			}
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()
	cfg := RunConfig{N: 500, Workers: 7}
	first, err := Run(context.Background(), cfg, &modOracle{m: 31}, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Run(context.Background(), cfg, &modOracle{m: 31}, nil, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		first.Duration, again.Duration = 0, 0
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestRun_GlobalCollisionAcrossChunks(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	o := mocks.NewMockOracle(ctrl)
	o.EXPECT().Name().Return("mock").AnyTimes()
	hashes := map[string]string{"1": "X", "2": "Y", "3": "X", "4": "Z"}
	o.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input string) (string, error) { return hashes[input], nil },
	).Times(4)

	report, err := Run(context.Background(), RunConfig{N: 4, Workers: 2}, o, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	want := []collision.CollisionRecord{{Hash: "X", First: 1, Second: 3, Scope: collision.ScopeGlobal}}
	if diff := cmp.Diff(want, report.Collisions); diff != "" {
		t.Errorf("collisions mismatch (-want +got):\n%s", diff)
	}
	if report.LocalCollisions != 0 || report.GlobalCollisions != 1 {
		t.Errorf("local=%d global=%d, want 0/1", report.LocalCollisions, report.GlobalCollisions)
	}
}

func TestRun_FailFast(t *testing.T) {
	t.Parallel()
	protoErr := apperrors.OracleProtocolError{Input: "7", Output: "oops"}
	o := &modOracle{m: 3, fail: map[string]error{"7": protoErr}}

	_, err := Run(context.Background(), RunConfig{N: 100, Workers: 4, FailFast: true}, o, nil, io.Discard)
	var got apperrors.OracleProtocolError
	if !errors.As(err, &got) {
		t.Fatalf("expected OracleProtocolError, got %v", err)
	}
	if got.Input != "7" {
		t.Errorf("Input = %q, want 7", got.Input)
	}
}

func TestRun_TolerantFailures(t *testing.T) {
	t.Parallel()
	o := &modOracle{m: 1000, fail: map[string]error{
		"7":  apperrors.OracleProtocolError{Input: "7"},
		"42": apperrors.OracleProcessError{Input: "42", ExitCode: 1},
	}}

	report, err := Run(context.Background(), RunConfig{N: 100, Workers: 4}, o, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if report.Failures != 2 || report.Hashed != 98 || report.Processed != 100 {
		t.Errorf("failures=%d hashed=%d processed=%d", report.Failures, report.Hashed, report.Processed)
	}
	var inputs []collision.Input
	for _, f := range report.FailureRecords {
		inputs = append(inputs, f.Input)
	}
	if diff := cmp.Diff([]collision.Input{7, 42}, inputs); diff != "" {
		t.Errorf("failure inputs (-want +got):\n%s", diff)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  RunConfig
		o    oracle.Oracle
	}{
		{"Zero N", RunConfig{N: 0, Workers: 1}, &modOracle{m: 2}},
		{"More workers than inputs", RunConfig{N: 3, Workers: 4}, &modOracle{m: 2}},
		{"No oracle", RunConfig{N: 3, Workers: 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Run(context.Background(), tt.cfg, tt.o, nil, io.Discard)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestRun_ProgressReachesReporter(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	done := map[int]bool{}
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, ch <-chan progress.Update, numWorkers int, _ io.Writer) {
		defer wg.Done()
		if numWorkers != 3 {
			t.Errorf("numWorkers = %d, want 3", numWorkers)
		}
		for u := range ch {
			if u.Done {
				mu.Lock()
				done[u.WorkerIndex] = true
				mu.Unlock()
			}
		}
	})

	_, err := Run(context.Background(), RunConfig{N: 30, Workers: 3, ProgressEvery: 2}, &modOracle{m: 7}, reporter, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(done) != 3 {
		t.Errorf("final updates from %d workers, want 3", len(done))
	}
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	slow := &slowOracle{delay: 20 * time.Millisecond}

	_, err := Run(ctx, RunConfig{N: 1000, Workers: 2}, slow, nil, io.Discard)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if apperrors.ExitCodeFor(err) != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", apperrors.ExitCodeFor(err), apperrors.ExitErrorTimeout)
	}
}

func TestAnalyzeReport(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		report collision.Report
		opts   PresentationOptions
		want   int
	}{
		{"Clean run", collision.Report{}, PresentationOptions{}, apperrors.ExitSuccess},
		{"Collisions are informational by default", collision.Report{TotalCollisions: 3}, PresentationOptions{}, apperrors.ExitSuccess},
		{"Collisions fail when requested", collision.Report{TotalCollisions: 3}, PresentationOptions{FailOnCollision: true}, apperrors.ExitErrorCollision},
		{"Probe failures", collision.Report{Failures: 1, TotalCollisions: 3}, PresentationOptions{FailOnCollision: true}, apperrors.ExitErrorProbeFailures},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var seen collision.Report
			code := AnalyzeReport(tt.report, tt.opts, MockResultPresenter{got: &seen}, io.Discard)
			if code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
			if diff := cmp.Diff(tt.report, seen); diff != "" {
				t.Errorf("presenter got a different report (-want +got):\n%s", diff)
			}
		})
	}
}
