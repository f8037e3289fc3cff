package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/hashprobe/internal/progress"
	"github.com/agbru/hashprobe/internal/ui"
)

// MockSpinner for testing
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

func (m *MockSpinner) Suffix() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suffix
}

// withMockSpinner swaps newSpinner for the duration of the test.
func withMockSpinner(t *testing.T) *MockSpinner {
	t.Helper()
	mock := &MockSpinner{}
	orig := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	t.Cleanup(func() { newSpinner = orig })
	return mock
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(&buf))
	rs := &realSpinner{s}

	// Just verify these methods don't panic
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
}

func TestDisplayProgress(t *testing.T) {
	ui.SetTheme("none")
	defer ui.InitTheme(false)
	mock := withMockSpinner(t)

	ch := make(chan progress.Update, 4)
	ch <- progress.Update{WorkerIndex: 0, Processed: 5, Total: 10, Collisions: 1}
	ch <- progress.Update{WorkerIndex: 1, Processed: 10, Total: 10, Collisions: 2, Done: true}
	ch <- progress.Update{WorkerIndex: 0, Processed: 10, Total: 10, Collisions: 3, Done: true}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	var buf bytes.Buffer
	DisplayProgress(&wg, ch, 2, &buf)
	wg.Wait()

	if !mock.started || !mock.stopped {
		t.Errorf("spinner started=%v stopped=%v, want both true", mock.started, mock.stopped)
	}
	suffix := mock.Suffix()
	for _, want := range []string{"100.00%", "20 probed", "5 collisions"} {
		if !strings.Contains(suffix, want) {
			t.Errorf("final suffix %q does not contain %q", suffix, want)
		}
	}
}

func TestDisplayProgressZeroWorkers(t *testing.T) {
	mock := withMockSpinner(t)

	ch := make(chan progress.Update, 1)
	ch <- progress.Update{Processed: 1, Total: 1}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, 0, &bytes.Buffer{})
	wg.Wait()

	if mock.started {
		t.Error("spinner should not start without workers")
	}
	if _, ok := <-ch; ok {
		t.Error("channel should have been drained")
	}
}

func TestVerboseProgressReporter(t *testing.T) {
	t.Parallel()
	ch := make(chan progress.Update, 3)
	ch <- progress.Update{WorkerIndex: 0, Start: 1, End: 6, Processed: 3, Total: 6}
	ch <- progress.Update{WorkerIndex: 0, Start: 1, End: 6, Processed: 6, Total: 6, Collisions: 1, Done: true}
	ch <- progress.Update{WorkerIndex: 1, Start: 7, End: 12, Processed: 6, Total: 6, Failures: 2, Done: true}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	var buf bytes.Buffer
	VerboseProgressReporter{}.DisplayProgress(&wg, ch, 2, &buf)
	wg.Wait()

	out := buf.String()
	if got := strings.Count(out, "done:"); got != 2 {
		t.Fatalf("got %d done lines, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "worker 1/2 range 1-6: 3 of 6 inputs processed") {
		t.Errorf("missing intermediate progress line:\n%s", out)
	}
	if got := strings.Count(out, "inputs processed"); got != 1 {
		t.Errorf("got %d intermediate lines, want 1:\n%s", got, out)
	}
	if !strings.Contains(out, "worker 1/2 done: 6 inputs, 1 local collisions, 0 failures") {
		t.Errorf("missing first worker line:\n%s", out)
	}
	if !strings.Contains(out, "worker 2/2 done: 6 inputs, 0 local collisions, 2 failures") {
		t.Errorf("missing second worker line:\n%s", out)
	}
}

func TestColors(t *testing.T) {
	ui.SetTheme("dark")
	if ui.ColorRed() == "" {
		t.Error("ColorRed should not be empty with colors enabled")
	}
	ui.SetTheme("none")
	defer ui.InitTheme(false)
	if ui.ColorRed() != "" {
		t.Error("ColorRed should be empty with the none theme")
	}
}
