package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/hashprobe/internal/collision"
	"github.com/agbru/hashprobe/internal/config"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/oracle"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		N:             64,
		Workers:       2,
		Oracle:        "builtin:xxhash64",
		ProbeTimeout:  time.Second,
		Timeout:       time.Minute,
		ProgressEvery: 8,
	}
}

func newTestModel(t *testing.T, cfg config.AppConfig) Model {
	t.Helper()
	o, err := oracle.ParseBuiltin(cfg.Oracle)
	if err != nil {
		t.Fatalf("ParseBuiltin: %v", err)
	}
	m := NewModel(context.Background(), o, cfg, cfg.ToRunConfig(), "v1.0.0")
	t.Cleanup(m.cancel)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := newTestModel(t, testConfig())
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestModel_ViewAfterResize(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})

	view := m.View()
	for _, want := range []string{"hashprobe v1.0.0", "builtin:xxhash64", "Events", "Progress Chart", "Probed:", "RUNNING"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestModel_ProgressUpdatesPanels(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})

	m, _ = update(t, m, ProgressMsg{WorkerIndex: 1, Value: 1, AverageProgress: 0.5, Processed: 32, Collisions: 2, WorkersDone: 1, WorkerDone: true})

	if m.metrics.processed != 32 || m.metrics.collisions != 2 {
		t.Errorf("metrics not updated: processed=%d collisions=%d", m.metrics.processed, m.metrics.collisions)
	}
	if m.chart.workers[1] != 1 || m.chart.averageProgress != 0.5 {
		t.Errorf("chart not updated: %v avg=%f", m.chart.workers, m.chart.averageProgress)
	}
	last := m.logs.Entries()[len(m.logs.Entries())-1]
	if !strings.Contains(last, "worker 2") || !strings.Contains(last, "1/2 finished") {
		t.Errorf("unexpected last log entry %q", last)
	}
}

func TestModel_PauseFreezesChart(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if !m.paused {
		t.Fatal("expected model to be paused")
	}

	m, _ = update(t, m, ProgressMsg{WorkerIndex: 0, Value: 0.5, AverageProgress: 0.25, Processed: 16})
	if m.chart.workers[0] != 0 {
		t.Error("expected chart to stay frozen while paused")
	}
	if m.metrics.processed != 16 {
		t.Error("expected counters to keep updating while paused")
	}
}

func TestModel_ReportAndCompletion(t *testing.T) {
	m := newTestModel(t, testConfig())

	report := collision.Report{
		N:               64,
		TotalCollisions: 1,
		LocalCollisions: 1,
		Collisions:      []collision.CollisionRecord{{Hash: "ab", First: 3, Second: 9, Scope: collision.ScopeLocal}},
	}
	m, _ = update(t, m, ReportMsg{Report: report})
	joined := strings.Join(m.logs.Entries(), "\n")
	if !strings.Contains(joined, "Total collisions found: 1 out of 64 hashes") {
		t.Errorf("expected summary in log:\n%s", joined)
	}
	if !strings.Contains(joined, "3 / 9") {
		t.Errorf("expected collision pair in log:\n%s", joined)
	}

	// Stale completion from an earlier generation is ignored.
	m, _ = update(t, m, RunCompleteMsg{ExitCode: 5, Generation: 7})
	if m.done {
		t.Fatal("stale completion should be ignored")
	}

	m, _ = update(t, m, RunCompleteMsg{ExitCode: apperrors.ExitErrorCollision, Generation: 0})
	if !m.done || m.exitCode != apperrors.ExitErrorCollision {
		t.Errorf("done=%v exitCode=%d, want done with %d", m.done, m.exitCode, apperrors.ExitErrorCollision)
	}
}

func TestModel_ErrorMsg(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, _ = update(t, m, ErrorMsg{Err: errors.New("oracle vanished")})
	if !m.done || !m.footer.failed {
		t.Error("expected model to be done and failed")
	}
	if !strings.Contains(strings.Join(m.logs.Entries(), "\n"), "oracle vanished") {
		t.Error("expected error in log")
	}
}

func TestModel_ContextCancelled(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, cmd := update(t, m, ContextCancelledMsg{Err: context.DeadlineExceeded})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if m.exitCode != apperrors.ExitErrorTimeout {
		t.Errorf("exitCode = %d, want %d", m.exitCode, apperrors.ExitErrorTimeout)
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if m.ctx.Err() == nil {
		t.Error("expected run context to be canceled")
	}
	if m.exitCode != apperrors.ExitErrorCanceled {
		t.Errorf("exitCode = %d, want %d", m.exitCode, apperrors.ExitErrorCanceled)
	}
}

func TestModel_ResetKey(t *testing.T) {
	m := newTestModel(t, testConfig())
	oldCtx := m.ctx
	m, _ = update(t, m, RunCompleteMsg{ExitCode: 0})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	t.Cleanup(m.cancel)
	if cmd == nil {
		t.Fatal("expected restart commands")
	}
	if m.generation != 1 {
		t.Errorf("generation = %d, want 1", m.generation)
	}
	if oldCtx.Err() == nil {
		t.Error("expected the previous run context to be canceled")
	}
	if m.done {
		t.Error("expected done to be cleared")
	}
}

func TestModel_ResetDropsAbandonedRunMessages(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	t.Cleanup(m.cancel)
	if m.generation != 1 || m.done {
		t.Fatalf("generation=%d done=%v, want a live run at generation 1", m.generation, m.done)
	}
	before := len(m.logs.Entries())

	// The canceled generation 0 run reports its error and last progress.
	stale := []tea.Msg{
		ProgressMsg{Generation: 0, WorkerIndex: 0, Value: 0.5, Processed: 30, Collisions: 4},
		ProgressDoneMsg{Generation: 0},
		ReportMsg{Generation: 0, Report: collision.Report{N: 64, TotalCollisions: 9}},
		ErrorMsg{Generation: 0, Err: context.Canceled},
	}
	for _, msg := range stale {
		m, _ = update(t, m, msg)
	}

	if m.done || m.footer.failed {
		t.Errorf("done=%v failed=%v, want the restarted run untouched", m.done, m.footer.failed)
	}
	if m.metrics.processed != 0 || m.chart.workers[0] != 0 {
		t.Errorf("processed=%d worker0=%f, want counters of the new run", m.metrics.processed, m.chart.workers[0])
	}
	if got := len(m.logs.Entries()); got != before {
		t.Errorf("log grew from %d to %d entries", before, got)
	}
	if _, cmd := update(t, m, TickMsg(time.Now())); cmd == nil {
		t.Error("expected sampling to continue after stale messages")
	}

	// Messages of the live generation still apply.
	m, _ = update(t, m, ProgressMsg{Generation: 1, WorkerIndex: 1, Value: 0.25, Processed: 8})
	if m.metrics.processed != 8 {
		t.Errorf("processed = %d, want 8", m.metrics.processed)
	}
}

func TestModel_ProgressDone(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, _ = update(t, m, ProgressMsg{WorkerIndex: 0, Value: 1, Processed: 32, WorkersDone: 1, WorkerDone: true, ETA: time.Minute})
	m, _ = update(t, m, ProgressMsg{WorkerIndex: 1, Value: 1, Processed: 64, WorkersDone: 2, WorkerDone: true, ETA: time.Second})
	m, _ = update(t, m, ProgressDoneMsg{})

	if m.chart.eta != 0 {
		t.Errorf("eta = %v, want 0 once progress has ended", m.chart.eta)
	}
	entries := m.logs.Entries()
	if last := entries[len(entries)-1]; !strings.Contains(last, "All 2 workers finished, merging results") {
		t.Errorf("unexpected last log entry %q", last)
	}
}

func TestModel_HelpKeyTogglesFullHelp(t *testing.T) {
	m := newTestModel(t, testConfig())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	short := m.footer.Height()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if m.footer.Height() <= short {
		t.Errorf("expected full help to be taller than %d rows", short)
	}
}

func TestStartRunCmd(t *testing.T) {
	tests := []struct {
		name string
		spec string
		fail bool
		want int
	}{
		{"no collisions", "builtin:xxhash64", false, apperrors.ExitSuccess},
		{"collisions are informational", "builtin:xxhash64/4", false, apperrors.ExitSuccess},
		{"fail on collision", "builtin:xxhash64/4", true, apperrors.ExitErrorCollision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Oracle = tt.spec
			cfg.FailOnCollision = tt.fail
			o, err := oracle.ParseBuiltin(tt.spec)
			if err != nil {
				t.Fatalf("ParseBuiltin: %v", err)
			}

			msg := startRunCmd(&programRef{}, context.Background(), o, cfg, cfg.ToRunConfig(), 3)()
			done, ok := msg.(RunCompleteMsg)
			if !ok {
				t.Fatalf("got %T, want RunCompleteMsg", msg)
			}
			if done.Generation != 3 || done.ExitCode != tt.want {
				t.Errorf("got %+v, want exit %d generation 3", done, tt.want)
			}
		})
	}
}

func TestStartRunCmd_Canceled(t *testing.T) {
	cfg := testConfig()
	o, err := oracle.ParseBuiltin(cfg.Oracle)
	if err != nil {
		t.Fatalf("ParseBuiltin: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := startRunCmd(&programRef{}, ctx, o, cfg, cfg.ToRunConfig(), 0)()
	if done := msg.(RunCompleteMsg); done.ExitCode != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d", done.ExitCode, apperrors.ExitErrorCanceled)
	}
}
