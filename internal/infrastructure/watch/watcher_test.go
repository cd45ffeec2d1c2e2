package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string) (<-chan ChangeEvent, context.CancelFunc) {
	t.Helper()
	events := make(chan ChangeEvent, 16)
	w, err := NewWatcher(dir, 30*time.Millisecond, func(e ChangeEvent) {
		events <- e
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = w.Run(ctx)
	}()
	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return events, cancel
}

func TestWatcher_ReportsGoalID(t *testing.T) {
	dir := t.TempDir()
	events, cancel := startWatcher(t, dir)
	defer cancel()

	if err := os.WriteFile(filepath.Join(dir, "completion-g42.json"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if e.GoalID != "g42" {
			t.Errorf("expected goal id g42, got %+v", e)
		}
		if e.ChangeType == "" {
			t.Error("expected a non-empty change type")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestWatcher_CoalescesWritesPerFile(t *testing.T) {
	dir := t.TempDir()
	events, cancel := startWatcher(t, dir)
	defer cancel()

	path := filepath.Join(dir, "goal-a.json")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	var got []ChangeEvent
	timeout := time.After(300 * time.Millisecond)
collect:
	for {
		select {
		case e := <-events:
			got = append(got, e)
		case <-timeout:
			break collect
		}
	}

	if len(got) != 1 {
		t.Errorf("expected one coalesced event, got %d: %+v", len(got), got)
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	events, cancel := startWatcher(t, dir)
	defer cancel()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		t.Errorf("unexpected event %+v", e)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, nil, nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatcher_ContextCancellation(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 50*time.Millisecond, func(ChangeEvent) {}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after context cancellation")
	}
}
