package application_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWorkspace(t *testing.T) *storage.FilesystemRepository {
	t.Helper()
	repo := storage.NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return repo
}

func validRequest(days int) goal.Request {
	return goal.Request{
		Title:        "Learn data structures",
		StartDate:    goal.NewDate(2026, time.March, 30),
		NumberOfDays: days,
		HoursPerDay:  1.5,
	}
}

func actions(t *testing.T, repo *storage.FilesystemRepository) []string {
	t.Helper()
	events, err := repo.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}
