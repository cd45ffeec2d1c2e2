package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/felixgeelhaar/goalgenie/pkg/ai"
	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
	"github.com/felixgeelhaar/goalgenie/pkg/storage"
)

// seedGoal stores a goal generated from the mock sample plan: 17 units over
// two days.
func seedGoal(t *testing.T, repo domain.GoalRepository) *goal.Goal {
	t.Helper()
	svc := application.NewGoalService(repo, application.NewPlanAssembler(&ai.MockProvider{}, quietLogger()), nil, nil, quietLogger())
	g, err := svc.CreateGoal(context.Background(), validRequest(2))
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	return g
}

func TestProgressService_Toggle(t *testing.T) {
	repo := newWorkspace(t)
	g := seedGoal(t, repo)
	svc := application.NewProgressService(repo, application.NewAuditService(repo), quietLogger())
	ctx := context.Background()
	key := planning.TaskKey(0, 0, 0)

	update, err := svc.Toggle(ctx, g.ID, key)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !update.Checked || update.Key != "0-0-0" || update.GoalID != g.ID {
		t.Errorf("unexpected update %+v", update)
	}
	if update.Progress.Completed != 1 || update.Progress.Total != 17 {
		t.Errorf("unexpected progress %+v", update.Progress)
	}

	state, err := svc.GetState(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if !state.IsChecked(key) || state.Version != 1 {
		t.Errorf("unexpected state %+v", state)
	}

	update, _ = svc.Toggle(ctx, g.ID, key)
	if update.Checked || update.Progress.Completed != 0 {
		t.Errorf("second toggle should uncheck, got %+v", update)
	}

	got := actions(t, repo)
	if len(got) != 2 || got[0] != domain.ActionCompletionToggled {
		t.Errorf("expected two toggle events, got %v", got)
	}
}

func TestProgressService_ToggleSubtaskDoesNotCascade(t *testing.T) {
	repo := newWorkspace(t)
	g := seedGoal(t, repo)
	svc := application.NewProgressService(repo, nil, quietLogger())
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, g.ID, planning.SubtaskKey(0, 0, 0, 1)); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	state, _ := svc.GetState(ctx, g.ID)
	if state.IsChecked(planning.TaskKey(0, 0, 0)) {
		t.Error("checking a subtask must not check its parent")
	}
}

func TestProgressService_UnknownItem(t *testing.T) {
	repo := newWorkspace(t)
	g := seedGoal(t, repo)
	svc := application.NewProgressService(repo, nil, quietLogger())

	_, err := svc.Toggle(context.Background(), g.ID, planning.TaskKey(5, 0, 0))
	if !errors.Is(err, planning.ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
}

func TestProgressService_UnknownGoal(t *testing.T) {
	svc := application.NewProgressService(newWorkspace(t), nil, quietLogger())

	if _, err := svc.Toggle(context.Background(), "missing", planning.TaskKey(0, 0, 0)); !errors.Is(err, goal.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetProgress(context.Background(), "missing"); !errors.Is(err, goal.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProgressService_SetCheckedIdempotent(t *testing.T) {
	repo := newWorkspace(t)
	g := seedGoal(t, repo)
	svc := application.NewProgressService(repo, nil, quietLogger())
	ctx := context.Background()
	key := planning.TaskKey(1, 0, 1)

	for i := 0; i < 2; i++ {
		update, err := svc.SetChecked(ctx, g.ID, key, true)
		if err != nil {
			t.Fatalf("SetChecked: %v", err)
		}
		if !update.Checked || update.Progress.Completed != 1 {
			t.Errorf("attempt %d: unexpected update %+v", i, update)
		}
	}

	update, _ := svc.SetChecked(ctx, g.ID, key, false)
	if update.Checked || update.Progress.Completed != 0 {
		t.Errorf("unexpected update %+v", update)
	}
}

func TestProgressService_ResetAndListeners(t *testing.T) {
	repo := newWorkspace(t)
	g := seedGoal(t, repo)
	svc := application.NewProgressService(repo, application.NewAuditService(repo), quietLogger())
	ctx := context.Background()

	var (
		mu      sync.Mutex
		updates []application.ProgressUpdate
	)
	svc.OnChange(func(u application.ProgressUpdate) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, u)
	})

	_, _ = svc.Toggle(ctx, g.ID, planning.TaskKey(0, 0, 0))
	_, _ = svc.Toggle(ctx, g.ID, planning.TaskKey(0, 1, 0))
	update, err := svc.Reset(ctx, g.ID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !update.Reset || update.Progress.Completed != 0 {
		t.Errorf("unexpected reset update %+v", update)
	}

	progress, _ := svc.GetProgress(ctx, g.ID)
	if progress.Completed != 0 || progress.Total != 17 {
		t.Errorf("unexpected progress after reset %+v", progress)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(updates) != 3 || !updates[2].Reset {
		t.Errorf("expected 3 notifications ending with a reset, got %+v", updates)
	}
	got := actions(t, repo)
	if got[len(got)-1] != domain.ActionCompletionReset {
		t.Errorf("expected last action %s, got %v", domain.ActionCompletionReset, got)
	}
}

// racingRepo saves a competing change right before the first save it sees.
type racingRepo struct {
	*storage.FilesystemRepository
	once sync.Once
}

func (r *racingRepo) SaveCompletion(ctx context.Context, state *planning.CompletionState) error {
	var err error
	r.once.Do(func() {
		other, loadErr := r.FilesystemRepository.LoadCompletion(ctx, state.GoalID)
		if loadErr != nil {
			err = loadErr
			return
		}
		other.Toggle(planning.TaskKey(1, 0, 0))
		err = r.FilesystemRepository.SaveCompletion(ctx, other)
	})
	if err != nil {
		return err
	}
	return r.FilesystemRepository.SaveCompletion(ctx, state)
}

func TestProgressService_RetriesOnConflict(t *testing.T) {
	fs := newWorkspace(t)
	g := seedGoal(t, fs)
	repo := &racingRepo{FilesystemRepository: fs}
	svc := application.NewProgressService(repo, nil, quietLogger())
	ctx := context.Background()

	update, err := svc.Toggle(ctx, g.ID, planning.TaskKey(0, 0, 0))
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if update.Progress.Completed != 2 {
		t.Errorf("expected both writes to survive, got %+v", update.Progress)
	}

	state, _ := fs.LoadCompletion(ctx, g.ID)
	if !state.IsChecked(planning.TaskKey(0, 0, 0)) || !state.IsChecked(planning.TaskKey(1, 0, 0)) {
		t.Errorf("lost update: %+v", state.Checked)
	}
	if state.Version != 2 {
		t.Errorf("expected version 2, got %d", state.Version)
	}
}

// failingSaveRepo fails every completion save with an I/O error.
type failingSaveRepo struct {
	*storage.FilesystemRepository
	saves int
}

var errDiskFull = errors.New("disk full")

func (r *failingSaveRepo) SaveCompletion(ctx context.Context, state *planning.CompletionState) error {
	r.saves++
	return errDiskFull
}

func TestProgressService_DoesNotRetryNonConflictErrors(t *testing.T) {
	fs := newWorkspace(t)
	g := seedGoal(t, fs)
	repo := &failingSaveRepo{FilesystemRepository: fs}
	svc := application.NewProgressService(repo, nil, quietLogger())

	_, err := svc.Toggle(context.Background(), g.ID, planning.TaskKey(0, 0, 0))
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected disk full error, got %v", err)
	}
	if repo.saves != 1 {
		t.Errorf("expected a single save attempt, got %d", repo.saves)
	}
}
