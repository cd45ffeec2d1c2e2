package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// ProgressUpdate describes one completion change and the progress after it.
type ProgressUpdate struct {
	GoalID   string            `json:"goal_id"`
	Key      string            `json:"key,omitempty"`
	Checked  bool              `json:"checked"`
	Reset    bool              `json:"reset,omitempty"`
	Progress planning.Progress `json:"progress"`
}

// ProgressListener is notified after every persisted completion change.
type ProgressListener func(ProgressUpdate)

// ProgressService tracks which plan items of a goal are checked.
type ProgressService struct {
	repo   domain.GoalRepository
	audit  domain.AuditLogger
	logger *slog.Logger

	// mu serialises writers in this process; the repository version check
	// catches writers in other processes.
	mu        sync.Mutex
	listeners []ProgressListener
	retryCfg  retry.Config
}

func NewProgressService(repo domain.GoalRepository, audit domain.AuditLogger, logger *slog.Logger) *ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{
		repo:   repo,
		audit:  audit,
		logger: logger,
		retryCfg: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  5 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
			IsRetryable:   func(err error) bool {
				var conflict *planning.ConflictError
				return errors.As(err, &conflict)
			},
		},
	}
}

// OnChange registers a listener for completion changes.
func (s *ProgressService) OnChange(l ProgressListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Toggle flips one item of the goal's plan.
func (s *ProgressService) Toggle(ctx context.Context, goalID string, key planning.CompletionKey) (*ProgressUpdate, error) {
	return s.update(ctx, goalID, key, func(state *planning.CompletionState) bool {
		return state.Toggle(key)
	})
}

// SetChecked sets one item to checked. Setting an item to its current value
// is a no-op apart from the version bump.
func (s *ProgressService) SetChecked(ctx context.Context, goalID string, key planning.CompletionKey, checked bool) (*ProgressUpdate, error) {
	return s.update(ctx, goalID, key, func(state *planning.CompletionState) bool {
		state.SetChecked(key, checked)
		return checked
	})
}

func (s *ProgressService) update(ctx context.Context, goalID string, key planning.CompletionKey, apply func(*planning.CompletionState) bool) (*ProgressUpdate, error) {
	g, err := s.repo.LoadGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !planning.HasItem(g.DailyPlan, key) {
		return nil, fmt.Errorf("%w: %s", planning.ErrUnknownItem, key)
	}

	s.mu.Lock()
	var checked bool
	state, err := s.saveWithRetry(ctx, goalID, func(state *planning.CompletionState) {
		checked = apply(state)
	})
	listeners := append([]ProgressListener(nil), s.listeners...)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	update := ProgressUpdate{
		GoalID:   goalID,
		Key:      key.String(),
		Checked:  checked,
		Progress: planning.ComputeProgress(g.DailyPlan, state),
	}
	s.log(domain.ActionCompletionToggled, map[string]any{
		"goal_id": goalID,
		"key":     key.String(),
		"checked": checked,
	})
	s.notify(listeners, update)
	return &update, nil
}

// saveWithRetry reloads, mutates and saves the completion state, retrying
// when another writer saved in between.
func (s *ProgressService) saveWithRetry(ctx context.Context, goalID string, mutate func(*planning.CompletionState)) (*planning.CompletionState, error) {
	r := retry.New[*planning.CompletionState](s.retryCfg)
	return r.Do(ctx, func(ctx context.Context) (*planning.CompletionState, error) {
		state, err := s.repo.LoadCompletion(ctx, goalID)
		if err != nil {
			return nil, err
		}
		mutate(state)
		if err := s.repo.SaveCompletion(ctx, state); err != nil {
			var conflict *planning.ConflictError
			if errors.As(err, &conflict) {
				s.logger.Debug("completion state changed concurrently, retrying", "goal_id", goalID)
			}
			return nil, err
		}
		return state, nil
	})
}

// GetState returns the stored completion state of a goal.
func (s *ProgressService) GetState(ctx context.Context, goalID string) (*planning.CompletionState, error) {
	if _, err := s.repo.LoadGoal(ctx, goalID); err != nil {
		return nil, err
	}
	return s.repo.LoadCompletion(ctx, goalID)
}

// GetProgress computes the current progress of a goal.
func (s *ProgressService) GetProgress(ctx context.Context, goalID string) (planning.Progress, error) {
	g, err := s.repo.LoadGoal(ctx, goalID)
	if err != nil {
		return planning.Progress{}, err
	}
	state, err := s.repo.LoadCompletion(ctx, goalID)
	if err != nil {
		return planning.Progress{}, err
	}
	return planning.ComputeProgress(g.DailyPlan, state), nil
}

// Reset unchecks every item of a goal.
func (s *ProgressService) Reset(ctx context.Context, goalID string) (*ProgressUpdate, error) {
	g, err := s.repo.LoadGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	state, err := s.saveWithRetry(ctx, goalID, func(state *planning.CompletionState) {
		state.Clear()
	})
	listeners := append([]ProgressListener(nil), s.listeners...)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	update := ProgressUpdate{
		GoalID:   goalID,
		Reset:    true,
		Progress: planning.ComputeProgress(g.DailyPlan, state),
	}
	s.log(domain.ActionCompletionReset, map[string]any{"goal_id": goalID})
	s.notify(listeners, update)
	return &update, nil
}

func (s *ProgressService) notify(listeners []ProgressListener, update ProgressUpdate) {
	for _, l := range listeners {
		l(update)
	}
}

func (s *ProgressService) log(action string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(action, domain.ActorUser, metadata); err != nil {
		s.logger.Warn("failed to write audit event", "action", action, "error", err)
	}
}
