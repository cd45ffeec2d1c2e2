package domain

import (
	"context"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// GoalRepository persists goals and their completion state.
//
// LoadGoal returns goal.ErrNotFound for unknown ids. LoadCompletion returns an
// empty state (version 0) when nothing has been saved for the goal yet.
// SaveCompletion rejects a state whose Version does not match the stored one
// with a *planning.ConflictError, and increments Version on success.
type GoalRepository interface {
	SaveGoal(ctx context.Context, g *goal.Goal) error
	LoadGoal(ctx context.Context, id string) (*goal.Goal, error)
	ListGoals(ctx context.Context) ([]*goal.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	SaveCompletion(ctx context.Context, state *planning.CompletionState) error
	LoadCompletion(ctx context.Context, goalID string) (*planning.CompletionState, error)
}

// WorkspaceRepository is the full set of artifacts kept in the workspace
// directory.
type WorkspaceRepository interface {
	GoalRepository
	AuditRepository
	Initialize() error
	IsInitialized() bool
}
