package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
)

func (r *FilesystemRepository) SaveGoal(ctx context.Context, g *goal.Goal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.goalPath(g.ID)
	if err != nil {
		return err
	}
	if err := writeJSON(path, g); err != nil {
		return fmt.Errorf("failed to write goal %s: %w", g.ID, err)
	}
	return nil
}

func (r *FilesystemRepository) LoadGoal(ctx context.Context, id string) (*goal.Goal, error) {
	path, err := r.goalPath(id)
	if err != nil {
		// An id that cannot name a file cannot name a stored goal either.
		return nil, fmt.Errorf("%w: %s", goal.ErrNotFound, id)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", goal.ErrNotFound, id)
	}

	g, err := readJSON[goal.Goal](ctx, r.retryConfig, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load goal %s: %w", id, err)
	}
	return g, nil
}

func (r *FilesystemRepository) ListGoals(ctx context.Context) ([]*goal.Goal, error) {
	entries, err := os.ReadDir(r.Dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*goal.Goal{}, nil
		}
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	goals := []*goal.Goal{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, goalFilePrefix) || !strings.HasSuffix(name, jsonExt) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, goalFilePrefix), jsonExt)
		g, err := r.LoadGoal(ctx, id)
		if err != nil {
			if errors.Is(err, goal.ErrNotFound) {
				continue // deleted while listing
			}
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// DeleteGoal removes the goal and its completion state.
func (r *FilesystemRepository) DeleteGoal(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.goalPath(id)
	if err != nil {
		return fmt.Errorf("%w: %s", goal.ErrNotFound, id)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", goal.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete goal %s: %w", id, err)
	}

	completion, err := r.completionPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(completion); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete completion state of %s: %w", id, err)
	}
	return nil
}
