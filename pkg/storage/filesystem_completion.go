package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// SaveCompletion writes state if its Version matches the stored one and then
// increments Version.
func (r *FilesystemRepository) SaveCompletion(ctx context.Context, s *planning.CompletionState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.completionPath(s.GoalID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Optimistic locking: read current version from disk and compare.
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	existing, err := os.ReadFile(path)
	if err == nil {
		var disk planning.CompletionState
		if jsonErr := json.Unmarshal(existing, &disk); jsonErr == nil {
			if disk.Version != s.Version {
				return &planning.ConflictError{Expected: s.Version, Actual: disk.Version}
			}
		}
	}

	s.Version++
	if err := writeJSON(path, s); err != nil {
		s.Version--
		return fmt.Errorf("failed to write completion state: %w", err)
	}
	return nil
}

// LoadCompletion returns an empty state when none has been saved.
func (r *FilesystemRepository) LoadCompletion(ctx context.Context, goalID string) (*planning.CompletionState, error) {
	path, err := r.completionPath(goalID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return planning.NewCompletionState(goalID), nil
	}

	s, err := readJSON[planning.CompletionState](ctx, r.retryConfig, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion state: %w", err)
	}
	if s.Checked == nil {
		s.Checked = make(map[planning.CompletionKey]bool)
	}
	return s, nil
}
