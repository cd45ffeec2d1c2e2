package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/goalgenie/pkg/domain"
)

const WorkspaceDir = ".goalgenie"
const EventsFile = "events.jsonl"
const UsageFile = "usage.json"

const (
	goalFilePrefix       = "goal-"
	completionFilePrefix = "completion-"
	jsonExt              = ".json"
)

// FilesystemRepository stores the workspace as JSON files under .goalgenie/.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config

	// mu makes the version check and write of completion files atomic
	// within this process.
	mu sync.Mutex
}

// Compile-time check that FilesystemRepository implements WorkspaceRepository
var _ domain.WorkspaceRepository = (*FilesystemRepository)(nil)

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the .goalgenie directory.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, WorkspaceDir)
}

// ResolvePath ensures the path is within the .goalgenie directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := r.Dir()
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	// Only direct children of the workspace directory are allowed.
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", WorkspaceDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(r.Dir())
	return err == nil
}

func (r *FilesystemRepository) goalPath(id string) (string, error) {
	gid, err := domain.NewGoalID(id)
	if err != nil {
		return "", err
	}
	return r.ResolvePath(goalFilePrefix + gid.String() + jsonExt)
}

func (r *FilesystemRepository) completionPath(id string) (string, error) {
	gid, err := domain.NewGoalID(id)
	if err != nil {
		return "", err
	}
	return r.ResolvePath(completionFilePrefix + gid.String() + jsonExt)
}

// writeJSON writes v indented to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// readJSON decodes path into a new T, retrying transient read failures such
// as a concurrently truncated file.
func readJSON[T any](ctx context.Context, cfg retry.Config, path string) (*T, error) {
	retryer := retry.New[*T](cfg)
	return retryer.Do(ctx, func(ctx context.Context) (*T, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
}

func (r *FilesystemRepository) UpdateUsage(stats domain.UsageStats) error {
	path, err := r.ResolvePath(UsageFile)
	if err != nil {
		return err
	}
	if err := writeJSON(path, stats); err != nil {
		return fmt.Errorf("failed to write usage stats: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) LoadUsage() (*domain.UsageStats, error) {
	path, err := r.ResolvePath(UsageFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &domain.UsageStats{ProviderStats: make(map[string]int)}, nil
		}
		return nil, fmt.Errorf("failed to read usage stats: %w", err)
	}

	var stats domain.UsageStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal usage stats: %w", err)
	}
	return &stats, nil
}

// GoalIDFromFile returns the goal id encoded in a goal or completion file
// name of the workspace directory.
func GoalIDFromFile(name string) (string, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, jsonExt) {
		return "", false
	}
	base = strings.TrimSuffix(base, jsonExt)
	for _, prefix := range []string{goalFilePrefix, completionFilePrefix} {
		if id, ok := strings.CutPrefix(base, prefix); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
