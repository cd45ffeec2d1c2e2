package wiring

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/config"
	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/felixgeelhaar/goalgenie/pkg/storage"
	"github.com/felixgeelhaar/goalgenie/pkg/storage/sqlite"
)

// Workspace bundles the storage of one .goalgenie directory. Audit events and
// usage always live in files; goals and completion state live in the
// configured backend.
type Workspace struct {
	Repo  *storage.FilesystemRepository
	Goals domain.GoalRepository
	Audit *application.AuditService
	Usage *application.UsageService

	close func() error
}

// OpenWorkspace opens the workspace under root with the storage backend
// named in cfg.
func OpenWorkspace(ctx context.Context, root string, cfg *config.Config) (*Workspace, error) {
	repo := storage.NewFilesystemRepository(root)
	ws := &Workspace{
		Repo:  repo,
		Goals: repo,
		Audit: application.NewAuditService(repo),
		Usage: application.NewUsageService(repo),
		close: func() error { return nil },
	}

	if cfg != nil && cfg.Storage == config.StorageSQLite {
		path, err := repo.ResolvePath(sqlite.DatabaseFile)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open goal database: %w", err)
		}
		ws.Goals = store
		ws.close = store.Close
	}
	return ws, nil
}

// Close releases the goal store.
func (w *Workspace) Close() error {
	return w.close()
}
