package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/config"
	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/felixgeelhaar/goalgenie/pkg/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a goalgenie workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		repo := storage.NewFilesystemRepository(root)
		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		cfgPath := filepath.Join(repo.Dir(), config.FileName)
		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			if err := config.Save(root, config.Default()); err != nil {
				return err
			}
		}

		audit := application.NewAuditService(repo)
		if err := audit.Log(domain.ActionWorkspaceInitialized, domain.ActorUser, map[string]any{"root": root}); err != nil {
			return fmt.Errorf("failed to record init: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized goalgenie workspace in %s\n", repo.Dir())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
