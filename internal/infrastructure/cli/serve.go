package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/watch"
	"github.com/felixgeelhaar/goalgenie/pkg/infrastructure/dashboard"
)

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard and JSON API",
	Long: `Serve the web dashboard and JSON API. Checkbox changes are pushed to
open pages over a websocket. Changes made by other goalgenie processes are
picked up by watching the .goalgenie directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		addr := serveAddr
		if addr == "" {
			addr = services.Config.Dashboard.Addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := dashboard.New(services.Goals, services.Progress, dashboard.Options{
			AllowedOrigins: services.Config.Dashboard.AllowedOrigins,
			Logger:         services.Logger,
		})

		if !serveNoWatch {
			w, err := watch.NewWatcher(services.Workspace.Repo.Dir(), 0, func(e watch.ChangeEvent) {
				server.Hub().BroadcastWorkspaceChange(e.Path, e.GoalID)
			}, services.Logger)
			if err != nil {
				return fmt.Errorf("watch workspace: %w", err)
			}
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					services.Logger.Warn("workspace watcher stopped", "error", err)
				}
			}()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on %s\n", addr)
		if err := server.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to dashboard.addr)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not watch the workspace for external changes")
	RootCmd.AddCommand(serveCmd)
}
