// Package wiring assembles the application services for a workspace.
package wiring

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/config"
	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/webhook"
	infraai "github.com/felixgeelhaar/goalgenie/pkg/ai"
	"github.com/felixgeelhaar/goalgenie/pkg/application"
	domainai "github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Root      string
	Config    *config.Config
	Logger    *slog.Logger
	Workspace *Workspace
	Provider  domainai.Provider
	Assembler *application.PlanAssembler
	Goals     *application.GoalService
	Progress  *application.ProgressService
	Audit     *application.AuditService
	Usage     *application.UsageService
	Notifier  *webhook.Notifier
}

// NewLogger returns a text logger at the configured level.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// BuildAppServices loads the workspace config under root and wires every
// service. An unusable provider setting falls back to the default provider;
// the services are returned together with the error describing the fallback.
func BuildAppServices(ctx context.Context, root string) (*AppServices, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	provider, err := LoadAIProvider(cfg)
	var loadErr error
	if err != nil {
		loadErr = fmt.Errorf("AI provider config fallback: %w", err)
		fallback := config.Default()
		fallback.Provider = infraai.DefaultProviderName
		fallback.Model = ""
		provider, err = LoadAIProvider(fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback AI provider failed: %w", err)
		}
	}

	services, err := BuildAppServicesWithProvider(ctx, root, cfg, provider)
	if err != nil {
		return nil, err
	}
	return services, loadErr
}

// BuildAppServicesWithProvider wires the services around a caller-supplied
// provider.
func BuildAppServicesWithProvider(ctx context.Context, root string, cfg *config.Config, provider domainai.Provider) (*AppServices, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := NewLogger(os.Stderr, cfg)

	workspace, err := OpenWorkspace(ctx, root, cfg)
	if err != nil {
		return nil, err
	}

	assembler := application.NewPlanAssembler(provider, logger)
	services := &AppServices{
		Root:      root,
		Config:    cfg,
		Logger:    logger,
		Workspace: workspace,
		Provider:  provider,
		Assembler: assembler,
		Goals:     application.NewGoalService(workspace.Goals, assembler, workspace.Audit, workspace.Usage, logger),
		Progress:  application.NewProgressService(workspace.Goals, workspace.Audit, logger),
		Audit:     workspace.Audit,
		Usage:     workspace.Usage,
	}

	if len(cfg.Webhooks) > 0 {
		notifier, err := newNotifier(workspace, cfg.Webhooks, logger)
		if err != nil {
			_ = workspace.Close()
			return nil, err
		}
		services.Notifier = notifier
		services.Progress.OnChange(notifier.NotifyProgress)
	}
	return services, nil
}

func newNotifier(workspace *Workspace, hooks []config.WebhookConfig, logger *slog.Logger) (*webhook.Notifier, error) {
	path, err := workspace.Repo.ResolvePath(webhook.DeadLetterFile)
	if err != nil {
		return nil, err
	}
	endpoints := make([]webhook.Endpoint, 0, len(hooks))
	for _, h := range hooks {
		ep := webhook.Endpoint{
			Name:       h.Name,
			URL:        h.URL,
			Secret:     h.Secret,
			Events:     h.Events,
			RetryDelay: time.Duration(h.RetryDelayMs) * time.Millisecond,
		}
		if h.MaxRetries != nil {
			ep.MaxRetries = *h.MaxRetries
			if ep.MaxRetries == 0 {
				// max_retries: 0 means a single attempt, as for the provider.
				ep.MaxRetries = -1
			}
		}
		endpoints = append(endpoints, ep)
	}
	return webhook.NewNotifier(endpoints, webhook.NewDeadLetterStore(path), logger), nil
}

// Close waits for pending webhook deliveries and releases workspace resources.
func (s *AppServices) Close() error {
	if s.Notifier != nil {
		s.Notifier.Wait()
	}
	return s.Workspace.Close()
}
