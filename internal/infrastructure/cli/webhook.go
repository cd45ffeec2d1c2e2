package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/config"
	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/webhook"
	"github.com/felixgeelhaar/goalgenie/pkg/storage"
)

// EventTestPing is sent by `webhook test`.
const EventTestPing = "test.ping"

var (
	webhookSecret      string
	webhookEvents      []string
	webhookJSONOutput  bool
	knownWebhookEvents = []string{webhook.EventProgressUpdated, webhook.EventProgressReset, webhook.EventGoalCompleted}
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage outgoing progress webhooks",
}

// loadConfigForCurrentDir loads the config of an initialized workspace.
func loadConfigForCurrentDir() (string, *config.Config, error) {
	root, err := getProjectRoot()
	if err != nil {
		return "", nil, fmt.Errorf("resolve project path: %w", err)
	}
	if !storage.NewFilesystemRepository(root).IsInitialized() {
		return "", nil, MapError(ErrNotInitialized)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

func findWebhook(cfg *config.Config, name string) int {
	return slices.IndexFunc(cfg.Webhooks, func(w config.WebhookConfig) bool { return w.Name == name })
}

var webhookAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add an outgoing webhook endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cfg, err := loadConfigForCurrentDir()
		if err != nil {
			return err
		}
		name, url := args[0], args[1]
		if findWebhook(cfg, name) >= 0 {
			return NewCLIError(fmt.Sprintf("webhook %q already exists", name), "Remove it first with 'goalgenie webhook remove'", nil)
		}
		for _, e := range webhookEvents {
			if !slices.Contains(knownWebhookEvents, e) {
				return NewCLIError(fmt.Sprintf("unknown event %q", e), "Events: "+strings.Join(knownWebhookEvents, ", "), nil)
			}
		}

		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:   name,
			URL:    url,
			Secret: webhookSecret,
			Events: webhookEvents,
		})
		if err := cfg.Validate(); err != nil {
			return NewCLIError("invalid webhook", "", err)
		}
		if err := config.Save(root, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added webhook %q -> %s\n", name, url)
		return nil
	},
}

var webhookRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an outgoing webhook endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cfg, err := loadConfigForCurrentDir()
		if err != nil {
			return err
		}
		i := findWebhook(cfg, args[0])
		if i < 0 {
			return NewCLIError(fmt.Sprintf("webhook %q not found", args[0]), "Run 'goalgenie webhook list' to see configured webhooks", nil)
		}
		cfg.Webhooks = slices.Delete(cfg.Webhooks, i, i+1)
		if err := config.Save(root, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed webhook %q\n", args[0])
		return nil
	},
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured webhook endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfigForCurrentDir()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(cfg.Webhooks) == 0 {
			fmt.Fprintln(out, "No outgoing webhooks configured.")
			return nil
		}
		for _, w := range cfg.Webhooks {
			events := "all events"
			if len(w.Events) > 0 {
				events = strings.Join(w.Events, ", ")
			}
			signed := ""
			if w.Secret != "" {
				signed = " (signed)"
			}
			fmt.Fprintf(out, "%-15s %s%s [%s]\n", w.Name, w.URL, signed, events)
		}
		return nil
	},
}

var webhookTestCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Send a test event to a webhook endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		i := findWebhook(services.Config, args[0])
		if i < 0 {
			return NewCLIError(fmt.Sprintf("webhook %q not found", args[0]), "Run 'goalgenie webhook list' to see configured webhooks", nil)
		}
		hook := services.Config.Webhooks[i]

		path, err := services.Workspace.Repo.ResolvePath(webhook.DeadLetterFile)
		if err != nil {
			return err
		}
		// A test ping goes to this endpoint only, whatever its event filter.
		notifier := webhook.NewNotifier([]webhook.Endpoint{{
			Name:       hook.Name,
			URL:        hook.URL,
			Secret:     hook.Secret,
			MaxRetries: -1,
		}}, webhook.NewDeadLetterStore(path), services.Logger)
		notifier.Notify(EventTestPing, map[string]string{"webhook": hook.Name})
		notifier.Wait()

		fmt.Fprintf(cmd.OutOrStdout(), "Test event sent to webhook %q\n", hook.Name)
		return nil
	},
}

var webhookDeadLettersCmd = &cobra.Command{
	Use:   "dead-letters",
	Short: "List deliveries that failed after all retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		repo := storage.NewFilesystemRepository(root)
		if !repo.IsInitialized() {
			return MapError(ErrNotInitialized)
		}
		path, err := repo.ResolvePath(webhook.DeadLetterFile)
		if err != nil {
			return err
		}
		entries, err := webhook.NewDeadLetterStore(path).ReadAll()
		if err != nil {
			return fmt.Errorf("read dead letters: %w", err)
		}

		out := cmd.OutOrStdout()
		if webhookJSONOutput {
			if entries == nil {
				entries = []webhook.DeadLetter{}
			}
			return printJSON(out, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No failed deliveries.")
			return nil
		}
		for _, dl := range entries {
			fmt.Fprintf(out, "%s  %-15s %-18s %d attempts: %s\n",
				dl.Timestamp.Local().Format(time.DateTime), dl.WebhookName, dl.EventType, dl.Attempts, dl.Error)
		}
		return nil
	},
}

func init() {
	webhookAddCmd.Flags().StringVar(&webhookSecret, "secret", "", "HMAC-SHA256 signing secret")
	webhookAddCmd.Flags().StringSliceVar(&webhookEvents, "events", nil, "Only send these events (default: all)")
	webhookDeadLettersCmd.Flags().BoolVar(&webhookJSONOutput, "json", false, "Output in JSON format")
	webhookCmd.AddCommand(webhookAddCmd, webhookRemoveCmd, webhookListCmd, webhookTestCmd, webhookDeadLettersCmd)
	RootCmd.AddCommand(webhookCmd)
}
