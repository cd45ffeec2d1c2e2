package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goalgenie/pkg/domain"
)

var (
	auditGoalID     string
	auditJSONOutput bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the workspace event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		var events []domain.Event
		if auditGoalID != "" {
			events, err = services.Audit.GetGoalTimeline(auditGoalID)
		} else {
			events, err = services.Audit.GetTimeline()
		}
		if err != nil {
			return fmt.Errorf("failed to load events: %w", err)
		}

		out := cmd.OutOrStdout()
		if auditJSONOutput {
			return printJSON(out, events)
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "No events recorded.")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s  %-22s %-10s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Actor, formatMetadata(e.Metadata))
		}
		return nil
	},
}

func formatMetadata(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%v", k, m[k])
	}
	return s
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the event log hash chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Verifying audit trail integrity...")
		violations, err := services.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if len(violations) == 0 {
			fmt.Fprintln(out, "Audit trail is intact and verified.")
			return nil
		}

		fmt.Fprintf(out, "Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
		return &CLIError{Message: "audit trail integrity check failed", ExitCode: 2}
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditGoalID, "goal", "", "Only show events of this goal")
	auditCmd.Flags().BoolVar(&auditJSONOutput, "json", false, "Output in JSON format")
	auditCmd.AddCommand(auditVerifyCmd)
	RootCmd.AddCommand(auditCmd)
}
