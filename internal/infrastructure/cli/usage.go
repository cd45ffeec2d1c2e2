package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show plan generation and AI token statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		stats, err := services.Usage.GetUsage()
		if err != nil {
			return fmt.Errorf("failed to load usage stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Plan Generation")
		fmt.Fprintln(out, "---------------")
		fmt.Fprintf(out, "Generations:    %d\n", stats.Generations)
		fmt.Fprintf(out, "Failed:         %d\n", stats.FailedGenerations)
		if !stats.LastGenerationAt.IsZero() {
			fmt.Fprintf(out, "Last Activity:  %s\n", stats.LastGenerationAt.Format("2006-01-02 15:04:05"))
		}

		if len(stats.ProviderStats) == 0 {
			return nil
		}
		fmt.Fprintln(out, "\nAI Token Consumption")

		// Sort keys for stable output
		keys := make([]string, 0, len(stats.ProviderStats))
		for k := range stats.ProviderStats {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		total := 0
		for _, k := range keys {
			tokens := stats.ProviderStats[k]
			total += tokens
			fmt.Fprintf(out, "- %-35s: %d\n", k, tokens)
		}
		fmt.Fprintf(out, "\nTotal Tokens Used: %d\n", total)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(usageCmd)
}
