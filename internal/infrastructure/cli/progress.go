package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

var progressJSONOutput bool

var progressCmd = &cobra.Command{
	Use:   "progress <goal-id>",
	Short: "Show how much of a goal's plan is completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		p, err := services.Progress.GetProgress(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		if progressJSONOutput {
			return printJSON(cmd.OutOrStdout(), p)
		}
		printProgress(cmd.OutOrStdout(), p)
		return nil
	},
}

func printProgress(w io.Writer, p planning.Progress) {
	fmt.Fprintf(w, "Overall: %d of %d (%d%%)\n", p.Completed, p.Total, p.Rounded())
	for _, d := range p.Days {
		fmt.Fprintf(w, "  Day %-3d %3d of %-3d (%.0f%%)\n", d.Day, d.Completed, d.Total, d.Percent)
	}
	if p.AllDone() {
		fmt.Fprintln(w, "All tasks completed!")
	}
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <goal-id> <key>",
	Short: "Check or uncheck a task or subtask",
	Long: `Flip the completion of one plan item. Keys are 0-based positions:
day-section-task for a main task and day-section-task-subtask for a subtask.
'goalgenie goal show' prints the key of every item.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := planning.ParseCompletionKey(args[1])
		if err != nil {
			return MapError(err)
		}

		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		update, err := services.Progress.Toggle(cmd.Context(), args[0], key)
		if err != nil {
			return MapError(err)
		}
		printUpdate(cmd.OutOrStdout(), update)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <goal-id>",
	Short: "Uncheck every item of a goal's plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		update, err := services.Progress.Reset(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		printUpdate(cmd.OutOrStdout(), update)
		return nil
	},
}

func printUpdate(w io.Writer, u *application.ProgressUpdate) {
	switch {
	case u.Reset:
		fmt.Fprintln(w, "Progress reset.")
	case u.Checked:
		fmt.Fprintf(w, "Checked %s\n", u.Key)
	default:
		fmt.Fprintf(w, "Unchecked %s\n", u.Key)
	}
	fmt.Fprintf(w, "Progress: %d of %d (%d%%)\n", u.Progress.Completed, u.Progress.Total, u.Progress.Rounded())
}

func init() {
	progressCmd.Flags().BoolVar(&progressJSONOutput, "json", false, "Output in JSON format")
	RootCmd.AddCommand(progressCmd, toggleCmd, resetCmd)
}
