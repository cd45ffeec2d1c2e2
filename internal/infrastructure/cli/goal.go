package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Create, inspect and delete learning goals",
}

var (
	goalTitle      string
	goalStart      string
	goalDays       int
	goalHours      float64
	goalReference  string
	goalJSONOutput bool
)

var goalCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a goal and generate its study plan",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		req, err := goalRequestFromFlags(args, time.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !goalJSONOutput {
			fmt.Fprintf(out, "Generating a %d-day plan with %s...\n", req.NumberOfDays, services.Provider.ID())
		}
		g, err := services.Goals.CreateGoal(cmd.Context(), req)
		if err != nil {
			return MapError(err)
		}

		if goalJSONOutput {
			return printJSON(out, g)
		}
		if g.Fallback {
			fmt.Fprintln(out, "Warning: the plan could not be generated; a placeholder plan was stored.")
		}
		if g.Report.Mismatch() {
			fmt.Fprintf(out, "Note: requested %d days but the plan has %d.\n", g.Report.Requested, g.Report.Parsed)
		}
		fmt.Fprintf(out, "Created goal %s\n\n", g.ID)
		renderGoal(out, g, planning.NewCompletionState(g.ID))
		return nil
	},
}

// goalRequestFromFlags builds the request from the create flags. The start
// date defaults to today.
func goalRequestFromFlags(args []string, now time.Time) (goal.Request, error) {
	title := goalTitle
	if len(args) > 0 {
		title = args[0]
	}
	req := goal.Request{
		Title:             title,
		NumberOfDays:      goalDays,
		HoursPerDay:       goalHours,
		ExternalReference: goalReference,
	}
	if strings.TrimSpace(goalStart) == "" {
		req.StartDate = goal.NewDate(now.Year(), now.Month(), now.Day())
		return req, nil
	}
	d, err := goal.ParseDate(goalStart)
	if err != nil {
		return req, NewCLIError("invalid start date", "Use the YYYY-MM-DD format, e.g. 2026-03-30", err)
	}
	req.StartDate = d
	return req, nil
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		goals, err := services.Goals.ListGoals(cmd.Context())
		if err != nil {
			return MapError(err)
		}

		out := cmd.OutOrStdout()
		if goalJSONOutput {
			return printJSON(out, goals)
		}
		if len(goals) == 0 {
			fmt.Fprintln(out, "No goals yet. Create one with 'goalgenie goal create'.")
			return nil
		}
		for _, g := range goals {
			state, err := services.Progress.GetState(cmd.Context(), g.ID)
			if err != nil {
				return MapError(err)
			}
			p := g.Progress(state)
			fmt.Fprintf(out, "%s  %-40s %s  %3d days  %3d%%\n", g.ID, truncate(g.Title, 40), g.StartDate, g.NumberOfDays, p.Rounded())
		}
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show a goal's plan with item keys and completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		g, err := services.Goals.GetGoal(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		state, err := services.Progress.GetState(cmd.Context(), g.ID)
		if err != nil {
			return MapError(err)
		}

		if goalJSONOutput {
			return printJSON(cmd.OutOrStdout(), struct {
				*goal.Goal
				Progress planning.Progress `json:"progress"`
			}{g, g.Progress(state)})
		}
		renderGoal(cmd.OutOrStdout(), g, state)
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <goal-id>",
	Short: "Delete a goal and its completion state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		if err := services.Goals.DeleteGoal(cmd.Context(), args[0]); err != nil {
			return MapError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal %s\n", args[0])
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	goalCreateCmd.Flags().StringVar(&goalTitle, "title", "", "What you want to learn")
	goalCreateCmd.Flags().StringVar(&goalStart, "start", "", "Start date (YYYY-MM-DD, default today)")
	goalCreateCmd.Flags().IntVar(&goalDays, "days", 7, "Number of days to plan")
	goalCreateCmd.Flags().Float64Var(&goalHours, "hours", 1, "Study hours per day")
	goalCreateCmd.Flags().StringVar(&goalReference, "ref", "", "YouTube playlist URL to build the plan around")

	for _, c := range []*cobra.Command{goalCreateCmd, goalListCmd, goalShowCmd} {
		c.Flags().BoolVar(&goalJSONOutput, "json", false, "Output in JSON format")
	}

	goalCmd.AddCommand(goalCreateCmd, goalListCmd, goalShowCmd, goalDeleteCmd)
	RootCmd.AddCommand(goalCmd)
}
