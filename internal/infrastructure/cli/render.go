package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// renderGoal writes the plan as an indented checklist. Every item is prefixed
// with the key accepted by 'goalgenie toggle'.
func renderGoal(w io.Writer, g *goal.Goal, state *planning.CompletionState) {
	p := g.Progress(state)
	fmt.Fprintf(w, "%s (%s)\n", g.Title, g.ID)
	fmt.Fprintf(w, "Starts %s, %d days, %g h/day\n", g.StartDate, g.NumberOfDays, g.HoursPerDay)
	if g.ExternalReference != "" {
		fmt.Fprintf(w, "Reference: %s\n", g.ExternalReference)
	}
	fmt.Fprintf(w, "Progress: %d of %d (%d%%)\n", p.Completed, p.Total, p.Rounded())
	if p.AllDone() {
		fmt.Fprintln(w, "All tasks completed!")
	}

	for d, day := range g.DailyPlan {
		fmt.Fprintf(w, "\nDay %d (%s)\n", day.Day, g.DateForDay(day.Day))
		sections := day.Sections()
		if len(sections) == 0 {
			fmt.Fprintf(w, "  %s\n", strings.TrimSpace(day.Task))
			continue
		}
		for s, section := range sections {
			fmt.Fprintf(w, "  %s (%d tasks)\n", section.Title, len(section.Tasks))
			for t, task := range section.Tasks {
				key := planning.TaskKey(d, s, t)
				fmt.Fprintf(w, "    %s %-9s %s\n", checkbox(state.IsChecked(key)), key, task.MainTask)
				for u, sub := range task.Subtasks {
					key := planning.SubtaskKey(d, s, t, u)
					fmt.Fprintf(w, "        %s %-9s %s\n", checkbox(state.IsChecked(key)), key, sub)
				}
			}
		}
	}
}
