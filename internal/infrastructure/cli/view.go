package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

var viewCmd = &cobra.Command{
	Use:   "view <goal-id>",
	Short: "Work through a goal's plan interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("GOALGENIE_SKIP_VIEW_RUN") == "true" {
			return nil
		}
		services, err := loadServicesForCurrentDir(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck

		ctx := cmd.Context()
		g, err := services.Goals.GetGoal(ctx, args[0])
		if err != nil {
			return MapError(err)
		}
		state, err := services.Progress.GetState(ctx, g.ID)
		if err != nil {
			return MapError(err)
		}

		toggle := func(key planning.CompletionKey) (*application.ProgressUpdate, error) {
			return services.Progress.Toggle(ctx, g.ID, key)
		}
		p := tea.NewProgram(newViewModel(g, state, toggle), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("view run failed: %w", err)
		}
		return nil
	},
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)
	dayStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type toggleFunc func(planning.CompletionKey) (*application.ProgressUpdate, error)

type toggledMsg struct {
	update *application.ProgressUpdate
	err    error
}

type viewModel struct {
	goal   *goal.Goal
	items  []planning.Item
	state  *planning.CompletionState
	toggle toggleFunc

	cursor int
	offset int
	height int
	bar    progress.Model
	err    error
}

func newViewModel(g *goal.Goal, state *planning.CompletionState, toggle toggleFunc) viewModel {
	return viewModel{
		goal:   g,
		items:  planning.Items(g.DailyPlan),
		state:  state,
		toggle: toggle,
		height: 20,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 3)
		m.bar.Width = min(max(msg.Width-4, 10), 80)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.items)-1, 0)
		case " ", "enter", "x":
			if len(m.items) == 0 || m.toggle == nil {
				return m, nil
			}
			key := m.items[m.cursor].Key
			toggle := m.toggle
			return m, func() tea.Msg {
				update, err := toggle(key)
				return toggledMsg{update: update, err: err}
			}
		}
		m.scroll()
		return m, nil

	case toggledMsg:
		m.err = msg.err
		if msg.err == nil && msg.update != nil {
			if key, err := planning.ParseCompletionKey(msg.update.Key); err == nil {
				m.state.SetChecked(key, msg.update.Checked)
			}
		}
		return m, nil
	}
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *viewModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m viewModel) View() string {
	var b strings.Builder
	p := m.goal.Progress(m.state)

	b.WriteString(titleStyle.Render(m.goal.Title))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(p.Percent / 100))
	fmt.Fprintf(&b, "  %d of %d\n", p.Completed, p.Total)
	if p.AllDone() {
		b.WriteString(doneStyle.Render("All tasks completed!"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.items))
	lastDay, lastSection := -1, -1
	for i := m.offset; i < end; i++ {
		item := m.items[i]
		if item.Key.Day != lastDay {
			b.WriteString(dayStyle.Render(fmt.Sprintf("Day %d  %s", item.DayNumber, m.goal.DateForDay(item.DayNumber))))
			b.WriteString("\n")
			lastDay, lastSection = item.Key.Day, -1
		}
		if item.Key.Section != lastSection {
			b.WriteString(sectionStyle.Render("  " + item.SectionTitle))
			b.WriteString("\n")
			lastSection = item.Key.Section
		}

		indent := "    "
		if item.Key.IsSubtask() {
			indent = "        "
		}
		line := fmt.Sprintf("%s%s %s", indent, checkbox(m.state.IsChecked(item.Key)), item.Label)
		if i == m.cursor {
			line = cursorStyle.Render(">" + line[1:])
		} else if m.state.IsChecked(item.Key) {
			line = doneStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move • space toggle • q quit"))
	b.WriteString("\n")
	return b.String()
}

func init() {
	RootCmd.AddCommand(viewCmd)
}

