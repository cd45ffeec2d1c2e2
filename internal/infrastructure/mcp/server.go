// Package mcp exposes goal planning and progress tracking as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

type Server struct {
	mcpServer *mcp.Server
	goals     *application.GoalService
	progress  *application.ProgressService
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return errors.New(friendly)
}

// NewServer wires a server for the services of one workspace.
func NewServer(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "goalgenie",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Goal Genie MCP Server"),
			mcp.WithDescription("Goal Genie turns learning goals into day-by-day study plans and tracks which tasks are done."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Create a goal to generate a plan, then read it with goalgenie_get_goal and check items off with goalgenie_toggle_item using their keys."),
		),
		goals:    services.Goals,
		progress: services.Progress,
	}

	s.registerTools()
	s.registerFormatResource()
	return s
}

type CreateGoalArgs struct {
	Title             string  `json:"title" jsonschema:"description=What the user wants to learn"`
	StartDate         string  `json:"start_date" jsonschema:"description=First day of the plan (YYYY-MM-DD)"`
	NumberOfDays      int     `json:"number_of_days" jsonschema:"description=Number of days to plan (1-365)"`
	HoursPerDay       float64 `json:"hours_per_day" jsonschema:"description=Study hours available per day (0-24)"`
	ExternalReference string  `json:"external_reference,omitempty" jsonschema:"description=Optional YouTube playlist URL to build the plan around"`
}

type GoalArgs struct {
	GoalID string `json:"goal_id" jsonschema:"description=The ID of the goal"`
}

type ToggleArgs struct {
	GoalID string `json:"goal_id" jsonschema:"description=The ID of the goal"`
	Key    string `json:"key" jsonschema:"description=Item key day-section-task for a task or day-section-task-subtask for a subtask (0-based)"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("goalgenie_create_goal").
		Description("Create a learning goal and generate its daily study plan").
		Handler(s.handleCreateGoal)

	s.mcpServer.Tool("goalgenie_list_goals").
		Description("List all goals, newest first").
		Handler(s.handleListGoals)

	s.mcpServer.Tool("goalgenie_get_goal").
		Description("Retrieve a goal with its parsed plan and the key of every checkable item").
		Handler(s.handleGetGoal)

	s.mcpServer.Tool("goalgenie_get_progress").
		Description("Retrieve the completion percentage of a goal, overall and per day").
		Handler(s.handleGetProgress)

	s.mcpServer.Tool("goalgenie_toggle_item").
		Description("Check or uncheck one task or subtask of a goal's plan").
		Handler(s.handleToggleItem)

	s.mcpServer.Tool("goalgenie_reset_progress").
		Description("Uncheck every item of a goal's plan").
		Handler(s.handleResetProgress)
}

type goalSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	StartDate    string `json:"start_date"`
	NumberOfDays int    `json:"number_of_days"`
	Fallback     bool   `json:"generation_failed,omitempty"`
}

type itemView struct {
	Key     string `json:"key"`
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Section string `json:"section"`
	Label   string `json:"label"`
	Subtask bool   `json:"subtask,omitempty"`
	Checked bool   `json:"checked"`
}

type goalDetail struct {
	ID                string                  `json:"id"`
	Title             string                  `json:"title"`
	StartDate         string                  `json:"start_date"`
	NumberOfDays      int                     `json:"number_of_days"`
	HoursPerDay       float64                 `json:"hours_per_day"`
	ExternalReference string                  `json:"external_reference,omitempty"`
	GenerationFailed  bool                    `json:"generation_failed,omitempty"`
	DayCount          planning.DayCountReport `json:"day_count"`
	Progress          planning.Progress       `json:"progress"`
	Items             []itemView              `json:"items"`
}

func (s *Server) handleCreateGoal(ctx context.Context, args CreateGoalArgs) (any, error) {
	req := goal.Request{
		Title:             args.Title,
		NumberOfDays:      args.NumberOfDays,
		HoursPerDay:       args.HoursPerDay,
		ExternalReference: args.ExternalReference,
	}
	if args.StartDate != "" {
		d, err := goal.ParseDate(args.StartDate)
		if err != nil {
			return nil, mcpErr("start_date must be a date in YYYY-MM-DD format.")
		}
		req.StartDate = d
	}

	g, err := s.goals.CreateGoal(ctx, req)
	if err != nil {
		var verr *goal.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, mcpErr("Failed to save the goal. Ensure the workspace is initialized with 'goalgenie init'.")
	}

	state := planning.NewCompletionState(g.ID)
	return buildDetail(g, state), nil
}

func (s *Server) handleListGoals(ctx context.Context, _ struct{}) (any, error) {
	goals, err := s.goals.ListGoals(ctx)
	if err != nil {
		return nil, mcpErr("Failed to list goals. Ensure the workspace is initialized with 'goalgenie init'.")
	}
	out := make([]goalSummary, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalSummary{
			ID:           g.ID,
			Title:        g.Title,
			StartDate:    g.StartDate.String(),
			NumberOfDays: g.NumberOfDays,
			Fallback:     g.Fallback,
		})
	}
	return out, nil
}

func (s *Server) handleGetGoal(ctx context.Context, args GoalArgs) (any, error) {
	g, err := s.goals.GetGoal(ctx, args.GoalID)
	if err != nil {
		return nil, notFoundOr(err, "Failed to load the goal.")
	}
	state, err := s.progress.GetState(ctx, args.GoalID)
	if err != nil {
		return nil, mcpErr("Failed to load the completion state of the goal.")
	}
	return buildDetail(g, state), nil
}

func (s *Server) handleGetProgress(ctx context.Context, args GoalArgs) (any, error) {
	progress, err := s.progress.GetProgress(ctx, args.GoalID)
	if err != nil {
		return nil, notFoundOr(err, "Failed to compute progress.")
	}
	return progress, nil
}

func (s *Server) handleToggleItem(ctx context.Context, args ToggleArgs) (any, error) {
	key, err := planning.ParseCompletionKey(args.Key)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Invalid key %q. Use day-section-task or day-section-task-subtask, e.g. 0-0-1.", args.Key))
	}
	update, err := s.progress.Toggle(ctx, args.GoalID, key)
	if err != nil {
		if errors.Is(err, planning.ErrUnknownItem) {
			return nil, mcpErr(fmt.Sprintf("No item %s in this plan. Use goalgenie_get_goal to list valid keys.", args.Key))
		}
		return nil, notFoundOr(err, "Failed to update the item.")
	}
	return update, nil
}

func (s *Server) handleResetProgress(ctx context.Context, args GoalArgs) (any, error) {
	update, err := s.progress.Reset(ctx, args.GoalID)
	if err != nil {
		return nil, notFoundOr(err, "Failed to reset progress.")
	}
	return update, nil
}

func notFoundOr(err error, friendly string) error {
	if errors.Is(err, goal.ErrNotFound) {
		return mcpErr("Goal not found. Use goalgenie_list_goals to find valid IDs.")
	}
	return mcpErr(friendly)
}

func buildDetail(g *goal.Goal, state *planning.CompletionState) goalDetail {
	detail := goalDetail{
		ID:                g.ID,
		Title:             g.Title,
		StartDate:         g.StartDate.String(),
		NumberOfDays:      g.NumberOfDays,
		HoursPerDay:       g.HoursPerDay,
		ExternalReference: g.ExternalReference,
		GenerationFailed:  g.Fallback,
		DayCount:          g.Report,
		Progress:          g.Progress(state),
		Items:             []itemView{},
	}
	for _, item := range planning.Items(g.DailyPlan) {
		detail.Items = append(detail.Items, itemView{
			Key:     item.Key.String(),
			Day:     item.DayNumber,
			Date:    g.DateForDay(item.DayNumber).String(),
			Section: item.SectionTitle,
			Label:   item.Label,
			Subtask: item.Key.IsSubtask(),
			Checked: state.IsChecked(item.Key),
		})
	}
	return detail
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
