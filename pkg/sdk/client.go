package sdk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"
)

// PlanFormatURI is the resource describing the plan format.
const PlanFormatURI = "goalgenie://plan-format"

// Client is a typed Go client for the Goal Genie MCP server.
type Client struct {
	mcp         *client.Client
	retryCfg    retry.Config
	checkFormat bool
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:         client.New(transport, client.WithTimeout(o.callTimeout)),
		checkFormat: o.checkFormat,
		retryCfg: retry.Config{
			MaxAttempts:   o.attempts,
			InitialDelay:  o.backoff,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake and, with
// WithFormatCheck, verifies the server's plan format.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	info, err := c.mcp.Initialize(ctx)
	if err != nil {
		return nil, err
	}
	if c.checkFormat {
		if err := c.Compatible(ctx); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool with retry. Tool errors are not retried.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// GetPlanFormat reads the plan format resource from the server.
func (c *Client) GetPlanFormat(ctx context.Context) (*PlanFormat, error) {
	rc, err := c.mcp.ReadResource(ctx, PlanFormatURI)
	if err != nil {
		return nil, fmt.Errorf("read plan format resource: %w", err)
	}
	var f PlanFormat
	if err := json.Unmarshal([]byte(rc.Text), &f); err != nil {
		return nil, fmt.Errorf("unmarshal plan format: %w", err)
	}
	return &f, nil
}

// Compatible returns nil when the server's plan format matches this SDK.
func (c *Client) Compatible(ctx context.Context) error {
	f, err := c.GetPlanFormat(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	if f.FormatVersion != SupportedFormatVersion {
		return fmt.Errorf("%w: server=%s, sdk supports %s", ErrIncompatibleFormat, f.FormatVersion, SupportedFormatVersion)
	}
	return nil
}

// CreateGoal creates a goal and generates its plan. A plan that could not be
// generated is reported through GoalDetail.GenerationFailed, not an error.
func (c *Client) CreateGoal(ctx context.Context, req CreateGoalRequest) (*GoalDetail, error) {
	args := map[string]any{
		"title":          req.Title,
		"start_date":     req.StartDate,
		"number_of_days": req.NumberOfDays,
		"hours_per_day":  req.HoursPerDay,
	}
	if req.ExternalReference != "" {
		args["external_reference"] = req.ExternalReference
	}
	res, err := c.call(ctx, "goalgenie_create_goal", args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[GoalDetail](res)
}

func (c *Client) ListGoals(ctx context.Context) ([]GoalSummary, error) {
	res, err := c.call(ctx, "goalgenie_list_goals", nil)
	if err != nil {
		return nil, err
	}
	goals, err := unmarshalText[[]GoalSummary](res)
	if err != nil {
		return nil, err
	}
	return *goals, nil
}

func (c *Client) GetGoal(ctx context.Context, goalID string) (*GoalDetail, error) {
	res, err := c.call(ctx, "goalgenie_get_goal", map[string]any{"goal_id": goalID})
	if err != nil {
		return nil, err
	}
	return unmarshalText[GoalDetail](res)
}

func (c *Client) GetProgress(ctx context.Context, goalID string) (*Progress, error) {
	res, err := c.call(ctx, "goalgenie_get_progress", map[string]any{"goal_id": goalID})
	if err != nil {
		return nil, err
	}
	return unmarshalText[Progress](res)
}

// ToggleItem flips one task or subtask; key uses the Item.Key form.
func (c *Client) ToggleItem(ctx context.Context, goalID, key string) (*ProgressUpdate, error) {
	res, err := c.call(ctx, "goalgenie_toggle_item", map[string]any{"goal_id": goalID, "key": key})
	if err != nil {
		return nil, err
	}
	return unmarshalText[ProgressUpdate](res)
}

func (c *Client) ResetProgress(ctx context.Context, goalID string) (*ProgressUpdate, error) {
	res, err := c.call(ctx, "goalgenie_reset_progress", map[string]any{"goal_id": goalID})
	if err != nil {
		return nil, err
	}
	return unmarshalText[ProgressUpdate](res)
}
