// Package sdk provides a typed Go client for the Goal Genie MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per MCP tool,
// connection management, and automatic retry via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("goalgenie", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	info, _ := c.Initialize(ctx)
//	goal, _ := c.CreateGoal(ctx, sdk.CreateGoalRequest{Title: "Learn Go", StartDate: "2026-05-01", NumberOfDays: 7, HoursPerDay: 1})
//	fmt.Println(goal.Progress.Total)
package sdk
