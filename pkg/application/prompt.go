package application

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// systemPrompt is sent alongside every plan request.
const systemPrompt = "You are a study coach who writes realistic, day-by-day learning plans. " +
	"Answer only with the plan in the requested format."

// examplePlan shows the model the delimiter convention ParseDays and
// ParseSections rely on. Keep it in sync with planning/markup.go.
var examplePlan = strings.Join([]string{
	planning.DayHeader(1),
	"**Introduction:**",
	"* What are data structures?: Definition • Types • Importance",
	"* Basic concepts: Time complexity • Space complexity • Big O notation",
	"",
	"**Setup:**",
	"* Development environment: Install IDE • Configure settings • Test setup",
	"* Practice problems: String manipulation • Basic math • Simple logic",
	"",
	planning.DayHeader(2),
	"**Arrays:**",
	"* Array concepts: Indexing • Inserting • Deleting",
	"* Dynamic arrays: Implementation • Time complexity • Space complexity",
}, "\n")

// BuildPrompt renders the plan request for req. The format rules are part of
// the contract with the parser and carry planning.FormatVersion.
func BuildPrompt(req goal.Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I want to achieve the goal: %q in %d days.\n", req.Title, req.NumberOfDays)
	fmt.Fprintf(&b, "I can spend %s hours daily.\n", formatHours(req.HoursPerDay))
	if req.ExternalReference != "" {
		fmt.Fprintf(&b, "I want to use this YouTube playlist: %s\n", req.ExternalReference)
	}

	b.WriteString("\nPlease generate a daily study plan to help me achieve this goal. Format the response as follows:\n\n")
	b.WriteString("For each day, use this exact format:\n")
	b.WriteString(planning.HeaderDelimiter + "Day X:" + planning.HeaderDelimiter + "\n")
	b.WriteString(planning.HeaderDelimiter + "Section Title:" + planning.HeaderDelimiter + "\n")
	b.WriteString("* Main Task 1: Subtask 1 • Subtask 2 • Subtask 3\n")
	b.WriteString("* Main Task 2: Subtask 1 • Subtask 2\n")
	b.WriteString("* Main Task 3\n\n")
	b.WriteString("Example format:\n")
	b.WriteString(examplePlan)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Make sure to (format version %s):\n", planning.FormatVersion)
	rules := []string{
		"Use exactly two asterisks (" + planning.HeaderDelimiter + ") for day and section headers",
		"Use exactly one asterisk (" + planning.TaskMarker + ") at the start of each main task",
		"Use bullet points (" + planning.SubtaskSeparator + ") to separate subtasks",
		"Separate main tasks and subtasks with a colon (" + planning.LabelSeparator + ")",
		"Keep each day's content under its own Day X header",
		"Include practical tasks and exercises for each day",
		"Progress from basic to advanced concepts",
		"Include both theoretical and practical components",
		fmt.Sprintf("Generate exactly %d days of content", req.NumberOfDays),
	}
	for i, rule := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	return b.String()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
