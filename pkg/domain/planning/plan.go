package planning

// FallbackTaskText marks the degenerate plan substituted when generation fails.
const FallbackTaskText = "Error generating plan"

// DayPlan is one day of a generated plan as it is persisted: the day number and
// the raw section/task text for that day. Sections are parsed lazily.
type DayPlan struct {
	Day  int    `json:"day"`
	Task string `json:"task"`
}

// Sections parses the raw day text into sections.
func (d DayPlan) Sections() []Section {
	return ParseSections(d.Task)
}

// Section is a named group of tasks within a single day.
type Section struct {
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// Task is a single actionable item, optionally decomposed into subtasks.
type Task struct {
	MainTask string   `json:"mainTask"`
	Subtasks []string `json:"subtasks"`
}

// Units returns the number of completion units the task contributes.
func (t Task) Units() int {
	return 1 + len(t.Subtasks)
}

// FallbackPlan returns the single-day plan used when nothing could be generated.
func FallbackPlan() []DayPlan {
	return []DayPlan{{Day: 1, Task: FallbackTaskText}}
}

// IsFallback reports whether days is the degenerate fallback plan.
func IsFallback(days []DayPlan) bool {
	return len(days) == 1 && days[0].Day == 1 && days[0].Task == FallbackTaskText
}
