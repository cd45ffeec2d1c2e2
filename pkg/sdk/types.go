package sdk

// CreateGoalRequest are the parameters of CreateGoal. StartDate uses the
// YYYY-MM-DD layout.
type CreateGoalRequest struct {
	Title             string  `json:"title"`
	StartDate         string  `json:"start_date"`
	NumberOfDays      int     `json:"number_of_days"`
	HoursPerDay       float64 `json:"hours_per_day"`
	ExternalReference string  `json:"external_reference,omitempty"`
}

// GoalSummary is one entry of ListGoals.
type GoalSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	StartDate        string `json:"start_date"`
	NumberOfDays     int    `json:"number_of_days"`
	GenerationFailed bool   `json:"generation_failed,omitempty"`
}

// Item is one checkable task or subtask of a plan.
type Item struct {
	Key     string `json:"key"`
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Section string `json:"section"`
	Label   string `json:"label"`
	Subtask bool   `json:"subtask,omitempty"`
	Checked bool   `json:"checked"`
}

// DayCountReport compares the requested number of days with the plan.
type DayCountReport struct {
	Requested  int   `json:"requested"`
	Parsed     int   `json:"parsed"`
	Missing    []int `json:"missing,omitempty"`
	Duplicates []int `json:"duplicates,omitempty"`
}

type DayProgress struct {
	Day       int     `json:"day"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

type Progress struct {
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Percent   float64       `json:"percent"`
	Days      []DayProgress `json:"days,omitempty"`
}

// AllDone reports whether every item of a non-empty plan is checked.
func (p Progress) AllDone() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// GoalDetail is a goal with its plan flattened into items.
type GoalDetail struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	StartDate         string         `json:"start_date"`
	NumberOfDays      int            `json:"number_of_days"`
	HoursPerDay       float64        `json:"hours_per_day"`
	ExternalReference string         `json:"external_reference,omitempty"`
	GenerationFailed  bool           `json:"generation_failed,omitempty"`
	DayCount          DayCountReport `json:"day_count"`
	Progress          Progress       `json:"progress"`
	Items             []Item         `json:"items"`
}

// Pending returns the items that are not checked yet, in plan order.
func (g *GoalDetail) Pending() []Item {
	var out []Item
	for _, it := range g.Items {
		if !it.Checked {
			out = append(out, it)
		}
	}
	return out
}

// ProgressUpdate is the result of ToggleItem and ResetProgress.
type ProgressUpdate struct {
	GoalID   string   `json:"goal_id"`
	Key      string   `json:"key,omitempty"`
	Checked  bool     `json:"checked"`
	Reset    bool     `json:"reset,omitempty"`
	Progress Progress `json:"progress"`
}

// PlanFormat describes the plan markup the server parses.
type PlanFormat struct {
	FormatVersion    string `json:"format_version"`
	DayHeader        string `json:"day_header"`
	SectionHeader    string `json:"section_header"`
	TaskMarker       string `json:"task_marker"`
	LabelSeparator   string `json:"label_separator"`
	SubtaskSeparator string `json:"subtask_separator"`
	KeyFormat        string `json:"key_format"`
}
