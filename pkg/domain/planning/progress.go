package planning

import "math"

// Item is one checkable entry of a plan: a main task or one of its subtasks.
type Item struct {
	Key          CompletionKey
	DayNumber    int
	SectionTitle string
	Label        string
}

// Items lists every completion unit of days in display order.
func Items(days []DayPlan) []Item {
	var items []Item
	walkItems(days, func(item Item) {
		items = append(items, item)
	})
	return items
}

// HasItem reports whether key addresses an item of days.
func HasItem(days []DayPlan, key CompletionKey) bool {
	if key.Day < 0 || key.Day >= len(days) {
		return false
	}
	sections := days[key.Day].Sections()
	if key.Section < 0 || key.Section >= len(sections) {
		return false
	}
	tasks := sections[key.Section].Tasks
	if key.Task < 0 || key.Task >= len(tasks) {
		return false
	}
	if !key.IsSubtask() {
		return true
	}
	return key.Subtask >= 0 && key.Subtask < len(tasks[key.Task].Subtasks)
}

func walkItems(days []DayPlan, fn func(Item)) {
	for d, day := range days {
		for s, section := range day.Sections() {
			for t, task := range section.Tasks {
				fn(Item{Key: TaskKey(d, s, t), DayNumber: day.Day, SectionTitle: section.Title, Label: task.MainTask})
				for u, sub := range task.Subtasks {
					fn(Item{Key: SubtaskKey(d, s, t, u), DayNumber: day.Day, SectionTitle: section.Title, Label: sub})
				}
			}
		}
	}
}

// Progress aggregates completion over a plan. Every main task and every
// subtask counts as one unit.
type Progress struct {
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Percent   float64       `json:"percent"`
	Days      []DayProgress `json:"days,omitempty"`
}

// DayProgress is the completion of a single day.
type DayProgress struct {
	Day       int     `json:"day"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// Rounded returns the percentage rounded to the nearest integer.
func (p Progress) Rounded() int {
	return int(math.Round(p.Percent))
}

// AllDone reports whether every unit of a non-empty plan is checked.
func (p Progress) AllDone() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// ComputeProgress derives completion of days from state. Checked keys that do
// not address an item of days are ignored.
func ComputeProgress(days []DayPlan, state *CompletionState) Progress {
	var p Progress
	p.Days = make([]DayProgress, len(days))
	for i, day := range days {
		p.Days[i].Day = day.Day
	}

	walkItems(days, func(item Item) {
		dp := &p.Days[item.Key.Day]
		p.Total++
		dp.Total++
		if state.IsChecked(item.Key) {
			p.Completed++
			dp.Completed++
		}
	})

	p.Percent = percent(p.Completed, p.Total)
	for i := range p.Days {
		p.Days[i].Percent = percent(p.Days[i].Completed, p.Days[i].Total)
	}
	return p
}

func percent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
