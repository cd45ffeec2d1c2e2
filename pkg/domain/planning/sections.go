package planning

import (
	"strings"
)

// ParseSections expands one day's raw text into its sections and tasks.
//
// A line wrapped in the header delimiter opens a new section. A task line is
// appended to the open section; task lines seen before any section header are
// dropped. ParseSections is pure: equal input always yields equal output.
func ParseSections(raw string) []Section {
	var (
		sections []Section
		current  *Section
	)

	for _, l := range strings.Split(raw, "\n") {
		line := normalizeLine(l)
		if line == "" {
			continue
		}

		if title, ok := parseSectionHeader(line); ok {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{Title: title, Tasks: []Task{}}
			continue
		}

		if !isTaskLine(line) || current == nil {
			continue
		}
		if task, ok := parseTaskLine(line); ok {
			current.Tasks = append(current.Tasks, task)
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

func parseSectionHeader(line string) (string, bool) {
	if len(line) <= 2*len(HeaderDelimiter) ||
		!strings.HasPrefix(line, HeaderDelimiter) || !strings.HasSuffix(line, HeaderDelimiter) {
		return "", false
	}
	title := cleanTitle(line[len(HeaderDelimiter) : len(line)-len(HeaderDelimiter)])
	if title == "" {
		return "", false
	}
	return title, true
}

// parseTaskLine splits "* Label: a • b" into its label and subtasks.
func parseTaskLine(line string) (Task, bool) {
	body := unemphasize(strings.TrimSpace(strings.TrimPrefix(line, TaskMarker)))
	label, rest, hasRest := strings.Cut(body, LabelSeparator)
	label = strings.TrimSpace(label)
	if label == "" {
		return Task{}, false
	}

	task := Task{MainTask: label, Subtasks: []string{}}
	if !hasRest {
		return task, true
	}

	rest = strings.ReplaceAll(rest, mojibakeSeparator, SubtaskSeparator)
	for _, part := range strings.Split(rest, SubtaskSeparator) {
		if sub := strings.TrimSpace(part); sub != "" {
			task.Subtasks = append(task.Subtasks, sub)
		}
	}
	return task, true
}

// unemphasize drops one leading pair of header delimiters from a task body,
// so "**Basics:** a • b" and "**Basics**: a • b" read as "Basics: a • b".
func unemphasize(body string) string {
	inner, ok := strings.CutPrefix(body, HeaderDelimiter)
	if !ok {
		return body
	}
	emphasized, after, closed := strings.Cut(inner, HeaderDelimiter)
	if !closed || strings.TrimSpace(emphasized) == "" {
		return body
	}
	return strings.TrimSpace(emphasized) + after
}
