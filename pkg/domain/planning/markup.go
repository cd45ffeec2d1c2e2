package planning

import (
	"regexp"
	"strings"
)

// FormatVersion identifies the delimiter convention shared by the generation
// prompt and the parsers in this package. Bump it whenever either side changes.
const FormatVersion = "1"

// Delimiters of the plan text format.
const (
	HeaderDelimiter   = "**"
	TaskMarker        = "*"
	SubtaskSeparator  = "•"
	LabelSeparator    = ":"
	DayHeaderTemplate = "**Day %d:**"
)

// mojibakeSeparator is the UTF-8 bullet decoded as Latin-1.
const mojibakeSeparator = "â€¢"

var (
	// A day title may sit inside the delimiters after the colon: **Day 2: Arrays**.
	dayHeaderPattern     = regexp.MustCompile(`(?i)^\*\*\s*day\s+(\d+)\s*(?::[^*]*)?\*\*`)
	sectionHeaderPattern = regexp.MustCompile(`^\*\*([^*]+)\*\*`)
)

// isTaskLine reports whether a trimmed line carries exactly one leading task marker.
func isTaskLine(line string) bool {
	return strings.HasPrefix(line, TaskMarker) && !strings.HasPrefix(line, HeaderDelimiter)
}

// cleanTitle strips whitespace and one trailing label separator.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, LabelSeparator)
	return strings.TrimSpace(s)
}

func normalizeLine(line string) string {
	return strings.TrimSpace(strings.TrimSuffix(line, "\r"))
}
