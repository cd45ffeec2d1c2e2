package planning

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// dayBuilder accumulates the recognised lines of one day block.
type dayBuilder struct {
	day   int
	lines []string
}

func (b *dayBuilder) build() DayPlan {
	return DayPlan{Day: b.day, Task: strings.Join(b.lines, "\n")}
}

// ParseDays splits generated plan text into day records in a single pass.
//
// A day header opens a new day and closes the previous one. Section headers
// and task lines are collected verbatim into the open day; every other line is
// ignored, as is anything before the first valid header. When no day header
// is found the fallback plan is returned, so the result is never empty.
func ParseDays(text string) []DayPlan {
	days := parseDayBlocks(text)
	if len(days) == 0 {
		return FallbackPlan()
	}
	return days
}

func parseDayBlocks(text string) []DayPlan {
	var (
		days    []DayPlan
		current *dayBuilder
	)

	for _, raw := range strings.Split(text, "\n") {
		line := normalizeLine(raw)
		if line == "" {
			continue
		}

		if n, isHeader := matchDayHeader(line); isHeader {
			if n < 1 {
				continue
			}
			if current != nil {
				days = append(days, current.build())
			}
			current = &dayBuilder{day: n}
			continue
		}

		if m := sectionHeaderPattern.FindStringSubmatch(line); m != nil {
			if current != nil {
				current.lines = append(current.lines, HeaderDelimiter+strings.TrimSpace(m[1])+HeaderDelimiter)
			}
			continue
		}

		if isTaskLine(line) && current != nil {
			current.lines = append(current.lines, line)
		}
	}

	if current != nil {
		days = append(days, current.build())
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

// matchDayHeader reports whether line is a day header and extracts its day
// number. A header whose number is not a positive integer yields 0.
func matchDayHeader(line string) (int, bool) {
	m := dayHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, true
	}
	return n, true
}

// DayHeader renders the header line for day n.
func DayHeader(n int) string {
	return fmt.Sprintf(DayHeaderTemplate, n)
}

// DayCountReport compares the days a plan contains with the days requested.
type DayCountReport struct {
	Requested  int   `json:"requested"`
	Parsed     int   `json:"parsed"`
	Missing    []int `json:"missing,omitempty"`
	Duplicates []int `json:"duplicates,omitempty"`
}

// Mismatch reports whether the parsed day count differs from the request.
func (r DayCountReport) Mismatch() bool {
	return r.Parsed != r.Requested
}

// ReportDayCount builds the day count report for days against a requested count.
// A fallback plan counts as zero parsed days.
func ReportDayCount(days []DayPlan, requested int) DayCountReport {
	report := DayCountReport{Requested: requested}
	if IsFallback(days) {
		for n := 1; n <= requested; n++ {
			report.Missing = append(report.Missing, n)
		}
		return report
	}

	report.Parsed = len(days)
	seen := make(map[int]int, len(days))
	for _, d := range days {
		seen[d.Day]++
		if seen[d.Day] == 2 {
			report.Duplicates = append(report.Duplicates, d.Day)
		}
	}
	for n := 1; n <= requested; n++ {
		if seen[n] == 0 {
			report.Missing = append(report.Missing, n)
		}
	}
	return report
}
