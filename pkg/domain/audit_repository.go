package domain

import (
	"fmt"
	"strings"
)

// AuditRepository persists the append-only audit trail and usage statistics.
type AuditRepository interface {
	AppendEvent(event Event) error
	// LoadEvents returns every readable event in order. Entries that cannot
	// be decoded are skipped and reported as a *CorruptEventsError together
	// with the events that could be read.
	LoadEvents() ([]Event, error)
	UpdateUsage(stats UsageStats) error
	LoadUsage() (*UsageStats, error)
}

// CorruptEventsError lists the 1-based lines of the audit trail that could
// not be decoded.
type CorruptEventsError struct {
	Lines []int
}

func (e *CorruptEventsError) Error() string {
	lines := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = fmt.Sprint(l)
	}
	return "unreadable audit events on line " + strings.Join(lines, ", ")
}
