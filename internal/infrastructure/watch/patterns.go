package watch

import (
	"path/filepath"
)

// PatternFilter filters file names with include and exclude globs.
type PatternFilter struct {
	Include []string
	Exclude []string
}

func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{
		Include: include,
		Exclude: exclude,
	}
}

// WorkspaceFilter passes goal, completion and audit files and skips editor
// and SQLite scratch files.
func WorkspaceFilter() *PatternFilter {
	return NewPatternFilter(
		[]string{"goal-*.json", "completion-*.json", "events.jsonl", "goalgenie.db"},
		[]string{"*.tmp", "*.swp", "*~", "*-wal", "*-shm", "*-journal"},
	)
}

// Matches reports whether the base name of path passes the filter. Excludes
// win over includes; an empty include list passes everything.
func (f *PatternFilter) Matches(path string) bool {
	base := filepath.Base(path)

	for _, pattern := range f.Exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
