package planning

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NoSubtask marks a CompletionKey that addresses a main task.
const NoSubtask = -1

var (
	// ErrInvalidKey is returned when a completion key cannot be parsed.
	ErrInvalidKey = errors.New("invalid completion key")
	// ErrUnknownItem is returned when a key does not address an item of the plan.
	ErrUnknownItem = errors.New("no such plan item")
)

// CompletionKey addresses one checkable item. Day is the position of the day
// in the plan's day sequence, not its day number.
type CompletionKey struct {
	Day     int
	Section int
	Task    int
	Subtask int
}

// TaskKey addresses a main task.
func TaskKey(day, section, task int) CompletionKey {
	return CompletionKey{Day: day, Section: section, Task: task, Subtask: NoSubtask}
}

// SubtaskKey addresses a subtask.
func SubtaskKey(day, section, task, subtask int) CompletionKey {
	return CompletionKey{Day: day, Section: section, Task: task, Subtask: subtask}
}

// IsSubtask reports whether the key addresses a subtask.
func (k CompletionKey) IsSubtask() bool {
	return k.Subtask != NoSubtask
}

// String renders the key as "d-s-t" or "d-s-t-u".
func (k CompletionKey) String() string {
	if k.IsSubtask() {
		return fmt.Sprintf("%d-%d-%d-%d", k.Day, k.Section, k.Task, k.Subtask)
	}
	return fmt.Sprintf("%d-%d-%d", k.Day, k.Section, k.Task)
}

// ParseCompletionKey parses the textual form produced by String.
func ParseCompletionKey(s string) (CompletionKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 && len(parts) != 4 {
		return CompletionKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return CompletionKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
		nums[i] = n
	}
	if len(nums) == 3 {
		return TaskKey(nums[0], nums[1], nums[2]), nil
	}
	return SubtaskKey(nums[0], nums[1], nums[2], nums[3]), nil
}

func (k CompletionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CompletionKey) UnmarshalText(text []byte) error {
	parsed, err := ParseCompletionKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// CompletionState records which items of one goal's plan are checked.
// Absent keys are unchecked. A nil state reads as all unchecked and ignores
// writes.
type CompletionState struct {
	GoalID    string                 `json:"goal_id"`
	Version   int                    `json:"version"`
	Checked   map[CompletionKey]bool `json:"checked"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ConflictError is returned when a save fails due to a version mismatch.
type ConflictError struct {
	Expected int
	Actual   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: expected version %d but found %d; reload and retry", e.Expected, e.Actual)
}

func NewCompletionState(goalID string) *CompletionState {
	return &CompletionState{
		GoalID:    goalID,
		Checked:   make(map[CompletionKey]bool),
		UpdatedAt: time.Now(),
	}
}

// IsChecked reports whether key is checked.
func (s *CompletionState) IsChecked(key CompletionKey) bool {
	if s == nil {
		return false
	}
	return s.Checked[key]
}

// Toggle flips key and returns its new value. No other key is affected.
func (s *CompletionState) Toggle(key CompletionKey) bool {
	return s.apply(key, EventToggle)
}

// SetChecked sets key to checked. Setting a key to its current value is a no-op.
func (s *CompletionState) SetChecked(key CompletionKey, checked bool) {
	event := EventUncheck
	if checked {
		event = EventCheck
	}
	s.apply(key, event)
}

// Clear unchecks every key.
func (s *CompletionState) Clear() {
	if s == nil {
		return
	}
	s.Checked = make(map[CompletionKey]bool)
	s.UpdatedAt = time.Now()
}

// CheckedCount returns the number of checked keys.
func (s *CompletionState) CheckedCount() int {
	if s == nil {
		return 0
	}
	return len(s.Checked)
}

func (s *CompletionState) apply(key CompletionKey, event string) bool {
	if s == nil {
		return false
	}
	if s.Checked == nil {
		s.Checked = make(map[CompletionKey]bool)
	}
	checked := NextCheckboxState(s.Checked[key], event)
	if checked {
		s.Checked[key] = true
	} else {
		delete(s.Checked, key)
	}
	s.UpdatedAt = time.Now()
	return checked
}
