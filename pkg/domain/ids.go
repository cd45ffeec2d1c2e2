package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches ids that are safe to use as file name components.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// GoalID is a validated goal identifier.
type GoalID struct {
	value string
}

// NewGoalID creates a GoalID from a string value.
// Returns an error if the value is invalid.
func NewGoalID(value string) (GoalID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return GoalID{}, fmt.Errorf("goal ID cannot be empty")
	}
	if len(value) > 64 || !idPattern.MatchString(value) {
		return GoalID{}, fmt.Errorf("invalid goal ID format: %s", value)
	}
	return GoalID{value: value}, nil
}

// MustGoalID creates a GoalID or panics if invalid. Use only in tests.
func MustGoalID(value string) GoalID {
	id, err := NewGoalID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the GoalID.
func (id GoalID) String() string {
	return id.value
}

// IsZero returns true if the GoalID is empty.
func (id GoalID) IsZero() bool {
	return id.value == ""
}
