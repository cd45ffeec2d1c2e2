package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// ErrNotInitialized indicates the command needs a .goalgenie workspace.
var ErrNotInitialized = errors.New("workspace not initialized")

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var verr *goal.ValidationError
	if errors.As(err, &verr) {
		return NewCLIError("invalid goal", "Run 'goalgenie goal create --help' to see the accepted values", err)
	}

	var conflict *planning.ConflictError
	if errors.As(err, &conflict) {
		return NewCLIError("completion state changed concurrently", "Run the command again", err)
	}

	switch {
	case errors.Is(err, ErrNotInitialized):
		return NewCLIError("no goalgenie workspace found", "Run 'goalgenie init' to create one", err)
	case errors.Is(err, goal.ErrNotFound):
		return NewCLIError("goal not found", "Run 'goalgenie goal list' to see available goals", err)
	case errors.Is(err, planning.ErrInvalidKey):
		return NewCLIError("invalid item key", "Keys look like 0-1-2 for a task or 0-1-2-0 for a subtask", err)
	case errors.Is(err, planning.ErrUnknownItem):
		return NewCLIError("no such item in this plan", "Run 'goalgenie goal show <id>' to list item keys", err)
	}

	return err
}
