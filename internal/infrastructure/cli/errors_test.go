package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != 1 {
			t.Fatalf("expected exit code 1, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		if !errors.Is(e, cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
		wantCLI  bool
	}{
		{
			name: "nil returns nil",
			err:  nil,
		},
		{
			name:     "ErrNotInitialized",
			err:      ErrNotInitialized,
			wantHint: "Run 'goalgenie init' to create one",
			wantCLI:  true,
		},
		{
			name:     "wrapped ErrNotFound",
			err:      fmt.Errorf("%w: abc", goal.ErrNotFound),
			wantHint: "Run 'goalgenie goal list' to see available goals",
			wantCLI:  true,
		},
		{
			name:     "ValidationError",
			err:      &goal.ValidationError{Fields: []goal.FieldError{{Field: "title", Message: "is required"}}},
			wantHint: "Run 'goalgenie goal create --help' to see the accepted values",
			wantCLI:  true,
		},
		{
			name:     "ErrInvalidKey",
			err:      planning.ErrInvalidKey,
			wantHint: "Keys look like 0-1-2 for a task or 0-1-2-0 for a subtask",
			wantCLI:  true,
		},
		{
			name:     "ErrUnknownItem",
			err:      fmt.Errorf("%w: 3-0-0", planning.ErrUnknownItem),
			wantHint: "Run 'goalgenie goal show <id>' to list item keys",
			wantCLI:  true,
		},
		{
			name:     "ConflictError",
			err:      &planning.ConflictError{Expected: 1, Actual: 2},
			wantHint: "Run the command again",
			wantCLI:  true,
		},
		{
			name: "unknown error passes through",
			err:  errors.New("disk full"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			var cliErr *CLIError
			isCLI := errors.As(got, &cliErr)
			if isCLI != tt.wantCLI {
				t.Fatalf("MapError(%v) CLIError = %v, want %v", tt.err, isCLI, tt.wantCLI)
			}
			if !tt.wantCLI {
				if got != tt.err {
					t.Errorf("expected error returned unchanged, got %v", got)
				}
				return
			}
			if cliErr.Hint != tt.wantHint {
				t.Errorf("hint = %q, want %q", cliErr.Hint, tt.wantHint)
			}
			if !errors.Is(got, tt.err) {
				t.Error("mapped error should wrap the original")
			}
		})
	}
}
