package sdk

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when a tool result contains no content items.
var ErrNoContent = errors.New("goalgenie: empty tool result")

// ErrIncompatibleFormat is returned when the server's plan format version
// differs from SupportedFormatVersion.
var ErrIncompatibleFormat = errors.New("goalgenie: incompatible plan format")

// ToolError is returned when a tool call returns an error result.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("goalgenie: tool %s: %s", e.Tool, e.Message)
}
