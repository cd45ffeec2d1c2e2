package goal

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates no goal exists with the requested id.
	ErrNotFound = errors.New("goal not found")

	// ErrInvalidRequest indicates a goal request failed validation.
	ErrInvalidRequest = errors.New("invalid goal request")
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in a Request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid goal request: " + strings.Join(parts, "; ")
}

// Is allows errors.Is to work with ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
