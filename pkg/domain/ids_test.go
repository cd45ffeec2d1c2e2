package domain_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/goalgenie/pkg/domain"
)

func TestGoalID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"uuid", "3f2b1c9e-8a4d-4e2f-9c1b-7d6e5a4b3c2d", false},
		{"slug", "learn_go-1", false},
		{"starts with digit", "1abc", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"path traversal", "../etc", true},
		{"slash", "a/b", true},
		{"dot", "a.json", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := domain.NewGoalID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGoalID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && id.String() != tt.value {
				t.Errorf("String() = %v, want %v", id.String(), tt.value)
			}
		})
	}
}

func TestGoalID_IsZero(t *testing.T) {
	var zero domain.GoalID
	if !zero.IsZero() {
		t.Error("expected zero value to be zero")
	}

	if domain.MustGoalID("g1").IsZero() {
		t.Error("expected non-zero value to not be zero")
	}
}
