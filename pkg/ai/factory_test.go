package ai_test

import (
	"context"
	"testing"

	infraAI "github.com/felixgeelhaar/goalgenie/pkg/ai"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		wantID  string
		wantErr bool
	}{
		{"", "", "gemini:" + infraAI.DefaultGeminiModel, false},
		{"gemini", "gemini-1.5-pro", "gemini:gemini-1.5-pro", false},
		{"OpenAI", "gpt-4o", "openai:gpt-4o", false},
		{"anthropic", "claude", "anthropic:claude", false},
		{"ollama", "", "ollama:llama3", false},
		{"mock", "m", "mock:m", false},
		{"unknown", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := infraAI.NewProvider(tt.name, tt.model)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && p.ID() != tt.wantID {
				t.Errorf("ID() = %s, want %s", p.ID(), tt.wantID)
			}
		})
	}
}

func TestGetDefaultProvider_EnvOverrides(t *testing.T) {
	t.Setenv(infraAI.EnvProvider, "mock")
	t.Setenv(infraAI.EnvModel, "env-model")

	p, err := infraAI.GetDefaultProvider("gemini", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("GetDefaultProvider: %v", err)
	}
	if p.ID() != "mock:env-model" {
		t.Errorf("expected env override, got %s", p.ID())
	}
}

func TestMockProvider_DefaultsToSamplePlan(t *testing.T) {
	m := &infraAI.MockProvider{Model: "test"}
	resp, err := m.Complete(context.Background(), ai.CompletionRequest{Prompt: "plan please"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != infraAI.SamplePlan {
		t.Errorf("expected sample plan, got %q", resp.Text)
	}
	if m.Calls() != 1 || m.LastRequest().Prompt != "plan please" {
		t.Errorf("unexpected recorded call: %d %+v", m.Calls(), m.LastRequest())
	}
}

func TestMockProvider_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &infraAI.MockProvider{}
	if _, err := m.Complete(ctx, ai.CompletionRequest{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
