package ai

import (
	"context"
	"errors"
	"testing"
)

// stubProvider implements the Provider interface for testing.
type stubProvider struct {
	id       string
	response *CompletionResponse
	err      error
}

func (s *stubProvider) ID() string { return s.id }
func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func TestProvider_InterfaceContract(t *testing.T) {
	var _ Provider = &stubProvider{}
}

func TestProvider_Complete_Success(t *testing.T) {
	provider := &stubProvider{
		id: "test-provider",
		response: &CompletionResponse{
			Text:  "**Day 1:**",
			Model: "test-model",
			Usage: TokenUsage{InputTokens: 10, OutputTokens: 5},
		},
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "Plan"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "**Day 1:**" {
		t.Errorf("Text = %s", resp.Text)
	}
	if resp.Usage.Total() != 15 {
		t.Errorf("Total() = %d, want 15", resp.Usage.Total())
	}
}

func TestProvider_Complete_Error(t *testing.T) {
	provider := &stubProvider{id: "error-provider", err: ErrEmptyCompletion}

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "test"})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestProvider_Complete_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &stubProvider{id: "ctx-provider", response: &CompletionResponse{Text: "x"}}
	if _, err := provider.Complete(ctx, CompletionRequest{Prompt: "test"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
