package ai_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infraAI "github.com/felixgeelhaar/goalgenie/pkg/ai"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

// flakyProvider fails the first failures calls, then succeeds.
type flakyProvider struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyProvider) ID() string { return "flaky" }

func (f *flakyProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient")
	}
	return &ai.CompletionResponse{Text: "ok"}, nil
}

// blockingProvider waits for its context to end.
type blockingProvider struct{}

func (blockingProvider) ID() string { return "blocking" }

func (blockingProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResilientProvider_ID_Delegates(t *testing.T) {
	p := infraAI.NewResilientProvider(&infraAI.MockProvider{Model: "test-model"})
	if p.ID() != "mock:test-model" {
		t.Errorf("expected ID 'mock:test-model', got %q", p.ID())
	}
}

func TestResilientProvider_DefaultConfig(t *testing.T) {
	cfg := infraAI.DefaultResilienceConfig()
	if cfg.MaxRetries != 2 {
		t.Errorf("expected MaxRetries 2, got %d", cfg.MaxRetries)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("expected RetryDelay 1s, got %v", cfg.RetryDelay)
	}
	if cfg.Timeout != 300*time.Second {
		t.Errorf("expected Timeout 300s, got %v", cfg.Timeout)
	}
}

func TestResilientProvider_ZeroConfigGetsDefaults(t *testing.T) {
	p := infraAI.NewResilientProviderWithConfig(&infraAI.MockProvider{}, infraAI.ResilienceConfig{})
	if p.Config() != infraAI.DefaultResilienceConfig() {
		t.Errorf("expected defaults, got %+v", p.Config())
	}
}

func TestResilientProvider_RetriesTransientFailure(t *testing.T) {
	inner := &flakyProvider{failures: 1}
	p := infraAI.NewResilientProviderWithConfig(inner, infraAI.ResilienceConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Timeout:    5 * time.Second,
	})

	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 calls, got %d", inner.calls)
	}
}

func TestResilientProvider_RetriesDisabled(t *testing.T) {
	inner := &flakyProvider{failures: 1}
	p := infraAI.NewResilientProviderWithConfig(inner, infraAI.ResilienceConfig{
		MaxRetries: -1,
		RetryDelay: time.Millisecond,
	})

	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error with retries disabled")
	}
	if inner.calls != 1 {
		t.Errorf("expected a single call, got %d", inner.calls)
	}
}

func TestResilientProvider_Timeout(t *testing.T) {
	p := infraAI.NewResilientProviderWithConfig(blockingProvider{}, infraAI.ResilienceConfig{
		MaxRetries: -1,
		RetryDelay: time.Millisecond,
		Timeout:    20 * time.Millisecond,
	})

	start := time.Now()
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout was not enforced")
	}
}

func TestResilientProvider_DoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	inner := infraAI.NewGeminiProviderWithClient("gemini-test", "bad-key", server.URL, server.Client())
	p := infraAI.NewResilientProviderWithConfig(inner, infraAI.ResilienceConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Timeout:    5 * time.Second,
	})

	_, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	var se *infraAI.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestResilientProvider_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	inner := infraAI.NewGeminiProviderWithClient("gemini-test", "key", server.URL, server.Client())
	p := infraAI.NewResilientProviderWithConfig(inner, infraAI.ResilienceConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Timeout:    5 * time.Second,
	})

	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

// emptyProvider always answers with an empty completion.
type emptyProvider struct{ calls atomic.Int32 }

func (e *emptyProvider) ID() string { return "empty" }

func (e *emptyProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	e.calls.Add(1)
	return nil, ai.ErrEmptyCompletion
}

func TestResilientProvider_DoesNotRetryEmptyCompletion(t *testing.T) {
	inner := &emptyProvider{}
	p := infraAI.NewResilientProviderWithConfig(inner, infraAI.ResilienceConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Timeout:    5 * time.Second,
	})

	_, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	if !errors.Is(err, ai.ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}
