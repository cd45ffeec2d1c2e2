package ai

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

// SamplePlan is the canned answer of a MockProvider without a Response.
const SamplePlan = `**Day 1:**
**Introduction:**
* What are data structures?: Definition • Types • Why they matter
* Set up your environment: Install Go • Create a workspace
**Practice:**
* Arrays and slices: Indexing • Appending • Copying
**Day 2:**
**Linked lists:**
* Singly linked lists: Insert • Delete • Traverse
* Review: Summarise day 1 and day 2`

// MockProvider is an offline provider returning canned text. It is selected
// with provider "mock" and used throughout the tests.
type MockProvider struct {
	Model    string
	Response string
	Err      error

	mu          sync.Mutex
	calls       int
	lastRequest ai.CompletionRequest
}

func (m *MockProvider) ID() string {
	return "mock:" + m.Model
}

func (m *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	m.mu.Lock()
	m.calls++
	m.lastRequest = req
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	text := m.Response
	if text == "" {
		text = SamplePlan
	}
	return &ai.CompletionResponse{
		Text:  text,
		Model: m.Model,
		Usage: ai.TokenUsage{InputTokens: len(req.Prompt) / 4, OutputTokens: len(text) / 4},
	}, nil
}

// Calls returns how many times Complete was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request passed to Complete.
func (m *MockProvider) LastRequest() ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}
