package application_test

import (
	"testing"

	"github.com/felixgeelhaar/goalgenie/pkg/application"
	domainai "github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

func TestUsageService_RecordGeneration(t *testing.T) {
	service := application.NewUsageService(newWorkspace(t))

	if err := service.RecordGeneration("gemini-2.0-flash", domainai.TokenUsage{InputTokens: 100, OutputTokens: 400}, false); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}
	if err := service.RecordGeneration("", domainai.TokenUsage{}, true); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}

	stats, err := service.GetUsage()
	if err != nil {
		t.Fatalf("GetUsage: %v", err)
	}
	if stats.Generations != 2 || stats.FailedGenerations != 1 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.ProviderStats["gemini-2.0-flash:input"] != 100 || stats.ProviderStats["gemini-2.0-flash:output"] != 400 {
		t.Errorf("unexpected provider stats %v", stats.ProviderStats)
	}
	if stats.LastGenerationAt.IsZero() {
		t.Error("expected last generation time")
	}

	total, _ := service.GetTotalTokens()
	if total != 500 {
		t.Errorf("expected 500 tokens, got %d", total)
	}
}

func TestUsageService_EmptyWorkspace(t *testing.T) {
	service := application.NewUsageService(newWorkspace(t))

	stats, _ := service.GetUsage()
	if stats.Generations != 0 || stats.ProviderStats == nil {
		t.Errorf("unexpected empty stats %+v", stats)
	}
}
