package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

var errNoProvider = errors.New("no text generation provider configured")

// GeneratedPlan is the outcome of one generation attempt. A failed attempt is
// encoded in the data: Days holds the fallback plan and Fallback is set.
type GeneratedPlan struct {
	Days          []planning.DayPlan
	Report        planning.DayCountReport
	Fallback      bool
	FailureReason string
	Model         string
	Usage         ai.TokenUsage
	Duration      time.Duration
}

// PlanAssembler turns a goal request into a parsed day plan.
type PlanAssembler struct {
	provider ai.Provider
	logger   *slog.Logger
}

func NewPlanAssembler(provider ai.Provider, logger *slog.Logger) *PlanAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanAssembler{provider: provider, logger: logger}
}

// Provider returns the generation backend in use.
func (a *PlanAssembler) Provider() ai.Provider {
	return a.provider
}

// GeneratePlan calls the provider exactly once and parses its answer. It never
// fails: provider errors and empty answers yield the fallback plan.
func (a *PlanAssembler) GeneratePlan(ctx context.Context, req goal.Request) *GeneratedPlan {
	start := time.Now()
	plan := &GeneratedPlan{}

	text, err := a.complete(ctx, req, plan)
	plan.Duration = time.Since(start)

	if err != nil {
		plan.Days = planning.FallbackPlan()
		plan.Fallback = true
		plan.FailureReason = err.Error()
		plan.Report = planning.ReportDayCount(plan.Days, req.NumberOfDays)
		a.logger.Warn("plan generation failed",
			"title", req.Title,
			"error", err,
			"duration", plan.Duration)
		return plan
	}

	plan.Days = planning.ParseDays(text)
	plan.Fallback = planning.IsFallback(plan.Days)
	plan.Report = planning.ReportDayCount(plan.Days, req.NumberOfDays)
	if plan.Fallback {
		plan.FailureReason = "no day headers found in generated text"
		a.logger.Warn("generated text could not be parsed",
			"title", req.Title,
			"chars", len(text))
		return plan
	}

	if plan.Report.Mismatch() {
		a.logger.Warn("day count mismatch",
			"requested", plan.Report.Requested,
			"parsed", plan.Report.Parsed,
			"missing", plan.Report.Missing,
			"duplicates", plan.Report.Duplicates)
	}
	a.logger.Info("plan generated",
		"title", req.Title,
		"days", len(plan.Days),
		"model", plan.Model,
		"duration", plan.Duration)
	return plan
}

func (a *PlanAssembler) complete(ctx context.Context, req goal.Request, plan *GeneratedPlan) (string, error) {
	if a.provider == nil {
		return "", errNoProvider
	}

	plan.Model = a.provider.ID()
	resp, err := a.provider.Complete(ctx, ai.CompletionRequest{
		Prompt: BuildPrompt(req),
		System: systemPrompt,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", ai.ErrEmptyCompletion
	}

	if resp.Model != "" {
		plan.Model = resp.Model
	}
	plan.Usage = resp.Usage
	return resp.Text, nil
}
