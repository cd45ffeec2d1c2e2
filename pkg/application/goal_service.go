package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/google/uuid"
)

// GoalService creates goals, generates their plans and stores them.
type GoalService struct {
	repo      domain.GoalRepository
	assembler *PlanAssembler
	audit     domain.AuditLogger
	usage     *UsageService
	logger    *slog.Logger
}

// NewGoalService wires a goal service. audit and usage may be nil.
func NewGoalService(repo domain.GoalRepository, assembler *PlanAssembler, audit domain.AuditLogger, usage *UsageService, logger *slog.Logger) *GoalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoalService{repo: repo, assembler: assembler, audit: audit, usage: usage, logger: logger}
}

// CreateGoal validates req, generates its plan and persists the goal. A failed
// generation still produces a stored goal carrying the fallback plan; only
// validation and storage errors are returned.
func (s *GoalService) CreateGoal(ctx context.Context, req goal.Request) (*goal.Goal, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	generated := s.assembler.GeneratePlan(ctx, req)

	now := time.Now().UTC()
	g := &goal.Goal{
		ID:        uuid.New().String(),
		Request:   req,
		DailyPlan: generated.Days,
		Report:    generated.Report,
		Fallback:  generated.Fallback,
		Model:     generated.Model,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("save goal: %w", err)
	}

	s.recordCreation(g, generated)
	return g, nil
}

func (s *GoalService) recordCreation(g *goal.Goal, generated *GeneratedPlan) {
	if s.usage != nil {
		if err := s.usage.RecordGeneration(generated.Model, generated.Usage, generated.Fallback); err != nil {
			s.logger.Warn("failed to record usage", "goal_id", g.ID, "error", err)
		}
	}

	s.log(domain.ActionGoalCreated, domain.ActorUser, map[string]any{
		"goal_id": g.ID,
		"title":   g.Title,
		"days":    g.NumberOfDays,
	})
	if generated.Fallback {
		s.log(domain.ActionPlanGenerationFailed, domain.ActorSystem, map[string]any{
			"goal_id": g.ID,
			"reason":  generated.FailureReason,
		})
		return
	}
	s.log(domain.ActionPlanGenerated, domain.ActorSystem, map[string]any{
		"goal_id":       g.ID,
		"model":         generated.Model,
		"days":          len(g.DailyPlan),
		"input_tokens":  generated.Usage.InputTokens,
		"output_tokens": generated.Usage.OutputTokens,
	})
	if generated.Report.Mismatch() {
		s.log(domain.ActionPlanDayCountMismatch, domain.ActorSystem, map[string]any{
			"goal_id":   g.ID,
			"requested": generated.Report.Requested,
			"parsed":    generated.Report.Parsed,
			"missing":   generated.Report.Missing,
		})
	}
}

// GetGoal loads one goal. Unknown ids yield goal.ErrNotFound.
func (s *GoalService) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	return s.repo.LoadGoal(ctx, id)
}

// ListGoals returns all goals, newest first.
func (s *GoalService) ListGoals(ctx context.Context) ([]*goal.Goal, error) {
	goals, err := s.repo.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

// DeleteGoal removes a goal together with its completion state.
func (s *GoalService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.repo.DeleteGoal(ctx, id); err != nil {
		return err
	}
	s.log(domain.ActionGoalDeleted, domain.ActorUser, map[string]any{"goal_id": id})
	return nil
}

func (s *GoalService) log(action, actor string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(action, actor, metadata); err != nil {
		s.logger.Warn("failed to write audit event", "action", action, "error", err)
	}
}
