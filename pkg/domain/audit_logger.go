package domain

// Actors recorded on audit events.
const (
	ActorUser   = "user"
	ActorSystem = "system"
)

// Audit actions.
const (
	ActionWorkspaceInitialized = "workspace.initialized"
	ActionGoalCreated          = "goal.created"
	ActionGoalDeleted          = "goal.deleted"
	ActionPlanGenerated        = "plan.generated"
	ActionPlanGenerationFailed = "plan.generation_failed"
	ActionPlanDayCountMismatch = "plan.day_count_mismatch"
	ActionCompletionToggled    = "completion.toggled"
	ActionCompletionReset      = "completion.reset"
)

// AuditLogger provides a simple interface for logging audit events.
// Services should depend on this interface rather than concrete implementations.
type AuditLogger interface {
	Log(action string, actor string, metadata map[string]any) error
}
