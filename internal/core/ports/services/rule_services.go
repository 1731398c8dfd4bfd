package services

import (
	"context"
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/dto"
)

// RuleSvcFacade covers recurrence rule management. Saving or editing a rule
// recomputes next_run_at immediately with the service clock so the stored
// schedule is always the product of the last mutation.
type RuleSvcFacade interface {
	CreateRule(ctx context.Context, req dto.CreateRuleRequest, actorUserID string) (*domain.RecurrenceRule, error)
	UpdateRule(ctx context.Context, ruleID string, req dto.UpdateRuleRequest, actorUserID string) (*domain.RecurrenceRule, error)
	DeleteRule(ctx context.Context, ruleID string, actorUserID string) error
	GetRuleByID(ctx context.Context, ruleID string, actorUserID string) (*domain.RecurrenceRule, error)
	ListRules(ctx context.Context, actorUserID string) ([]domain.RecurrenceRule, error)
	ListRuleLogs(ctx context.Context, limit int, actorUserID string) ([]domain.RuleLogEntry, error)
}

// RunReport summarizes one due-rule execution pass. Per-rule failures are
// collected, never propagated; a failed rule stays due and is retried on the
// next pass.
type RunReport struct {
	Due     int `json:"due"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// RuleExecutorSvcFacade runs the due-rule pass.
type RuleExecutorSvcFacade interface {
	// RunDueRules materializes a payment request for every due rule and
	// advances each rule's schedule. now is the single reference instant for
	// both the due check and the recomputation.
	RunDueRules(ctx context.Context, now time.Time) (RunReport, error)
}

// PruneReport summarizes one retention pass over requisites files.
type PruneReport struct {
	Pruned  int `json:"pruned"`
	Skipped int `json:"skipped"`
}

// RetentionSvcFacade prunes requisites files past the configured retention.
type RetentionSvcFacade interface {
	// PruneRequisitesFiles removes expired requisites files and writes the
	// corresponding audit records. A non-positive retention disables the pass.
	PruneRequisitesFiles(ctx context.Context, now time.Time) (PruneReport, error)
}
