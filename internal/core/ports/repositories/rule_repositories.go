package repositories

import (
	"context"
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
)

// RuleReader defines read operations for recurrence rules
type RuleReader interface {
	// FindRuleByID retrieves a rule by its unique identifier.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.RecurrenceRule, error)

	// ListRules retrieves all rules, newest first.
	ListRules(ctx context.Context) ([]domain.RecurrenceRule, error)

	// FindDueRules retrieves active rules whose next_run_at is non-null and
	// at or before now, ordered by next_run_at ascending (oldest due first).
	FindDueRules(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error)
}

// RuleWriter defines write operations for recurrence rules
type RuleWriter interface {
	// SaveRule persists a new rule including its scheduling state.
	SaveRule(ctx context.Context, rule domain.RecurrenceRule) error

	// UpdateRule updates a rule's definition and scheduling state.
	UpdateRule(ctx context.Context, rule domain.RecurrenceRule) error

	// DeleteRule removes a rule and its log entries.
	DeleteRule(ctx context.Context, ruleID string) error
}

// RuleExecutionWriter persists the side effects of one due-rule execution
// atomically: it re-reads the rule's schedule under a row lock, verifies the
// rule is still due at `now`, inserts the spawned request with its
// participant set and created-audit record, and advances the rule's
// scheduling state. When the locked re-read shows the rule is no longer due
// (a concurrent run already advanced it) nothing is written and executed is
// false.
type RuleExecutionWriter interface {
	ExecuteDueRule(ctx context.Context, now time.Time, rule domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (executed bool, err error)
}

// RuleLogReader defines read operations for rule execution logs
type RuleLogReader interface {
	// ListRuleLogs retrieves the most recent entries, newest first.
	ListRuleLogs(ctx context.Context, limit int) ([]domain.RuleLogEntry, error)
}

// RuleLogWriter defines write operations for rule execution logs
type RuleLogWriter interface {
	// SaveRuleLog appends one log entry.
	SaveRuleLog(ctx context.Context, entry domain.RuleLogEntry) error
}

// RuleRepositoryFacade combines all rule-related repository interfaces
type RuleRepositoryFacade interface {
	RuleReader
	RuleWriter
	RuleExecutionWriter
	RuleLogReader
	RuleLogWriter
}
