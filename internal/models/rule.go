package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceRule represents a recurrence rule row. DaysOfWeek is stored as an
// integer array; StartDate is a DATE column.
type RecurrenceRule struct {
	RuleID            string          `db:"rule_id"`
	UserID            string          `db:"user_id"`
	Name              string          `db:"name"`
	ExpenseTypeID     string          `db:"expense_type_id"`
	ExpenseCategoryID string          `db:"expense_category_id"`
	Requisites        string          `db:"requisites"`
	RequisitesFileURL *string         `db:"requisites_file_url"`
	Amount            decimal.Decimal `db:"amount"`
	ReadyForPayment   bool            `db:"ready_for_payment"`
	Frequency         string          `db:"frequency"`
	IntervalDays      int             `db:"interval_days"`
	DaysOfWeek        []int           `db:"days_of_week"`
	DayOfMonth        int             `db:"day_of_month"`
	StartDate         time.Time       `db:"start_date"`
	RunAt             string          `db:"run_at"`
	Timezone          string          `db:"timezone"`
	NextRunAt         *time.Time      `db:"next_run_at"`
	LastRunAt         *time.Time      `db:"last_run_at"`
	IsActive          bool            `db:"is_active"`
	AuditFields
}

// RuleLogEntry represents a rule execution log row. Context is a JSONB blob.
type RuleLogEntry struct {
	RuleLogEntryID string         `db:"rule_log_entry_id"`
	RuleID         string         `db:"rule_id"`
	Level          string         `db:"level"`
	Message        string         `db:"message"`
	Context        map[string]any `db:"context"`
	CreatedAt      time.Time      `db:"created_at"`
}
