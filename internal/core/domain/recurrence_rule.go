package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the closed set of recurrence semantics a rule can carry.
type Frequency string

const (
	FrequencyOnce      Frequency = "once"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyEveryNDay Frequency = "every_n_days"
)

// Valid reports whether the frequency is a known variant.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyEveryNDay:
		return true
	}
	return false
}

// DefaultTimezone is applied to rules saved without an explicit zone.
const DefaultTimezone = "Europe/Kyiv"

// DefaultRunAt is applied to rules saved without an explicit time of day.
const DefaultRunAt = "09:00"

// RecurrenceRule is a template that periodically spawns a PaymentRequest.
//
// The definition half (frequency, interval, weekday set, day of month,
// start date, run-at, timezone) is what ComputeNextRunAt computes from; the
// scheduling half (NextRunAt/LastRunAt/IsActive) is owned by the executor
// and the rule-save path, nobody else mutates it.
type RecurrenceRule struct {
	RuleID string `json:"ruleID"`
	UserID string `json:"userID"` // owner
	Name   string `json:"name"`

	// Payload template copied onto every spawned request.
	ExpenseTypeID     string          `json:"expenseTypeID"`
	ExpenseCategoryID string          `json:"expenseCategoryID"`
	Requisites        string          `json:"requisites"`
	RequisitesFileURL *string         `json:"requisitesFileURL,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	ReadyForPayment   bool            `json:"readyForPayment"`

	Frequency    Frequency `json:"frequency"`
	IntervalDays int       `json:"intervalDays"` // every_n_days only, >= 1
	DaysOfWeek   []int     `json:"daysOfWeek"`   // weekly only, ISO 1..7
	DayOfMonth   int       `json:"dayOfMonth"`   // monthly only, 1..31, clamped per month
	StartDate    time.Time `json:"startDate"`    // calendar date, no time component
	RunAt        string    `json:"runAt"`        // local time of day, "HH:MM" or "HH:MM:SS"
	Timezone     string    `json:"timezone"`     // IANA zone name

	NextRunAt *time.Time `json:"nextRunAt,omitempty"` // UTC; nil means no further occurrences
	LastRunAt *time.Time `json:"lastRunAt,omitempty"` // UTC
	IsActive  bool       `json:"isActive"`

	AuditFields
}
