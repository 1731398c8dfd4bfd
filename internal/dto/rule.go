package dto

import (
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRuleRequest defines the data needed to create a recurrence rule.
type CreateRuleRequest struct {
	Name              string           `json:"name" binding:"required,max=255"`
	ExpenseTypeID     string           `json:"expenseTypeID" binding:"required"`
	ExpenseCategoryID string           `json:"expenseCategoryID" binding:"required"`
	Requisites        string           `json:"requisites"`
	Amount            decimal.Decimal  `json:"amount" binding:"required"`
	ReadyForPayment   bool             `json:"readyForPayment"`
	Frequency         domain.Frequency `json:"frequency" binding:"required,oneof=once daily weekly monthly every_n_days"`
	IntervalDays      *int             `json:"intervalDays" binding:"omitempty,min=1"`
	DaysOfWeek        []int            `json:"daysOfWeek" binding:"omitempty,dive,min=1,max=7"`
	DayOfMonth        *int             `json:"dayOfMonth" binding:"omitempty,min=1,max=31"`
	StartDate         string           `json:"startDate" binding:"required"` // YYYY-MM-DD
	RunAt             string           `json:"runAt" binding:"required"`     // HH:MM
	Timezone          string           `json:"timezone" binding:"omitempty,max=64"`
	IsActive          *bool            `json:"isActive"`

	RequisitesFile *FileUpload `json:"-"`
}

// UpdateRuleRequest defines an edit to a recurrence rule. The definition is
// resubmitted whole; the schedule is recomputed on save.
type UpdateRuleRequest struct {
	Name              string           `json:"name" binding:"required,max=255"`
	ExpenseTypeID     string           `json:"expenseTypeID" binding:"required"`
	ExpenseCategoryID string           `json:"expenseCategoryID" binding:"required"`
	Requisites        string           `json:"requisites"`
	Amount            decimal.Decimal  `json:"amount" binding:"required"`
	ReadyForPayment   bool             `json:"readyForPayment"`
	Frequency         domain.Frequency `json:"frequency" binding:"required,oneof=once daily weekly monthly every_n_days"`
	IntervalDays      *int             `json:"intervalDays" binding:"omitempty,min=1"`
	DaysOfWeek        []int            `json:"daysOfWeek" binding:"omitempty,dive,min=1,max=7"`
	DayOfMonth        *int             `json:"dayOfMonth" binding:"omitempty,min=1,max=31"`
	StartDate         string           `json:"startDate" binding:"required"`
	RunAt             string           `json:"runAt" binding:"required"`
	Timezone          string           `json:"timezone" binding:"omitempty,max=64"`
	IsActive          *bool            `json:"isActive"`

	RequisitesFile *FileUpload `json:"-"`
}

// RuleResponse defines the data returned for a recurrence rule.
type RuleResponse struct {
	RuleID            string           `json:"ruleID"`
	UserID            string           `json:"userID"`
	Name              string           `json:"name"`
	ExpenseTypeID     string           `json:"expenseTypeID"`
	ExpenseCategoryID string           `json:"expenseCategoryID"`
	Requisites        string           `json:"requisites"`
	RequisitesFileURL *string          `json:"requisitesFileURL,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	ReadyForPayment   bool             `json:"readyForPayment"`
	Frequency         domain.Frequency `json:"frequency"`
	IntervalDays      int              `json:"intervalDays,omitempty"`
	DaysOfWeek        []int            `json:"daysOfWeek,omitempty"`
	DayOfMonth        int              `json:"dayOfMonth,omitempty"`
	StartDate         string           `json:"startDate"`
	RunAt             string           `json:"runAt"`
	Timezone          string           `json:"timezone"`
	NextRunAt         *time.Time       `json:"nextRunAt,omitempty"`
	LastRunAt         *time.Time       `json:"lastRunAt,omitempty"`
	IsActive          bool             `json:"isActive"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// RuleLogResponse is one rule execution log entry.
type RuleLogResponse struct {
	RuleLogEntryID string              `json:"ruleLogEntryID"`
	RuleID         string              `json:"ruleID"`
	Level          domain.RuleLogLevel `json:"level"`
	Message        string              `json:"message"`
	Context        map[string]any      `json:"context,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// ToRuleResponse converts a domain.RecurrenceRule to its DTO.
func ToRuleResponse(r *domain.RecurrenceRule) RuleResponse {
	return RuleResponse{
		RuleID:            r.RuleID,
		UserID:            r.UserID,
		Name:              r.Name,
		ExpenseTypeID:     r.ExpenseTypeID,
		ExpenseCategoryID: r.ExpenseCategoryID,
		Requisites:        r.Requisites,
		RequisitesFileURL: r.RequisitesFileURL,
		Amount:            r.Amount,
		ReadyForPayment:   r.ReadyForPayment,
		Frequency:         r.Frequency,
		IntervalDays:      r.IntervalDays,
		DaysOfWeek:        r.DaysOfWeek,
		DayOfMonth:        r.DayOfMonth,
		StartDate:         r.StartDate.Format("2006-01-02"),
		RunAt:             r.RunAt,
		Timezone:          r.Timezone,
		NextRunAt:         r.NextRunAt,
		LastRunAt:         r.LastRunAt,
		IsActive:          r.IsActive,
		CreatedAt:         r.CreatedAt,
	}
}

// ToRuleLogResponse converts a domain.RuleLogEntry to its DTO.
func ToRuleLogResponse(e *domain.RuleLogEntry) RuleLogResponse {
	return RuleLogResponse{
		RuleLogEntryID: e.RuleLogEntryID,
		RuleID:         e.RuleID,
		Level:          e.Level,
		Message:        e.Message,
		Context:        e.Context,
		CreatedAt:      e.CreatedAt,
	}
}
