package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paydesk/paydesk_backend/internal/apperrors"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	"github.com/paydesk/paydesk_backend/internal/models"
)

type PgxRuleRepository struct {
	BaseRepository
}

func newPgxRuleRepository(db *pgxpool.Pool) portsrepo.RuleRepositoryFacade {
	return &PgxRuleRepository{BaseRepository{Pool: db}}
}

var _ portsrepo.RuleRepositoryFacade = (*PgxRuleRepository)(nil)

func toModelRule(d domain.RecurrenceRule) models.RecurrenceRule {
	return models.RecurrenceRule{
		RuleID:            d.RuleID,
		UserID:            d.UserID,
		Name:              d.Name,
		ExpenseTypeID:     d.ExpenseTypeID,
		ExpenseCategoryID: d.ExpenseCategoryID,
		Requisites:        d.Requisites,
		RequisitesFileURL: d.RequisitesFileURL,
		Amount:            d.Amount,
		ReadyForPayment:   d.ReadyForPayment,
		Frequency:         string(d.Frequency),
		IntervalDays:      d.IntervalDays,
		DaysOfWeek:        d.DaysOfWeek,
		DayOfMonth:        d.DayOfMonth,
		StartDate:         d.StartDate,
		RunAt:             d.RunAt,
		Timezone:          d.Timezone,
		NextRunAt:         d.NextRunAt,
		LastRunAt:         d.LastRunAt,
		IsActive:          d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainRule(m models.RecurrenceRule) domain.RecurrenceRule {
	return domain.RecurrenceRule{
		RuleID:            m.RuleID,
		UserID:            m.UserID,
		Name:              m.Name,
		ExpenseTypeID:     m.ExpenseTypeID,
		ExpenseCategoryID: m.ExpenseCategoryID,
		Requisites:        m.Requisites,
		RequisitesFileURL: m.RequisitesFileURL,
		Amount:            m.Amount,
		ReadyForPayment:   m.ReadyForPayment,
		Frequency:         domain.Frequency(m.Frequency),
		IntervalDays:      m.IntervalDays,
		DaysOfWeek:        m.DaysOfWeek,
		DayOfMonth:        m.DayOfMonth,
		StartDate:         m.StartDate,
		RunAt:             m.RunAt,
		Timezone:          m.Timezone,
		NextRunAt:         m.NextRunAt,
		LastRunAt:         m.LastRunAt,
		IsActive:          m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const ruleColumns = `rule_id, user_id, name, expense_type_id, expense_category_id,
	requisites, requisites_file_url, amount, ready_for_payment,
	frequency, interval_days, days_of_week, day_of_month, start_date, run_at, timezone,
	next_run_at, last_run_at, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanRule(row pgx.Row) (models.RecurrenceRule, error) {
	var m models.RecurrenceRule
	err := row.Scan(
		&m.RuleID,
		&m.UserID,
		&m.Name,
		&m.ExpenseTypeID,
		&m.ExpenseCategoryID,
		&m.Requisites,
		&m.RequisitesFileURL,
		&m.Amount,
		&m.ReadyForPayment,
		&m.Frequency,
		&m.IntervalDays,
		&m.DaysOfWeek,
		&m.DayOfMonth,
		&m.StartDate,
		&m.RunAt,
		&m.Timezone,
		&m.NextRunAt,
		&m.LastRunAt,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxRuleRepository) SaveRule(ctx context.Context, rule domain.RecurrenceRule) error {
	m := toModelRule(rule)
	query := `
		INSERT INTO recurrence_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RuleID, m.UserID, m.Name, m.ExpenseTypeID, m.ExpenseCategoryID,
		m.Requisites, m.RequisitesFileURL, m.Amount, m.ReadyForPayment,
		m.Frequency, m.IntervalDays, m.DaysOfWeek, m.DayOfMonth, m.StartDate, m.RunAt, m.Timezone,
		m.NextRunAt, m.LastRunAt, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

func (r *PgxRuleRepository) UpdateRule(ctx context.Context, rule domain.RecurrenceRule) error {
	m := toModelRule(rule)
	query := `
		UPDATE recurrence_rules
		SET name = $2, expense_type_id = $3, expense_category_id = $4,
		    requisites = $5, requisites_file_url = $6, amount = $7, ready_for_payment = $8,
		    frequency = $9, interval_days = $10, days_of_week = $11, day_of_month = $12,
		    start_date = $13, run_at = $14, timezone = $15,
		    next_run_at = $16, last_run_at = $17, is_active = $18,
		    last_updated_at = $19, last_updated_by = $20
		WHERE rule_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.RuleID, m.Name, m.ExpenseTypeID, m.ExpenseCategoryID,
		m.Requisites, m.RequisitesFileURL, m.Amount, m.ReadyForPayment,
		m.Frequency, m.IntervalDays, m.DaysOfWeek, m.DayOfMonth,
		m.StartDate, m.RunAt, m.Timezone,
		m.NextRunAt, m.LastRunAt, m.IsActive,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule %s: %w", rule.RuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM rule_logs WHERE rule_id = $1;`, ruleID); err != nil {
		return fmt.Errorf("failed to delete rule logs for rule %s: %w", ruleID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM recurrence_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}

func (r *PgxRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.RecurrenceRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM recurrence_rules WHERE rule_id = $1;`
	m, err := scanRule(r.Pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rule by ID %s: %w", ruleID, err)
	}
	d := toDomainRule(m)
	return &d, nil
}

func (r *PgxRuleRepository) ListRules(ctx context.Context) ([]domain.RecurrenceRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM recurrence_rules ORDER BY created_at DESC, rule_id DESC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var out []domain.RecurrenceRule
	for rows.Next() {
		m, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		out = append(out, toDomainRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule rows: %w", err)
	}
	return out, nil
}

func (r *PgxRuleRepository) FindDueRules(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM recurrence_rules
		WHERE is_active AND next_run_at IS NOT NULL AND next_run_at <= $1
		ORDER BY next_run_at ASC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find due rules: %w", err)
	}
	defer rows.Close()

	var out []domain.RecurrenceRule
	for rows.Next() {
		m, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		out = append(out, toDomainRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule rows: %w", err)
	}
	return out, nil
}

// ExecuteDueRule re-checks the rule's schedule under a row lock and, still
// inside the same transaction, inserts the spawned request with its
// participant set and audit record, then advances the schedule. Two
// concurrent passes over the same rule serialize on the lock; the loser sees
// an advanced next_run_at and writes nothing.
func (r *PgxRuleRepository) ExecuteDueRule(ctx context.Context, now time.Time, rule domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	var nextRunAt *time.Time
	var isActive bool
	err = tx.QueryRow(ctx, `
		SELECT next_run_at, is_active
		FROM recurrence_rules
		WHERE rule_id = $1
		FOR UPDATE;
	`, rule.RuleID).Scan(&nextRunAt, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Rule deleted since the due query ran.
			return false, nil
		}
		return false, fmt.Errorf("failed to lock rule %s: %w", rule.RuleID, err)
	}
	if !isActive || nextRunAt == nil || nextRunAt.After(now) {
		return false, nil
	}

	if err := insertPaymentRequestTx(ctx, tx, req); err != nil {
		return false, err
	}
	for _, userID := range req.Participants {
		if err := insertParticipantTx(ctx, tx, req.PaymentRequestID, userID); err != nil {
			return false, err
		}
	}
	if err := insertAuditRecordTx(ctx, tx, audit); err != nil {
		return false, err
	}

	m := toModelRule(rule)
	_, err = tx.Exec(ctx, `
		UPDATE recurrence_rules
		SET next_run_at = $2, last_run_at = $3, is_active = $4, last_updated_at = $5
		WHERE rule_id = $1;
	`, m.RuleID, m.NextRunAt, m.LastRunAt, m.IsActive, m.LastUpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to advance rule %s: %w", rule.RuleID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgxRuleRepository) SaveRuleLog(ctx context.Context, entry domain.RuleLogEntry) error {
	query := `
		INSERT INTO rule_logs (rule_log_entry_id, rule_id, level, message, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.RuleLogEntryID, entry.RuleID, string(entry.Level), entry.Message, entry.Context, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule log entry: %w", err)
	}
	return nil
}

func (r *PgxRuleRepository) ListRuleLogs(ctx context.Context, limit int) ([]domain.RuleLogEntry, error) {
	query := `
		SELECT rule_log_entry_id, rule_id, level, message, context, created_at
		FROM rule_logs
		ORDER BY created_at DESC, rule_log_entry_id DESC
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule logs: %w", err)
	}
	defer rows.Close()

	var out []domain.RuleLogEntry
	for rows.Next() {
		var e domain.RuleLogEntry
		var level string
		if err := rows.Scan(&e.RuleLogEntryID, &e.RuleID, &level, &e.Message, &e.Context, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule log row: %w", err)
		}
		e.Level = domain.RuleLogLevel(level)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule log rows: %w", err)
	}
	return out, nil
}
