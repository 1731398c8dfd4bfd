package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paydesk/paydesk_backend/internal/apperrors"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	"github.com/paydesk/paydesk_backend/internal/models"
)

type PgxExpenseCategoryRepository struct {
	db *pgxpool.Pool
}

func newPgxExpenseCategoryRepository(db *pgxpool.Pool) portsrepo.ExpenseCategoryRepositoryFacade {
	return &PgxExpenseCategoryRepository{db: db}
}

var _ portsrepo.ExpenseCategoryRepositoryFacade = (*PgxExpenseCategoryRepository)(nil)

func toDomainExpenseCategory(m models.ExpenseCategory) domain.ExpenseCategory {
	return domain.ExpenseCategory{
		ExpenseCategoryID: m.ExpenseCategoryID,
		ExpenseTypeID:     m.ExpenseTypeID,
		Name:              m.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxExpenseCategoryRepository) SaveExpenseCategory(ctx context.Context, ec domain.ExpenseCategory) error {
	query := `
		INSERT INTO expense_categories (expense_category_id, expense_type_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		ec.ExpenseCategoryID, ec.ExpenseTypeID, ec.Name,
		ec.CreatedAt, ec.CreatedBy, ec.LastUpdatedAt, ec.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save expense category: %w", err)
	}
	return nil
}

func (r *PgxExpenseCategoryRepository) FindExpenseCategoryByID(ctx context.Context, expenseCategoryID string) (*domain.ExpenseCategory, error) {
	query := `
		SELECT expense_category_id, expense_type_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM expense_categories
		WHERE expense_category_id = $1;
	`
	var m models.ExpenseCategory
	err := r.db.QueryRow(ctx, query, expenseCategoryID).Scan(
		&m.ExpenseCategoryID, &m.ExpenseTypeID, &m.Name,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense category by ID %s: %w", expenseCategoryID, err)
	}
	d := toDomainExpenseCategory(m)
	return &d, nil
}

func (r *PgxExpenseCategoryRepository) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	query := `
		SELECT expense_category_id, expense_type_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM expense_categories
		ORDER BY name ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense categories: %w", err)
	}
	defer rows.Close()

	var out []domain.ExpenseCategory
	for rows.Next() {
		var m models.ExpenseCategory
		if err := rows.Scan(&m.ExpenseCategoryID, &m.ExpenseTypeID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan expense category row: %w", err)
		}
		out = append(out, toDomainExpenseCategory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense category rows: %w", err)
	}
	return out, nil
}

func (r *PgxExpenseCategoryRepository) UpdateExpenseCategory(ctx context.Context, ec domain.ExpenseCategory) error {
	query := `
		UPDATE expense_categories
		SET expense_type_id = $2, name = $3, last_updated_at = $4, last_updated_by = $5
		WHERE expense_category_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, ec.ExpenseCategoryID, ec.ExpenseTypeID, ec.Name, ec.LastUpdatedAt, ec.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update expense category %s: %w", ec.ExpenseCategoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseCategoryRepository) DeleteExpenseCategory(ctx context.Context, expenseCategoryID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expense_categories WHERE expense_category_id = $1;`, expenseCategoryID)
	if err != nil {
		return fmt.Errorf("failed to delete expense category %s: %w", expenseCategoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
