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

type PgxExpenseTypeRepository struct {
	db *pgxpool.Pool
}

func newPgxExpenseTypeRepository(db *pgxpool.Pool) portsrepo.ExpenseTypeRepositoryFacade {
	return &PgxExpenseTypeRepository{db: db}
}

var _ portsrepo.ExpenseTypeRepositoryFacade = (*PgxExpenseTypeRepository)(nil)

func toDomainExpenseType(m models.ExpenseType) domain.ExpenseType {
	return domain.ExpenseType{
		ExpenseTypeID: m.ExpenseTypeID,
		Name:          m.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxExpenseTypeRepository) SaveExpenseType(ctx context.Context, et domain.ExpenseType) error {
	query := `
		INSERT INTO expense_types (expense_type_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query,
		et.ExpenseTypeID, et.Name, et.CreatedAt, et.CreatedBy, et.LastUpdatedAt, et.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save expense type: %w", err)
	}
	return nil
}

func (r *PgxExpenseTypeRepository) FindExpenseTypeByID(ctx context.Context, expenseTypeID string) (*domain.ExpenseType, error) {
	query := `
		SELECT expense_type_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM expense_types
		WHERE expense_type_id = $1;
	`
	var m models.ExpenseType
	err := r.db.QueryRow(ctx, query, expenseTypeID).Scan(
		&m.ExpenseTypeID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense type by ID %s: %w", expenseTypeID, err)
	}
	d := toDomainExpenseType(m)
	return &d, nil
}

func (r *PgxExpenseTypeRepository) ListExpenseTypes(ctx context.Context) ([]domain.ExpenseType, error) {
	query := `
		SELECT expense_type_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM expense_types
		ORDER BY name ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense types: %w", err)
	}
	defer rows.Close()

	var out []domain.ExpenseType
	for rows.Next() {
		var m models.ExpenseType
		if err := rows.Scan(&m.ExpenseTypeID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan expense type row: %w", err)
		}
		out = append(out, toDomainExpenseType(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense type rows: %w", err)
	}
	return out, nil
}

func (r *PgxExpenseTypeRepository) UpdateExpenseType(ctx context.Context, et domain.ExpenseType) error {
	query := `
		UPDATE expense_types
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE expense_type_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, et.ExpenseTypeID, et.Name, et.LastUpdatedAt, et.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update expense type %s: %w", et.ExpenseTypeID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseTypeRepository) DeleteExpenseType(ctx context.Context, expenseTypeID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expense_types WHERE expense_type_id = $1;`, expenseTypeID)
	if err != nil {
		return fmt.Errorf("failed to delete expense type %s: %w", expenseTypeID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
