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

type PgxPaymentAccountRepository struct {
	db *pgxpool.Pool
}

func newPgxPaymentAccountRepository(db *pgxpool.Pool) portsrepo.PaymentAccountRepositoryFacade {
	return &PgxPaymentAccountRepository{db: db}
}

var _ portsrepo.PaymentAccountRepositoryFacade = (*PgxPaymentAccountRepository)(nil)

func toDomainPaymentAccount(m models.PaymentAccount) domain.PaymentAccount {
	return domain.PaymentAccount{
		PaymentAccountID: m.PaymentAccountID,
		Name:             m.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxPaymentAccountRepository) SavePaymentAccount(ctx context.Context, pa domain.PaymentAccount) error {
	query := `
		INSERT INTO payment_accounts (payment_account_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query,
		pa.PaymentAccountID, pa.Name, pa.CreatedAt, pa.CreatedBy, pa.LastUpdatedAt, pa.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save payment account: %w", err)
	}
	return nil
}

func (r *PgxPaymentAccountRepository) FindPaymentAccountByID(ctx context.Context, paymentAccountID string) (*domain.PaymentAccount, error) {
	query := `
		SELECT payment_account_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM payment_accounts
		WHERE payment_account_id = $1;
	`
	var m models.PaymentAccount
	err := r.db.QueryRow(ctx, query, paymentAccountID).Scan(
		&m.PaymentAccountID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment account by ID %s: %w", paymentAccountID, err)
	}
	d := toDomainPaymentAccount(m)
	return &d, nil
}

func (r *PgxPaymentAccountRepository) ListPaymentAccounts(ctx context.Context) ([]domain.PaymentAccount, error) {
	query := `
		SELECT payment_account_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM payment_accounts
		ORDER BY name ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentAccount
	for rows.Next() {
		var m models.PaymentAccount
		if err := rows.Scan(&m.PaymentAccountID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan payment account row: %w", err)
		}
		out = append(out, toDomainPaymentAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment account rows: %w", err)
	}
	return out, nil
}

func (r *PgxPaymentAccountRepository) UpdatePaymentAccount(ctx context.Context, pa domain.PaymentAccount) error {
	query := `
		UPDATE payment_accounts
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE payment_account_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, pa.PaymentAccountID, pa.Name, pa.LastUpdatedAt, pa.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update payment account %s: %w", pa.PaymentAccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxPaymentAccountRepository) DeletePaymentAccount(ctx context.Context, paymentAccountID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payment_accounts WHERE payment_account_id = $1;`, paymentAccountID)
	if err != nil {
		return fmt.Errorf("failed to delete payment account %s: %w", paymentAccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
