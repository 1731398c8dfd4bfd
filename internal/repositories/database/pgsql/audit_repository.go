package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	db *pgxpool.Pool
}

func newPgxAuditRepository(db *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{db: db}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

const auditColumns = `audit_record_id, payment_request_id, user_id, action, changed_fields, created_at`

func scanAuditRecord(row pgx.Row) (domain.AuditRecord, error) {
	var rec domain.AuditRecord
	var action string
	err := row.Scan(
		&rec.AuditRecordID,
		&rec.PaymentRequestID,
		&rec.UserID,
		&action,
		&rec.ChangedFields,
		&rec.CreatedAt,
	)
	rec.Action = domain.AuditAction(action)
	return rec, err
}

func (r *PgxAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO payment_request_histories (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query,
		record.AuditRecordID,
		record.PaymentRequestID,
		record.UserID,
		string(record.Action),
		record.ChangedFields,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

func insertAuditRecordTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	query := `
		INSERT INTO payment_request_histories (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := tx.Exec(ctx, query,
		record.AuditRecordID,
		record.PaymentRequestID,
		record.UserID,
		string(record.Action),
		record.ChangedFields,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

func (r *PgxAuditRepository) ListAuditsByRequestID(ctx context.Context, paymentRequestID string) ([]domain.AuditRecord, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM payment_request_histories
		WHERE payment_request_id = $1
		ORDER BY created_at DESC, audit_record_id DESC;
	`
	rows, err := r.db.Query(ctx, query, paymentRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit record rows: %w", err)
	}
	return out, nil
}

func (r *PgxAuditRepository) ListAuditsByRequestIDs(ctx context.Context, paymentRequestIDs []string) (map[string][]domain.AuditRecord, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM payment_request_histories
		WHERE payment_request_id = ANY($1)
		ORDER BY created_at DESC, audit_record_id DESC;
	`
	rows, err := r.db.Query(ctx, query, paymentRequestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.AuditRecord, len(paymentRequestIDs))
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record row: %w", err)
		}
		out[rec.PaymentRequestID] = append(out[rec.PaymentRequestID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit record rows: %w", err)
	}
	return out, nil
}
