package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paydesk/paydesk_backend/internal/apperrors"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	"github.com/paydesk/paydesk_backend/internal/models"
	"github.com/shopspring/decimal"
)

type PgxPaymentRequestRepository struct {
	BaseRepository
}

func newPgxPaymentRequestRepository(db *pgxpool.Pool) portsrepo.PaymentRequestRepositoryFacade {
	return &PgxPaymentRequestRepository{BaseRepository{Pool: db}}
}

var _ portsrepo.PaymentRequestRepositoryFacade = (*PgxPaymentRequestRepository)(nil)

func toModelPaymentRequest(d domain.PaymentRequest) models.PaymentRequest {
	return models.PaymentRequest{
		PaymentRequestID:         d.PaymentRequestID,
		UserID:                   d.UserID,
		ExpenseTypeID:            d.ExpenseTypeID,
		ExpenseCategoryID:        d.ExpenseCategoryID,
		Requisites:               d.Requisites,
		RequisitesFileURL:        d.RequisitesFileURL,
		RequisitesFileUploadedAt: d.RequisitesFileUploadedAt,
		Amount:                   d.Amount,
		Commission:               d.Commission,
		PurchaseReference:        d.PurchaseReference,
		ReadyForPayment:          d.ReadyForPayment,
		Paid:                     d.Paid,
		PaidAccountID:            d.PaidAccountID,
		ReceiptURL:               d.ReceiptURL,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainPaymentRequest(m models.PaymentRequest) domain.PaymentRequest {
	return domain.PaymentRequest{
		PaymentRequestID:         m.PaymentRequestID,
		UserID:                   m.UserID,
		ExpenseTypeID:            m.ExpenseTypeID,
		ExpenseCategoryID:        m.ExpenseCategoryID,
		Requisites:               m.Requisites,
		RequisitesFileURL:        m.RequisitesFileURL,
		RequisitesFileUploadedAt: m.RequisitesFileUploadedAt,
		Amount:                   m.Amount,
		Commission:               m.Commission,
		PurchaseReference:        m.PurchaseReference,
		ReadyForPayment:          m.ReadyForPayment,
		Paid:                     m.Paid,
		PaidAccountID:            m.PaidAccountID,
		ReceiptURL:               m.ReceiptURL,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const paymentRequestColumns = `payment_request_id, user_id, expense_type_id, expense_category_id,
	requisites, requisites_file_url, requisites_file_uploaded_at, amount, commission,
	purchase_reference, ready_for_payment, paid, paid_account_id, receipt_url,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPaymentRequest(row pgx.Row) (models.PaymentRequest, error) {
	var m models.PaymentRequest
	err := row.Scan(
		&m.PaymentRequestID,
		&m.UserID,
		&m.ExpenseTypeID,
		&m.ExpenseCategoryID,
		&m.Requisites,
		&m.RequisitesFileURL,
		&m.RequisitesFileUploadedAt,
		&m.Amount,
		&m.Commission,
		&m.PurchaseReference,
		&m.ReadyForPayment,
		&m.Paid,
		&m.PaidAccountID,
		&m.ReceiptURL,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// filterClause renders the filter into a WHERE fragment and its arguments.
// Limit/Offset are left to the caller.
func filterClause(filter portsrepo.ListRequestsFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.AuthorID != nil {
		add("pr.user_id = $%d", *filter.AuthorID)
	}
	if filter.ParticipantID != nil {
		add(`EXISTS (
			SELECT 1 FROM payment_request_participants prp
			WHERE prp.payment_request_id = pr.payment_request_id AND prp.user_id = $%d
		)`, *filter.ParticipantID)
	}
	if filter.ExpenseTypeID != nil {
		add("pr.expense_type_id = $%d", *filter.ExpenseTypeID)
	}
	if filter.ExpenseCategoryID != nil {
		add("pr.expense_category_id = $%d", *filter.ExpenseCategoryID)
	}
	if filter.PaidAccountID != nil {
		add("pr.paid_account_id = $%d", *filter.PaidAccountID)
	}
	if filter.PurchaseReference != nil {
		add("pr.purchase_reference ILIKE $%d", "%"+*filter.PurchaseReference+"%")
	}
	if filter.ReadyForPayment != nil {
		add("pr.ready_for_payment = $%d", *filter.ReadyForPayment)
	}
	if filter.Paid != nil {
		add("pr.paid = $%d", *filter.Paid)
	}
	if filter.CreatedFrom != nil {
		add("pr.created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add("pr.created_at <= $%d", *filter.CreatedTo)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PgxPaymentRequestRepository) SaveRequest(ctx context.Context, req domain.PaymentRequest) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertPaymentRequestTx(ctx, tx, req); err != nil {
		return err
	}
	for _, userID := range req.Participants {
		if err := insertParticipantTx(ctx, tx, req.PaymentRequestID, userID); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

func insertPaymentRequestTx(ctx context.Context, tx pgx.Tx, req domain.PaymentRequest) error {
	m := toModelPaymentRequest(req)
	query := `
		INSERT INTO payment_requests (` + paymentRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.PaymentRequestID, m.UserID, m.ExpenseTypeID, m.ExpenseCategoryID,
		m.Requisites, m.RequisitesFileURL, m.RequisitesFileUploadedAt, m.Amount, m.Commission,
		m.PurchaseReference, m.ReadyForPayment, m.Paid, m.PaidAccountID, m.ReceiptURL,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert payment request: %w", err)
	}
	return nil
}

func insertParticipantTx(ctx context.Context, tx pgx.Tx, paymentRequestID, userID string) error {
	query := `
		INSERT INTO payment_request_participants (payment_request_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (payment_request_id, user_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, query, paymentRequestID, userID); err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (r *PgxPaymentRequestRepository) UpdateRequest(ctx context.Context, req domain.PaymentRequest) error {
	m := toModelPaymentRequest(req)
	query := `
		UPDATE payment_requests
		SET expense_type_id = $2, expense_category_id = $3, requisites = $4,
		    requisites_file_url = $5, requisites_file_uploaded_at = $6,
		    amount = $7, commission = $8, purchase_reference = $9,
		    ready_for_payment = $10, paid = $11, paid_account_id = $12, receipt_url = $13,
		    last_updated_at = $14, last_updated_by = $15
		WHERE payment_request_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.PaymentRequestID, m.ExpenseTypeID, m.ExpenseCategoryID, m.Requisites,
		m.RequisitesFileURL, m.RequisitesFileUploadedAt,
		m.Amount, m.Commission, m.PurchaseReference,
		m.ReadyForPayment, m.Paid, m.PaidAccountID, m.ReceiptURL,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment request %s: %w", req.PaymentRequestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxPaymentRequestRepository) AddParticipant(ctx context.Context, paymentRequestID, userID string) error {
	query := `
		INSERT INTO payment_request_participants (payment_request_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (payment_request_id, user_id) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, paymentRequestID, userID); err != nil {
		return fmt.Errorf("failed to add participant to request %s: %w", paymentRequestID, err)
	}
	return nil
}

func (r *PgxPaymentRequestRepository) ClearRequisitesFile(ctx context.Context, paymentRequestID string) error {
	query := `
		UPDATE payment_requests
		SET requisites_file_url = NULL, requisites_file_uploaded_at = NULL
		WHERE payment_request_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, paymentRequestID)
	if err != nil {
		return fmt.Errorf("failed to clear requisites file for request %s: %w", paymentRequestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxPaymentRequestRepository) FindRequestByID(ctx context.Context, paymentRequestID string) (*domain.PaymentRequest, error) {
	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests pr WHERE payment_request_id = $1;`
	m, err := scanPaymentRequest(r.Pool.QueryRow(ctx, query, paymentRequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment request by ID %s: %w", paymentRequestID, err)
	}
	d := toDomainPaymentRequest(m)
	participants, err := r.loadParticipants(ctx, []string{d.PaymentRequestID})
	if err != nil {
		return nil, err
	}
	d.Participants = participants[d.PaymentRequestID]
	return &d, nil
}

func (r *PgxPaymentRequestRepository) ListRequests(ctx context.Context, filter portsrepo.ListRequestsFilter) ([]domain.PaymentRequest, error) {
	where, args := filterClause(filter)
	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests pr` + where +
		` ORDER BY pr.created_at DESC, pr.payment_request_id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentRequest
	var ids []string
	for rows.Next() {
		m, err := scanPaymentRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment request row: %w", err)
		}
		d := toDomainPaymentRequest(m)
		out = append(out, d)
		ids = append(ids, d.PaymentRequestID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment request rows: %w", err)
	}

	if len(ids) > 0 {
		participants, err := r.loadParticipants(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i].Participants = participants[out[i].PaymentRequestID]
		}
	}
	return out, nil
}

func (r *PgxPaymentRequestRepository) CountRequests(ctx context.Context, filter portsrepo.ListRequestsFilter) (int64, error) {
	where, args := filterClause(filter)
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM payment_requests pr`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payment requests: %w", err)
	}
	return count, nil
}

func (r *PgxPaymentRequestRepository) SumRequests(ctx context.Context, filter portsrepo.ListRequestsFilter) (portsrepo.RequestTotals, error) {
	where, args := filterClause(filter)
	query := `
		SELECT COALESCE(SUM(pr.amount), 0), COALESCE(SUM(pr.commission), 0)
		FROM payment_requests pr` + where
	var totals portsrepo.RequestTotals
	var amount, commission decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, args...).Scan(&amount, &commission); err != nil {
		return totals, fmt.Errorf("failed to sum payment requests: %w", err)
	}
	totals.Amount = amount
	totals.Commission = commission
	return totals, nil
}

func (r *PgxPaymentRequestRepository) ListExpiredRequisitesFiles(ctx context.Context, cutoff time.Time) ([]domain.PaymentRequest, error) {
	query := `SELECT ` + paymentRequestColumns + `
		FROM payment_requests pr
		WHERE requisites_file_url IS NOT NULL AND requisites_file_uploaded_at <= $1
		ORDER BY payment_request_id ASC;`
	rows, err := r.Pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired requisites files: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentRequest
	for rows.Next() {
		m, err := scanPaymentRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment request row: %w", err)
		}
		out = append(out, toDomainPaymentRequest(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment request rows: %w", err)
	}
	return out, nil
}

// loadParticipants fetches participant sets for the given request ids.
func (r *PgxPaymentRequestRepository) loadParticipants(ctx context.Context, requestIDs []string) (map[string][]string, error) {
	query := `
		SELECT payment_request_id, user_id
		FROM payment_request_participants
		WHERE payment_request_id = ANY($1)
		ORDER BY payment_request_id, user_id;
	`
	rows, err := r.Pool.Query(ctx, query, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string, len(requestIDs))
	for rows.Next() {
		var requestID, userID string
		if err := rows.Scan(&requestID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		out[requestID] = append(out[requestID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participant rows: %w", err)
	}
	return out, nil
}
