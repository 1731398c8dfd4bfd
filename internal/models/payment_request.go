package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest represents a payment request row. Participants live in the
// payment_request_participants join table and are loaded separately.
type PaymentRequest struct {
	PaymentRequestID         string           `db:"payment_request_id"`
	UserID                   string           `db:"user_id"`
	ExpenseTypeID            string           `db:"expense_type_id"`
	ExpenseCategoryID        string           `db:"expense_category_id"`
	Requisites               string           `db:"requisites"`
	RequisitesFileURL        *string          `db:"requisites_file_url"`
	RequisitesFileUploadedAt *time.Time       `db:"requisites_file_uploaded_at"`
	Amount                   decimal.Decimal  `db:"amount"`
	Commission               *decimal.Decimal `db:"commission"`
	PurchaseReference        string           `db:"purchase_reference"`
	ReadyForPayment          bool             `db:"ready_for_payment"`
	Paid                     bool             `db:"paid"`
	PaidAccountID            *string          `db:"paid_account_id"`
	ReceiptURL               *string          `db:"receipt_url"`
	AuditFields
}
