package dto

import (
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequestRequest defines the data needed to create a payment request.
type CreatePaymentRequestRequest struct {
	ExpenseTypeID     string           `json:"expenseTypeID" binding:"required"`
	ExpenseCategoryID string           `json:"expenseCategoryID" binding:"required"`
	Requisites        string           `json:"requisites"`
	Amount            decimal.Decimal  `json:"amount" binding:"required"`
	Commission        *decimal.Decimal `json:"commission"`
	PurchaseReference string           `json:"purchaseReference"`
	ReadyForPayment   bool             `json:"readyForPayment"`
	Paid              bool             `json:"paid"`
	PaidAccountID     *string          `json:"paidAccountID"`
	ReceiptURL        *string          `json:"receiptURL"`

	// Set by the handler from multipart content, not bound from JSON.
	RequisitesFile *FileUpload `json:"-"`
	ReceiptFile    *FileUpload `json:"-"`
}

// UpdatePaymentRequestRequest defines an edit to a payment request.
// Pointer fields distinguish "leave unchanged" from explicit values.
type UpdatePaymentRequestRequest struct {
	ExpenseTypeID     string           `json:"expenseTypeID" binding:"required"`
	ExpenseCategoryID string           `json:"expenseCategoryID" binding:"required"`
	Requisites        *string          `json:"requisites"`
	Amount            decimal.Decimal  `json:"amount" binding:"required"`
	Commission        *decimal.Decimal `json:"commission"`
	PurchaseReference *string          `json:"purchaseReference"`
	ReadyForPayment   *bool            `json:"readyForPayment"`
	Paid              *bool            `json:"paid"`
	PaidAccountID     *string          `json:"paidAccountID"`
	ReceiptURL        *string          `json:"receiptURL"`

	RequisitesFile *FileUpload `json:"-"`
	ReceiptFile    *FileUpload `json:"-"`
}

// ListPaymentRequestsParams defines query parameters for listing requests.
type ListPaymentRequestsParams struct {
	AuthorID          *string    `form:"authorID"`
	ParticipantID     *string    `form:"participantID"`
	ExpenseTypeID     *string    `form:"expenseTypeID"`
	ExpenseCategoryID *string    `form:"expenseCategoryID"`
	PaidAccountID     *string    `form:"paidAccountID"`
	PurchaseReference *string    `form:"purchaseReference"`
	ReadyForPayment   *bool      `form:"readyForPayment"`
	Paid              *bool      `form:"paid"`
	CreatedFrom       *time.Time `form:"createdFrom" time_format:"2006-01-02"`
	CreatedTo         *time.Time `form:"createdTo" time_format:"2006-01-02"`
	PerPage           int        `form:"perPage,default=30"`
	Page              int        `form:"page,default=1"`
}

// AllowedPerPage is the page-size whitelist; anything else falls back to 30.
var AllowedPerPage = []int{10, 20, 30, 50, 100}

// NormalizePerPage clamps the page size to the whitelist.
func (p *ListPaymentRequestsParams) NormalizePerPage() {
	for _, n := range AllowedPerPage {
		if p.PerPage == n {
			return
		}
	}
	p.PerPage = 30
}

// PaymentRequestResponse defines the data returned for a payment request.
type PaymentRequestResponse struct {
	PaymentRequestID         string                 `json:"paymentRequestID"`
	UserID                   string                 `json:"userID"`
	ExpenseTypeID            string                 `json:"expenseTypeID"`
	ExpenseCategoryID        string                 `json:"expenseCategoryID"`
	Requisites               string                 `json:"requisites"`
	Amount                   decimal.Decimal        `json:"amount"`
	Commission               *decimal.Decimal       `json:"commission,omitempty"`
	PurchaseReference        string                 `json:"purchaseReference"`
	RequisitesFileURL        *string                `json:"requisitesFileURL,omitempty"`
	RequisitesFileUploadedAt *time.Time             `json:"requisitesFileUploadedAt,omitempty"`
	ReadyForPayment          bool                   `json:"readyForPayment"`
	Paid                     bool                   `json:"paid"`
	PaidAccountID            *string                `json:"paidAccountID,omitempty"`
	ReceiptURL               *string                `json:"receiptURL,omitempty"`
	Participants             []string               `json:"participants"`
	CreatedAt                time.Time              `json:"createdAt"`
	CreatedBy                string                 `json:"createdBy"`
	LastUpdatedAt            time.Time              `json:"lastUpdatedAt"`
	History                  []AuditRecordResponse  `json:"history,omitempty"`
}

// AuditRecordResponse is one history entry. The acting user's id is resolved
// to a display name by the handler; changed-field values stay raw.
type AuditRecordResponse struct {
	AuditRecordID string                        `json:"auditRecordID"`
	UserID        string                        `json:"userID"`
	UserName      string                        `json:"userName,omitempty"`
	Action        domain.AuditAction            `json:"action"`
	ChangedFields map[string]domain.FieldChange `json:"changedFields"`
	CreatedAt     time.Time                     `json:"createdAt"`
}

// RequestTotalsResponse carries listing aggregates.
type RequestTotalsResponse struct {
	Amount     decimal.Decimal `json:"amount"`
	Commission decimal.Decimal `json:"commission"`
}

// ListPaymentRequestsResponse wraps a page of requests.
type ListPaymentRequestsResponse struct {
	PaymentRequests []PaymentRequestResponse `json:"paymentRequests"`
	Totals          *RequestTotalsResponse   `json:"totals,omitempty"`
	Page            int                      `json:"page"`
	PerPage         int                      `json:"perPage"`
}

// ToPaymentRequestResponse converts a domain.PaymentRequest to its DTO.
func ToPaymentRequestResponse(pr *domain.PaymentRequest) PaymentRequestResponse {
	return PaymentRequestResponse{
		PaymentRequestID:         pr.PaymentRequestID,
		UserID:                   pr.UserID,
		ExpenseTypeID:            pr.ExpenseTypeID,
		ExpenseCategoryID:        pr.ExpenseCategoryID,
		Requisites:               pr.Requisites,
		Amount:                   pr.Amount,
		Commission:               pr.Commission,
		PurchaseReference:        pr.PurchaseReference,
		RequisitesFileURL:        pr.RequisitesFileURL,
		RequisitesFileUploadedAt: pr.RequisitesFileUploadedAt,
		ReadyForPayment:          pr.ReadyForPayment,
		Paid:                     pr.Paid,
		PaidAccountID:            pr.PaidAccountID,
		ReceiptURL:               pr.ReceiptURL,
		Participants:             pr.Participants,
		CreatedAt:                pr.CreatedAt,
		CreatedBy:                pr.CreatedBy,
		LastUpdatedAt:            pr.LastUpdatedAt,
	}
}

// ToAuditRecordResponse converts a domain.AuditRecord to its DTO.
func ToAuditRecordResponse(rec *domain.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		AuditRecordID: rec.AuditRecordID,
		UserID:        rec.UserID,
		Action:        rec.Action,
		ChangedFields: rec.ChangedFields,
		CreatedAt:     rec.CreatedAt,
	}
}
