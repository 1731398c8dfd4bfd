package repositories

import (
	"context"
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListRequestsFilter narrows a payment request listing. Nil/zero fields are
// not applied. AuthorID and ParticipantID act as visibility restrictions for
// base-role callers as well as explicit filters.
type ListRequestsFilter struct {
	AuthorID          *string
	ParticipantID     *string
	ExpenseTypeID     *string
	ExpenseCategoryID *string
	PaidAccountID     *string
	PurchaseReference *string // substring match
	ReadyForPayment   *bool
	Paid              *bool
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	Limit             int
	Offset            int
}

// RequestTotals aggregates amount and commission over a filtered listing.
type RequestTotals struct {
	Amount     decimal.Decimal
	Commission decimal.Decimal
}

// PaymentRequestReader defines read operations for payment request data
type PaymentRequestReader interface {
	// FindRequestByID retrieves a request with its participant set loaded.
	FindRequestByID(ctx context.Context, paymentRequestID string) (*domain.PaymentRequest, error)

	// ListRequests retrieves requests matching the filter, newest first,
	// participants loaded.
	ListRequests(ctx context.Context, filter ListRequestsFilter) ([]domain.PaymentRequest, error)

	// CountRequests counts requests matching the filter, ignoring Limit/Offset.
	CountRequests(ctx context.Context, filter ListRequestsFilter) (int64, error)

	// SumRequests computes amount/commission totals over the filter,
	// ignoring Limit/Offset.
	SumRequests(ctx context.Context, filter ListRequestsFilter) (RequestTotals, error)

	// ListExpiredRequisitesFiles retrieves requests whose requisites file was
	// uploaded at or before the cutoff, oldest id first.
	ListExpiredRequisitesFiles(ctx context.Context, cutoff time.Time) ([]domain.PaymentRequest, error)
}

// PaymentRequestWriter defines write operations for payment request data
type PaymentRequestWriter interface {
	// SaveRequest persists a new request together with its participant set.
	SaveRequest(ctx context.Context, req domain.PaymentRequest) error

	// UpdateRequest updates the mutable fields of a request.
	UpdateRequest(ctx context.Context, req domain.PaymentRequest) error

	// AddParticipant adds a user to the request's participant set; adding an
	// existing participant is a no-op.
	AddParticipant(ctx context.Context, paymentRequestID, userID string) error

	// ClearRequisitesFile nulls out the requisites file reference and its
	// upload timestamp.
	ClearRequisitesFile(ctx context.Context, paymentRequestID string) error
}

// PaymentRequestRepositoryFacade combines all payment-request repository interfaces
type PaymentRequestRepositoryFacade interface {
	PaymentRequestReader
	PaymentRequestWriter
}
