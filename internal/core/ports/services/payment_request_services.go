package services

import (
	"context"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	"github.com/paydesk/paydesk_backend/internal/dto"
)

// PaymentRequestSvcFacade is the approval-workflow surface for payment
// requests. Every write normalizes the status flags, checks role
// capabilities, and appends audit records for observed diffs.
type PaymentRequestSvcFacade interface {
	// CreateRequest creates a request on behalf of the acting user and writes
	// the created-audit record.
	CreateRequest(ctx context.Context, req dto.CreatePaymentRequestRequest, actorUserID string) (*domain.PaymentRequest, error)

	// UpdateRequest applies an edit under the workflow rules: status
	// normalization, role capability checks, the distinct change-status gate,
	// field diffing and audit. Returns the updated request.
	UpdateRequest(ctx context.Context, paymentRequestID string, req dto.UpdatePaymentRequestRequest, actorUserID string) (*domain.PaymentRequest, error)

	// GetRequestByID retrieves a request the actor is allowed to view.
	GetRequestByID(ctx context.Context, paymentRequestID string, actorUserID string) (*domain.PaymentRequest, error)

	// ListRequests retrieves requests visible to the actor, filtered.
	// Base-role actors only ever see their own requests.
	ListRequests(ctx context.Context, params dto.ListPaymentRequestsParams, actorUserID string) ([]domain.PaymentRequest, error)

	// SumRequests aggregates amount/commission totals over the same filter.
	SumRequests(ctx context.Context, params dto.ListPaymentRequestsParams, actorUserID string) (portsrepo.RequestTotals, error)

	// GetHistory retrieves the audit records of a request, newest first.
	GetHistory(ctx context.Context, paymentRequestID string, actorUserID string) ([]domain.AuditRecord, error)
}
