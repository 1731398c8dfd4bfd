package repositories

import (
	"context"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
)

// AuditReader defines read operations for payment request history
type AuditReader interface {
	// ListAuditsByRequestID retrieves a request's history, newest first.
	ListAuditsByRequestID(ctx context.Context, paymentRequestID string) ([]domain.AuditRecord, error)

	// ListAuditsByRequestIDs retrieves history for multiple requests,
	// grouped by request id, newest first within each group.
	ListAuditsByRequestIDs(ctx context.Context, paymentRequestIDs []string) (map[string][]domain.AuditRecord, error)
}

// AuditWriter defines write operations for payment request history.
// Records are append-only; there is no update or delete.
type AuditWriter interface {
	SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error
}

// AuditRepositoryFacade combines the audit repository interfaces
type AuditRepositoryFacade interface {
	AuditReader
	AuditWriter
}
