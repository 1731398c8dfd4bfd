package models

import "time"

// AuditRecord represents a payment request history row. ChangedFields is a
// JSONB object mapping field name to its old/new pair.
type AuditRecord struct {
	AuditRecordID    string         `db:"audit_record_id"`
	PaymentRequestID string         `db:"payment_request_id"`
	UserID           string         `db:"user_id"`
	Action           string         `db:"action"`
	ChangedFields    map[string]any `db:"changed_fields"`
	CreatedAt        time.Time      `db:"created_at"`
}
