package domain

import "time"

// AuditAction tags the kind of change an audit record captures.
type AuditAction string

const (
	AuditCreated              AuditAction = "created"
	AuditUpdated              AuditAction = "updated"
	AuditStatusChanged        AuditAction = "status_changed"
	AuditRequisitesFilePruned AuditAction = "requisites_file_pruned"
)

// FieldChange is one field-level before/after pair inside an audit record.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditRecord is one immutable, append-only entry in a payment request's
// change history. One record covers one logically grouped change; records
// are never mutated or reordered after creation.
type AuditRecord struct {
	AuditRecordID    string                 `json:"auditRecordID"`
	PaymentRequestID string                 `json:"paymentRequestID"`
	UserID           string                 `json:"userID"` // acting user
	Action           AuditAction            `json:"action"`
	ChangedFields    map[string]FieldChange `json:"changedFields"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// RuleLogLevel is the severity of a rule execution log entry.
type RuleLogLevel string

const (
	RuleLogInfo  RuleLogLevel = "info"
	RuleLogError RuleLogLevel = "error"
)

// RuleLogEntry records one observable event from a rule's execution:
// a spawned request, a file that could not be copied, or a failure that
// left the rule due for retry.
type RuleLogEntry struct {
	RuleLogEntryID string         `json:"ruleLogEntryID"`
	RuleID         string         `json:"ruleID"`
	Level          RuleLogLevel   `json:"level"`
	Message        string         `json:"message"`
	Context        map[string]any `json:"context,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
