package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is a request for a payment to be approved and executed.
// Workflow states are encoded by the two flags: draft (false,false),
// ready (true,false) and paid (true,true). The paid flag is never true
// while ready_for_payment is false; NormalizeStatus guarantees that before
// any write.
type PaymentRequest struct {
	PaymentRequestID  string          `json:"paymentRequestID"`
	UserID            string          `json:"userID"` // author
	ExpenseTypeID     string          `json:"expenseTypeID"`
	ExpenseCategoryID string          `json:"expenseCategoryID"`
	Requisites        string          `json:"requisites"`
	Amount            decimal.Decimal `json:"amount"`

	// Commission is optional and only settable by accountant/admin roles.
	Commission *decimal.Decimal `json:"commission,omitempty"`

	PurchaseReference string `json:"purchaseReference"`

	RequisitesFileURL        *string    `json:"requisitesFileURL,omitempty"`
	RequisitesFileUploadedAt *time.Time `json:"requisitesFileUploadedAt,omitempty"`

	ReadyForPayment bool    `json:"readyForPayment"`
	Paid            bool    `json:"paid"`
	PaidAccountID   *string `json:"paidAccountID,omitempty"`
	ReceiptURL      *string `json:"receiptURL,omitempty"`

	// Participants holds the IDs of every user with read access: the author
	// plus everyone who ever wrote to the request.
	Participants []string `json:"participants,omitempty"`

	AuditFields
}

// NormalizeStatus applies the workflow invariant to an incoming flag pair:
// a request that is not ready cannot be paid, and a paid request is
// necessarily ready. Applied before authorization on every write.
func NormalizeStatus(ready, paid bool) (bool, bool) {
	if !ready {
		paid = false
	}
	if paid {
		ready = true
	}
	return ready, paid
}

// HasParticipant reports whether the given user is in the participant set.
func (pr *PaymentRequest) HasParticipant(userID string) bool {
	for _, id := range pr.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
