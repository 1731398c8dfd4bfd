package services

import (
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// buildChangeSet diffs two versions of a payment request field by field.
// Bookkeeping timestamps (last update, file upload time) never count as
// changes on their own; they only move when some payload field moved.
func buildChangeSet(old, upd *domain.PaymentRequest) map[string]domain.FieldChange {
	changes := map[string]domain.FieldChange{}

	diffString(changes, "expense_type_id", old.ExpenseTypeID, upd.ExpenseTypeID)
	diffString(changes, "expense_category_id", old.ExpenseCategoryID, upd.ExpenseCategoryID)
	diffString(changes, "requisites", old.Requisites, upd.Requisites)
	diffString(changes, "purchase_reference", old.PurchaseReference, upd.PurchaseReference)
	diffDecimal(changes, "amount", old.Amount, upd.Amount)
	diffDecimalPtr(changes, "commission", old.Commission, upd.Commission)
	diffBool(changes, "ready_for_payment", old.ReadyForPayment, upd.ReadyForPayment)
	diffBool(changes, "paid", old.Paid, upd.Paid)
	diffStringPtr(changes, "paid_account_id", old.PaidAccountID, upd.PaidAccountID)
	diffStringPtr(changes, "requisites_file_url", old.RequisitesFileURL, upd.RequisitesFileURL)
	diffStringPtr(changes, "receipt_url", old.ReceiptURL, upd.ReceiptURL)

	return changes
}

// createdChangedFields records the initial payload of a freshly created
// request, every set field transitioning from nil.
func createdChangedFields(pr *domain.PaymentRequest) map[string]domain.FieldChange {
	changes := map[string]domain.FieldChange{
		"user_id":             {Old: nil, New: pr.UserID},
		"expense_type_id":     {Old: nil, New: pr.ExpenseTypeID},
		"expense_category_id": {Old: nil, New: pr.ExpenseCategoryID},
		"requisites":          {Old: nil, New: pr.Requisites},
		"amount":              {Old: nil, New: pr.Amount.String()},
		"ready_for_payment":   {Old: nil, New: pr.ReadyForPayment},
		"paid":                {Old: nil, New: pr.Paid},
	}
	if pr.PurchaseReference != "" {
		changes["purchase_reference"] = domain.FieldChange{Old: nil, New: pr.PurchaseReference}
	}
	if pr.Commission != nil {
		changes["commission"] = domain.FieldChange{Old: nil, New: pr.Commission.String()}
	}
	if pr.PaidAccountID != nil {
		changes["paid_account_id"] = domain.FieldChange{Old: nil, New: *pr.PaidAccountID}
	}
	if pr.RequisitesFileURL != nil {
		changes["requisites_file_url"] = domain.FieldChange{Old: nil, New: *pr.RequisitesFileURL}
	}
	if pr.ReceiptURL != nil {
		changes["receipt_url"] = domain.FieldChange{Old: nil, New: *pr.ReceiptURL}
	}
	return changes
}

func diffString(changes map[string]domain.FieldChange, field, old, upd string) {
	if old != upd {
		changes[field] = domain.FieldChange{Old: old, New: upd}
	}
}

func diffBool(changes map[string]domain.FieldChange, field string, old, upd bool) {
	if old != upd {
		changes[field] = domain.FieldChange{Old: old, New: upd}
	}
}

func diffDecimal(changes map[string]domain.FieldChange, field string, old, upd decimal.Decimal) {
	if !old.Equal(upd) {
		changes[field] = domain.FieldChange{Old: old.String(), New: upd.String()}
	}
}

func diffDecimalPtr(changes map[string]domain.FieldChange, field string, old, upd *decimal.Decimal) {
	switch {
	case old == nil && upd == nil:
	case old != nil && upd != nil && old.Equal(*upd):
	default:
		changes[field] = domain.FieldChange{Old: decimalValue(old), New: decimalValue(upd)}
	}
}

func diffStringPtr(changes map[string]domain.FieldChange, field string, old, upd *string) {
	switch {
	case old == nil && upd == nil:
	case old != nil && upd != nil && *old == *upd:
	default:
		changes[field] = domain.FieldChange{Old: stringValue(old), New: stringValue(upd)}
	}
}

func decimalValue(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func stringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
