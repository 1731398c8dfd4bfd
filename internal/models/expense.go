package models

// ExpenseType represents an expense type row.
type ExpenseType struct {
	ExpenseTypeID string `db:"expense_type_id"`
	Name          string `db:"name"`
	AuditFields
}

// ExpenseCategory represents an expense category row.
type ExpenseCategory struct {
	ExpenseCategoryID string `db:"expense_category_id"`
	ExpenseTypeID     string `db:"expense_type_id"`
	Name              string `db:"name"`
	AuditFields
}

// PaymentAccount represents a payment account row.
type PaymentAccount struct {
	PaymentAccountID string `db:"payment_account_id"`
	Name             string `db:"name"`
	AuditFields
}
