package domain

// ExpenseType is a top-level spending classification.
type ExpenseType struct {
	ExpenseTypeID string `json:"expenseTypeID"`
	Name          string `json:"name"`
	AuditFields
}

// ExpenseCategory is a classification nested under exactly one expense type.
type ExpenseCategory struct {
	ExpenseCategoryID string `json:"expenseCategoryID"`
	ExpenseTypeID     string `json:"expenseTypeID"`
	Name              string `json:"name"`
	AuditFields
}

// PaymentAccount is an account money can be paid out from.
type PaymentAccount struct {
	PaymentAccountID string `json:"paymentAccountID"`
	Name             string `json:"name"`
	AuditFields
}
