package dto

import "github.com/paydesk/paydesk_backend/internal/core/domain"

// CreateExpenseTypeRequest defines the data needed to create an expense type.
type CreateExpenseTypeRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateExpenseTypeRequest defines an edit to an expense type.
type UpdateExpenseTypeRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ExpenseTypeResponse defines the data returned for an expense type.
type ExpenseTypeResponse struct {
	ExpenseTypeID string `json:"expenseTypeID"`
	Name          string `json:"name"`
}

// CreateExpenseCategoryRequest defines the data needed to create a category.
type CreateExpenseCategoryRequest struct {
	ExpenseTypeID string `json:"expenseTypeID" binding:"required"`
	Name          string `json:"name" binding:"required,max=255"`
}

// UpdateExpenseCategoryRequest defines an edit to a category.
type UpdateExpenseCategoryRequest struct {
	ExpenseTypeID string `json:"expenseTypeID" binding:"required"`
	Name          string `json:"name" binding:"required,max=255"`
}

// ExpenseCategoryResponse defines the data returned for a category.
type ExpenseCategoryResponse struct {
	ExpenseCategoryID string `json:"expenseCategoryID"`
	ExpenseTypeID     string `json:"expenseTypeID"`
	Name              string `json:"name"`
}

// CreatePaymentAccountRequest defines the data needed to create an account.
type CreatePaymentAccountRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdatePaymentAccountRequest defines an edit to an account.
type UpdatePaymentAccountRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// PaymentAccountResponse defines the data returned for an account.
type PaymentAccountResponse struct {
	PaymentAccountID string `json:"paymentAccountID"`
	Name             string `json:"name"`
}

// ToExpenseTypeResponse converts a domain.ExpenseType to its DTO.
func ToExpenseTypeResponse(et *domain.ExpenseType) ExpenseTypeResponse {
	return ExpenseTypeResponse{ExpenseTypeID: et.ExpenseTypeID, Name: et.Name}
}

// ToExpenseCategoryResponse converts a domain.ExpenseCategory to its DTO.
func ToExpenseCategoryResponse(ec *domain.ExpenseCategory) ExpenseCategoryResponse {
	return ExpenseCategoryResponse{
		ExpenseCategoryID: ec.ExpenseCategoryID,
		ExpenseTypeID:     ec.ExpenseTypeID,
		Name:              ec.Name,
	}
}

// ToPaymentAccountResponse converts a domain.PaymentAccount to its DTO.
func ToPaymentAccountResponse(pa *domain.PaymentAccount) PaymentAccountResponse {
	return PaymentAccountResponse{PaymentAccountID: pa.PaymentAccountID, Name: pa.Name}
}
