package services

import (
	"context"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/dto"
)

// ExpenseSvcFacade covers expense type, expense category and payment account
// reference data. Writes are admin-gated; reads are open to all roles.
type ExpenseSvcFacade interface {
	CreateExpenseType(ctx context.Context, req dto.CreateExpenseTypeRequest, actorUserID string) (*domain.ExpenseType, error)
	ListExpenseTypes(ctx context.Context) ([]domain.ExpenseType, error)
	UpdateExpenseType(ctx context.Context, expenseTypeID string, req dto.UpdateExpenseTypeRequest, actorUserID string) (*domain.ExpenseType, error)
	DeleteExpenseType(ctx context.Context, expenseTypeID string, actorUserID string) error

	CreateExpenseCategory(ctx context.Context, req dto.CreateExpenseCategoryRequest, actorUserID string) (*domain.ExpenseCategory, error)
	ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	UpdateExpenseCategory(ctx context.Context, expenseCategoryID string, req dto.UpdateExpenseCategoryRequest, actorUserID string) (*domain.ExpenseCategory, error)
	DeleteExpenseCategory(ctx context.Context, expenseCategoryID string, actorUserID string) error

	CreatePaymentAccount(ctx context.Context, req dto.CreatePaymentAccountRequest, actorUserID string) (*domain.PaymentAccount, error)
	ListPaymentAccounts(ctx context.Context) ([]domain.PaymentAccount, error)
	UpdatePaymentAccount(ctx context.Context, paymentAccountID string, req dto.UpdatePaymentAccountRequest, actorUserID string) (*domain.PaymentAccount, error)
	DeletePaymentAccount(ctx context.Context, paymentAccountID string, actorUserID string) error
}
