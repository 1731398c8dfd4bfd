package repositories

import (
	"context"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
)

// ExpenseTypeRepositoryFacade covers expense type reference data.
type ExpenseTypeRepositoryFacade interface {
	SaveExpenseType(ctx context.Context, et domain.ExpenseType) error
	FindExpenseTypeByID(ctx context.Context, expenseTypeID string) (*domain.ExpenseType, error)
	ListExpenseTypes(ctx context.Context) ([]domain.ExpenseType, error)
	UpdateExpenseType(ctx context.Context, et domain.ExpenseType) error
	DeleteExpenseType(ctx context.Context, expenseTypeID string) error
}

// ExpenseCategoryRepositoryFacade covers expense category reference data.
// Every category belongs to exactly one expense type.
type ExpenseCategoryRepositoryFacade interface {
	SaveExpenseCategory(ctx context.Context, ec domain.ExpenseCategory) error
	FindExpenseCategoryByID(ctx context.Context, expenseCategoryID string) (*domain.ExpenseCategory, error)
	ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	UpdateExpenseCategory(ctx context.Context, ec domain.ExpenseCategory) error
	DeleteExpenseCategory(ctx context.Context, expenseCategoryID string) error
}

// PaymentAccountRepositoryFacade covers payment account reference data.
type PaymentAccountRepositoryFacade interface {
	SavePaymentAccount(ctx context.Context, pa domain.PaymentAccount) error
	FindPaymentAccountByID(ctx context.Context, paymentAccountID string) (*domain.PaymentAccount, error)
	ListPaymentAccounts(ctx context.Context) ([]domain.PaymentAccount, error)
	UpdatePaymentAccount(ctx context.Context, pa domain.PaymentAccount) error
	DeletePaymentAccount(ctx context.Context, paymentAccountID string) error
}
