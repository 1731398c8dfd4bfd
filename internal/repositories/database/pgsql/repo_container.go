package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:            newPgxUserRepository(dbPool),
		ExpenseTypeRepo:     newPgxExpenseTypeRepository(dbPool),
		ExpenseCategoryRepo: newPgxExpenseCategoryRepository(dbPool),
		PaymentAccountRepo:  newPgxPaymentAccountRepository(dbPool),
		RequestRepo:         newPgxPaymentRequestRepository(dbPool),
		RuleRepo:            newPgxRuleRepository(dbPool),
		AuditRepo:           newPgxAuditRepository(dbPool),
	}
}
