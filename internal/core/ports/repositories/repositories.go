package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo            UserRepositoryFacade
	ExpenseTypeRepo     ExpenseTypeRepositoryFacade
	ExpenseCategoryRepo ExpenseCategoryRepositoryFacade
	PaymentAccountRepo  PaymentAccountRepositoryFacade
	RequestRepo         PaymentRequestRepositoryFacade
	RuleRepo            RuleRepositoryFacade
	AuditRepo           AuditRepositoryFacade
}
