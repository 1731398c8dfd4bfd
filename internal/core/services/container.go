package services

import (
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/ports/platform"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
)

// ContainerDeps carries the non-repository dependencies the services need.
type ContainerDeps struct {
	Files           platform.BlobStore
	Clock           platform.Clock
	JWTSecret       string
	JWTExpiry       time.Duration
	TokenIssuer     string
	RetentionDays   int
	DefaultTimezone string
}

// NewContainer creates the service provider with properly initialized
// dependencies.
func NewContainer(repos *portsrepo.RepositoryProvider, deps ContainerDeps) *portssvc.ServiceProvider {
	clock := deps.Clock
	if clock == nil {
		clock = platform.UTCClock{}
	}

	return &portssvc.ServiceProvider{
		UserSvc: NewUserServiceImpl(repos.UserRepo, clock),
		AuthSvc: NewAuthServiceImpl(repos.UserRepo, deps.JWTSecret, deps.JWTExpiry, deps.TokenIssuer),
		ExpenseSvc: NewExpenseServiceImpl(
			repos.ExpenseTypeRepo,
			repos.ExpenseCategoryRepo,
			repos.PaymentAccountRepo,
			repos.UserRepo,
			clock,
		),
		RequestSvc: NewPaymentRequestServiceImpl(
			repos.RequestRepo,
			repos.AuditRepo,
			repos.UserRepo,
			repos.ExpenseCategoryRepo,
			deps.Files,
			clock,
		),
		RuleSvc: NewRuleServiceImpl(
			repos.RuleRepo,
			repos.UserRepo,
			repos.ExpenseCategoryRepo,
			deps.Files,
			clock,
			deps.DefaultTimezone,
		),
		ExecutorSvc: NewRuleExecutorServiceImpl(repos.RuleRepo, deps.Files),
		RetentionSvc: NewRetentionServiceImpl(
			repos.RequestRepo,
			repos.AuditRepo,
			repos.UserRepo,
			deps.Files,
			deps.RetentionDays,
		),
	}
}
