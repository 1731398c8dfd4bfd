// Package services defines the facades the handler layer programs against.
package services

// ServiceProvider holds all service facades needed by the handlers and the
// scheduler. Populated by the services container at startup.
type ServiceProvider struct {
	UserSvc      UserSvcFacade
	AuthSvc      AuthSvcFacade
	ExpenseSvc   ExpenseSvcFacade
	RequestSvc   PaymentRequestSvcFacade
	RuleSvc      RuleSvcFacade
	ExecutorSvc  RuleExecutorSvcFacade
	RetentionSvc RetentionSvcFacade
}
