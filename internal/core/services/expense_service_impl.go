package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paydesk/paydesk_backend/internal/apperrors"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/core/ports/platform"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
)

// expenseServiceImpl implements the ExpenseSvcFacade interface
type expenseServiceImpl struct {
	BaseService
	typeRepo     portsrepo.ExpenseTypeRepositoryFacade
	categoryRepo portsrepo.ExpenseCategoryRepositoryFacade
	accountRepo  portsrepo.PaymentAccountRepositoryFacade
	userRepo     portsrepo.UserReader
	clock        platform.Clock
}

// NewExpenseServiceImpl creates the expense reference data service.
func NewExpenseServiceImpl(
	typeRepo portsrepo.ExpenseTypeRepositoryFacade,
	categoryRepo portsrepo.ExpenseCategoryRepositoryFacade,
	accountRepo portsrepo.PaymentAccountRepositoryFacade,
	userRepo portsrepo.UserReader,
	clock platform.Clock,
) portssvc.ExpenseSvcFacade {
	return &expenseServiceImpl{
		typeRepo:     typeRepo,
		categoryRepo: categoryRepo,
		accountRepo:  accountRepo,
		userRepo:     userRepo,
		clock:        clock,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseServiceImpl)(nil)

func (s *expenseServiceImpl) CreateExpenseType(ctx context.Context, req dto.CreateExpenseTypeRequest, actorUserID string) (*domain.ExpenseType, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	et := domain.ExpenseType{
		ExpenseTypeID: uuid.NewString(),
		Name:          req.Name,
		AuditFields:   audited(now, actor.UserID),
	}
	if err := s.typeRepo.SaveExpenseType(ctx, et); err != nil {
		s.LogError(ctx, err, "Failed to save expense type", slog.String("name", req.Name))
		return nil, err
	}
	return &et, nil
}

func (s *expenseServiceImpl) ListExpenseTypes(ctx context.Context) ([]domain.ExpenseType, error) {
	return s.typeRepo.ListExpenseTypes(ctx)
}

func (s *expenseServiceImpl) UpdateExpenseType(ctx context.Context, expenseTypeID string, req dto.UpdateExpenseTypeRequest, actorUserID string) (*domain.ExpenseType, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	et, err := s.typeRepo.FindExpenseTypeByID(ctx, expenseTypeID)
	if err != nil {
		return nil, err
	}
	et.Name = req.Name
	et.LastUpdatedAt = s.clock.Now()
	et.LastUpdatedBy = actor.UserID
	if err := s.typeRepo.UpdateExpenseType(ctx, *et); err != nil {
		s.LogError(ctx, err, "Failed to update expense type", slog.String("expense_type_id", expenseTypeID))
		return nil, err
	}
	return et, nil
}

func (s *expenseServiceImpl) DeleteExpenseType(ctx context.Context, expenseTypeID string, actorUserID string) error {
	if _, err := s.requireAdmin(ctx, actorUserID); err != nil {
		return err
	}
	return s.typeRepo.DeleteExpenseType(ctx, expenseTypeID)
}

func (s *expenseServiceImpl) CreateExpenseCategory(ctx context.Context, req dto.CreateExpenseCategoryRequest, actorUserID string) (*domain.ExpenseCategory, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.typeRepo.FindExpenseTypeByID(ctx, req.ExpenseTypeID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	ec := domain.ExpenseCategory{
		ExpenseCategoryID: uuid.NewString(),
		ExpenseTypeID:     req.ExpenseTypeID,
		Name:              req.Name,
		AuditFields:       audited(now, actor.UserID),
	}
	if err := s.categoryRepo.SaveExpenseCategory(ctx, ec); err != nil {
		s.LogError(ctx, err, "Failed to save expense category", slog.String("name", req.Name))
		return nil, err
	}
	return &ec, nil
}

func (s *expenseServiceImpl) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	return s.categoryRepo.ListExpenseCategories(ctx)
}

func (s *expenseServiceImpl) UpdateExpenseCategory(ctx context.Context, expenseCategoryID string, req dto.UpdateExpenseCategoryRequest, actorUserID string) (*domain.ExpenseCategory, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	ec, err := s.categoryRepo.FindExpenseCategoryByID(ctx, expenseCategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.typeRepo.FindExpenseTypeByID(ctx, req.ExpenseTypeID); err != nil {
		return nil, err
	}
	ec.ExpenseTypeID = req.ExpenseTypeID
	ec.Name = req.Name
	ec.LastUpdatedAt = s.clock.Now()
	ec.LastUpdatedBy = actor.UserID
	if err := s.categoryRepo.UpdateExpenseCategory(ctx, *ec); err != nil {
		s.LogError(ctx, err, "Failed to update expense category", slog.String("expense_category_id", expenseCategoryID))
		return nil, err
	}
	return ec, nil
}

func (s *expenseServiceImpl) DeleteExpenseCategory(ctx context.Context, expenseCategoryID string, actorUserID string) error {
	if _, err := s.requireAdmin(ctx, actorUserID); err != nil {
		return err
	}
	return s.categoryRepo.DeleteExpenseCategory(ctx, expenseCategoryID)
}

func (s *expenseServiceImpl) CreatePaymentAccount(ctx context.Context, req dto.CreatePaymentAccountRequest, actorUserID string) (*domain.PaymentAccount, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	pa := domain.PaymentAccount{
		PaymentAccountID: uuid.NewString(),
		Name:             req.Name,
		AuditFields:      audited(now, actor.UserID),
	}
	if err := s.accountRepo.SavePaymentAccount(ctx, pa); err != nil {
		s.LogError(ctx, err, "Failed to save payment account", slog.String("name", req.Name))
		return nil, err
	}
	return &pa, nil
}

func (s *expenseServiceImpl) ListPaymentAccounts(ctx context.Context) ([]domain.PaymentAccount, error) {
	return s.accountRepo.ListPaymentAccounts(ctx)
}

func (s *expenseServiceImpl) UpdatePaymentAccount(ctx context.Context, paymentAccountID string, req dto.UpdatePaymentAccountRequest, actorUserID string) (*domain.PaymentAccount, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	pa, err := s.accountRepo.FindPaymentAccountByID(ctx, paymentAccountID)
	if err != nil {
		return nil, err
	}
	pa.Name = req.Name
	pa.LastUpdatedAt = s.clock.Now()
	pa.LastUpdatedBy = actor.UserID
	if err := s.accountRepo.UpdatePaymentAccount(ctx, *pa); err != nil {
		s.LogError(ctx, err, "Failed to update payment account", slog.String("payment_account_id", paymentAccountID))
		return nil, err
	}
	return pa, nil
}

func (s *expenseServiceImpl) DeletePaymentAccount(ctx context.Context, paymentAccountID string, actorUserID string) error {
	if _, err := s.requireAdmin(ctx, actorUserID); err != nil {
		return err
	}
	return s.accountRepo.DeletePaymentAccount(ctx, paymentAccountID)
}

func (s *expenseServiceImpl) requireAdmin(ctx context.Context, actorUserID string) (*domain.User, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor.IsBlocked() || actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

// audited builds the audit fields for a fresh record.
func audited(now time.Time, actorUserID string) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorUserID,
	}
}
