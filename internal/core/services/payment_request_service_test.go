package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/paydesk/paydesk_backend/internal/apperrors"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/core/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentRequestServiceTestSuite struct {
	suite.Suite
	mockRequestRepo  *MockPaymentRequestRepository
	mockAuditRepo    *MockAuditRepository
	mockUserRepo     *MockUserRepository
	mockCategoryRepo *MockExpenseCategoryRepository
	files            *fakeBlobStore
	now              time.Time
	service          portssvc.PaymentRequestSvcFacade

	users       map[string]*domain.User
	savedAudits []domain.AuditRecord
}

func (s *PaymentRequestServiceTestSuite) SetupTest() {
	s.mockRequestRepo = new(MockPaymentRequestRepository)
	s.mockAuditRepo = new(MockAuditRepository)
	s.mockUserRepo = new(MockUserRepository)
	s.mockCategoryRepo = new(MockExpenseCategoryRepository)
	s.files = newFakeBlobStore()
	s.now = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	s.savedAudits = nil

	s.users = map[string]*domain.User{
		"user-1":       {UserID: "user-1", Name: "Base User", Role: domain.RoleUser},
		"accountant-1": {UserID: "accountant-1", Name: "Accountant", Role: domain.RoleAccountant},
		"admin-1":      {UserID: "admin-1", Name: "Admin", Role: domain.RoleAdmin},
	}
	s.mockUserRepo.FindUserByIDFn = func(ctx context.Context, userID string) (*domain.User, error) {
		if u, ok := s.users[userID]; ok {
			return u, nil
		}
		return nil, apperrors.ErrNotFound
	}
	s.mockCategoryRepo.FindExpenseCategoryByIDFn = func(ctx context.Context, id string) (*domain.ExpenseCategory, error) {
		if id == "ec-1" {
			return &domain.ExpenseCategory{ExpenseCategoryID: "ec-1", ExpenseTypeID: "et-1"}, nil
		}
		return nil, apperrors.ErrNotFound
	}
	s.mockAuditRepo.SaveAuditRecordFn = func(ctx context.Context, record domain.AuditRecord) error {
		s.savedAudits = append(s.savedAudits, record)
		return nil
	}

	s.service = services.NewPaymentRequestServiceImpl(
		s.mockRequestRepo, s.mockAuditRepo, s.mockUserRepo, s.mockCategoryRepo,
		s.files, fixedClock{now: s.now})
}

func validCreateReq() dto.CreatePaymentRequestRequest {
	return dto.CreatePaymentRequestRequest{
		ExpenseTypeID:     "et-1",
		ExpenseCategoryID: "ec-1",
		Requisites:        "IBAN UA12 3456",
		Amount:            decimal.NewFromInt(250),
	}
}

// --- CreateRequest ---

func (s *PaymentRequestServiceTestSuite) TestCreateRequest_BaseUserForcedToDraft() {
	ctx := context.Background()
	req := validCreateReq()
	req.ReadyForPayment = true
	req.Paid = true
	commission := decimal.NewFromInt(5)
	req.Commission = &commission

	var saved domain.PaymentRequest
	s.mockRequestRepo.SaveRequestFn = func(ctx context.Context, pr domain.PaymentRequest) error {
		saved = pr
		return nil
	}

	created, err := s.service.CreateRequest(ctx, req, "user-1")

	s.Require().NoError(err)
	s.False(created.ReadyForPayment)
	s.False(created.Paid)
	s.Nil(created.Commission)
	s.Equal([]string{"user-1"}, created.Participants)
	s.Equal(saved.PaymentRequestID, created.PaymentRequestID)

	s.Require().Len(s.savedAudits, 1)
	s.Equal(domain.AuditCreated, s.savedAudits[0].Action)
	s.Equal("user-1", s.savedAudits[0].UserID)
}

func (s *PaymentRequestServiceTestSuite) TestCreateRequest_AccountantKeepsFlagsAndCommission() {
	ctx := context.Background()
	req := validCreateReq()
	req.ReadyForPayment = true
	commission := decimal.NewFromInt(5)
	req.Commission = &commission

	s.mockRequestRepo.SaveRequestFn = func(ctx context.Context, pr domain.PaymentRequest) error { return nil }

	created, err := s.service.CreateRequest(ctx, req, "accountant-1")

	s.Require().NoError(err)
	s.True(created.ReadyForPayment)
	s.Require().NotNil(created.Commission)
	s.True(created.Commission.Equal(commission))
}

func (s *PaymentRequestServiceTestSuite) TestCreateRequest_RejectsNonPositiveAmount() {
	req := validCreateReq()
	req.Amount = decimal.Zero

	_, err := s.service.CreateRequest(context.Background(), req, "user-1")
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentRequestServiceTestSuite) TestCreateRequest_RejectsCategoryTypeMismatch() {
	req := validCreateReq()
	req.ExpenseTypeID = "et-other"

	_, err := s.service.CreateRequest(context.Background(), req, "user-1")
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentRequestServiceTestSuite) TestCreateRequest_BlockedActorForbidden() {
	blockedAt := s.now.AddDate(0, 0, -1)
	s.users["user-1"].BlockedAt = &blockedAt

	_, err := s.service.CreateRequest(context.Background(), validCreateReq(), "user-1")
	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

// --- UpdateRequest ---

func (s *PaymentRequestServiceTestSuite) existingDraft() *domain.PaymentRequest {
	return &domain.PaymentRequest{
		PaymentRequestID:  "pr-1",
		UserID:            "user-1",
		ExpenseTypeID:     "et-1",
		ExpenseCategoryID: "ec-1",
		Requisites:        "IBAN UA12 3456",
		Amount:            decimal.NewFromInt(250),
		Participants:      []string{"user-1"},
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now.AddDate(0, 0, -2),
			CreatedBy:     "user-1",
			LastUpdatedAt: s.now.AddDate(0, 0, -2),
			LastUpdatedBy: "user-1",
		},
	}
}

func updateReqFrom(pr *domain.PaymentRequest) dto.UpdatePaymentRequestRequest {
	return dto.UpdatePaymentRequestRequest{
		ExpenseTypeID:     pr.ExpenseTypeID,
		ExpenseCategoryID: pr.ExpenseCategoryID,
		Amount:            pr.Amount,
	}
}

func (s *PaymentRequestServiceTestSuite) TestUpdateRequest_ParticipantEditsDraft() {
	ctx := context.Background()
	current := s.existingDraft()
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}
	var updated domain.PaymentRequest
	s.mockRequestRepo.UpdateRequestFn = func(ctx context.Context, pr domain.PaymentRequest) error {
		updated = pr
		return nil
	}
	s.mockRequestRepo.AddParticipantFn = func(ctx context.Context, id, userID string) error { return nil }

	req := updateReqFrom(current)
	newRequisites := "IBAN UA99 9999"
	req.Requisites = &newRequisites
	req.Amount = decimal.NewFromInt(300)

	got, err := s.service.UpdateRequest(ctx, "pr-1", req, "user-1")

	s.Require().NoError(err)
	s.Equal(newRequisites, got.Requisites)
	s.True(got.Amount.Equal(decimal.NewFromInt(300)))
	s.Equal("user-1", updated.LastUpdatedBy)

	s.Require().Len(s.savedAudits, 1)
	rec := s.savedAudits[0]
	s.Equal(domain.AuditUpdated, rec.Action)
	s.Len(rec.ChangedFields, 2)
	s.Equal("IBAN UA12 3456", rec.ChangedFields["requisites"].Old)
	s.Equal(newRequisites, rec.ChangedFields["requisites"].New)
	s.Equal("250", rec.ChangedFields["amount"].Old)
	s.Equal("300", rec.ChangedFields["amount"].New)
}

func (s *PaymentRequestServiceTestSuite) TestUpdateRequest_NonParticipantForbidden() {
	current := s.existingDraft()
	s.users["user-2"] = &domain.User{UserID: "user-2", Role: domain.RoleUser}
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}

	_, err := s.service.UpdateRequest(context.Background(), "pr-1", updateReqFrom(current), "user-2")
	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (s *PaymentRequestServiceTestSuite) TestUpdateRequest_BaseUserCannotChangeStatus() {
	current := s.existingDraft()
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}

	req := updateReqFrom(current)
	ready := true
	req.ReadyForPayment = &ready

	_, err := s.service.UpdateRequest(context.Background(), "pr-1", req, "user-1")
	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (s *PaymentRequestServiceTestSuite) TestUpdateRequest_AccountantStatusChangeGroupsAudit() {
	ctx := context.Background()
	current := s.existingDraft()
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}
	s.mockRequestRepo.UpdateRequestFn = func(ctx context.Context, pr domain.PaymentRequest) error { return nil }
	var addedParticipant string
	s.mockRequestRepo.AddParticipantFn = func(ctx context.Context, id, userID string) error {
		addedParticipant = userID
		return nil
	}

	req := updateReqFrom(current)
	ready := true
	req.ReadyForPayment = &ready
	commission := decimal.NewFromInt(12)
	req.Commission = &commission

	got, err := s.service.UpdateRequest(ctx, "pr-1", req, "accountant-1")

	s.Require().NoError(err)
	s.True(got.ReadyForPayment)
	s.Equal("accountant-1", addedParticipant)
	s.Contains(got.Participants, "accountant-1")

	// One grouped record for the whole edit, tagged as a status change.
	s.Require().Len(s.savedAudits, 1)
	rec := s.savedAudits[0]
	s.Equal(domain.AuditStatusChanged, rec.Action)
	s.Contains(rec.ChangedFields, "ready_for_payment")
	s.Contains(rec.ChangedFields, "commission")
	s.Equal(false, rec.ChangedFields["ready_for_payment"].Old)
	s.Equal(true, rec.ChangedFields["ready_for_payment"].New)
}

func (s *PaymentRequestServiceTestSuite) TestUpdateRequest_PaidWithoutReadyNormalizesToNoChange() {
	current := s.existingDraft()
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}

	// paid=true alone on a draft normalizes back to draft, so no status
	// transition happens and no write is issued.
	req := updateReqFrom(current)
	paid := true
	req.Paid = &paid

	got, err := s.service.UpdateRequest(context.Background(), "pr-1", req, "accountant-1")

	s.Require().NoError(err)
	s.False(got.Paid)
	s.Empty(s.savedAudits)
}

func (s *PaymentRequestServiceTestSuite) TestUpdateRequest_NoChangesNoWrite() {
	current := s.existingDraft()
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}

	got, err := s.service.UpdateRequest(context.Background(), "pr-1", updateReqFrom(current), "user-1")

	s.Require().NoError(err)
	s.Equal(current.PaymentRequestID, got.PaymentRequestID)
	s.True(got.LastUpdatedAt.Equal(current.LastUpdatedAt))
	s.Empty(s.savedAudits)
}

func (s *PaymentRequestServiceTestSuite) TestUpdateRequest_PaidRequestFrozenForAccountant() {
	current := s.existingDraft()
	current.ReadyForPayment = true
	current.Paid = true
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}

	_, err := s.service.UpdateRequest(context.Background(), "pr-1", updateReqFrom(current), "accountant-1")
	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

// --- Reads ---

func (s *PaymentRequestServiceTestSuite) TestGetRequestByID_VisibilityGate() {
	current := s.existingDraft()
	s.users["user-2"] = &domain.User{UserID: "user-2", Role: domain.RoleUser}
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}

	_, err := s.service.GetRequestByID(context.Background(), "pr-1", "user-2")
	s.Require().ErrorIs(err, apperrors.ErrForbidden)

	got, err := s.service.GetRequestByID(context.Background(), "pr-1", "accountant-1")
	s.Require().NoError(err)
	s.Equal("pr-1", got.PaymentRequestID)
}

func (s *PaymentRequestServiceTestSuite) TestListRequests_BaseUserScopedToOwn() {
	var gotFilter *string
	s.mockRequestRepo.ListRequestsFn = func(ctx context.Context, filter portsrepo.ListRequestsFilter) ([]domain.PaymentRequest, error) {
		gotFilter = filter.AuthorID
		return nil, nil
	}

	_, err := s.service.ListRequests(context.Background(), dto.ListPaymentRequestsParams{Page: 1, PerPage: 30}, "user-1")

	s.Require().NoError(err)
	s.Require().NotNil(gotFilter)
	s.Equal("user-1", *gotFilter)
}

func (s *PaymentRequestServiceTestSuite) TestListRequests_AdminKeepsRequestedFilter() {
	author := "user-1"
	var gotFilter *string
	s.mockRequestRepo.ListRequestsFn = func(ctx context.Context, filter portsrepo.ListRequestsFilter) ([]domain.PaymentRequest, error) {
		gotFilter = filter.AuthorID
		return nil, nil
	}

	_, err := s.service.ListRequests(context.Background(), dto.ListPaymentRequestsParams{AuthorID: &author, Page: 1, PerPage: 30}, "admin-1")

	s.Require().NoError(err)
	s.Require().NotNil(gotFilter)
	s.Equal("user-1", *gotFilter)
}

func (s *PaymentRequestServiceTestSuite) TestGetHistory_ParticipantOnly() {
	current := s.existingDraft()
	s.users["user-2"] = &domain.User{UserID: "user-2", Role: domain.RoleUser}
	s.mockRequestRepo.FindRequestByIDFn = func(ctx context.Context, id string) (*domain.PaymentRequest, error) {
		return current, nil
	}
	s.mockAuditRepo.ListAuditsByRequestIDFn = func(ctx context.Context, id string) ([]domain.AuditRecord, error) {
		return []domain.AuditRecord{{AuditRecordID: "a-1", PaymentRequestID: id}}, nil
	}

	_, err := s.service.GetHistory(context.Background(), "pr-1", "user-2")
	s.Require().ErrorIs(err, apperrors.ErrForbidden)

	history, err := s.service.GetHistory(context.Background(), "pr-1", "user-1")
	s.Require().NoError(err)
	s.Len(history, 1)
}

func TestPaymentRequestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentRequestServiceTestSuite))
}
