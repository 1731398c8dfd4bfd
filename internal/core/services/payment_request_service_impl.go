package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/paydesk/paydesk_backend/internal/apperrors"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/core/ports/platform"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// paymentRequestServiceImpl implements the PaymentRequestSvcFacade interface
type paymentRequestServiceImpl struct {
	BaseService
	requestRepo  portsrepo.PaymentRequestRepositoryFacade
	auditRepo    portsrepo.AuditRepositoryFacade
	userRepo     portsrepo.UserReader
	categoryRepo portsrepo.ExpenseCategoryRepositoryFacade
	files        platform.BlobStore
	clock        platform.Clock
}

// NewPaymentRequestServiceImpl creates the payment request workflow service.
func NewPaymentRequestServiceImpl(
	requestRepo portsrepo.PaymentRequestRepositoryFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	userRepo portsrepo.UserReader,
	categoryRepo portsrepo.ExpenseCategoryRepositoryFacade,
	files platform.BlobStore,
	clock platform.Clock,
) portssvc.PaymentRequestSvcFacade {
	return &paymentRequestServiceImpl{
		requestRepo:  requestRepo,
		auditRepo:    auditRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		files:        files,
		clock:        clock,
	}
}

var _ portssvc.PaymentRequestSvcFacade = (*paymentRequestServiceImpl)(nil)

func (s *paymentRequestServiceImpl) CreateRequest(ctx context.Context, req dto.CreatePaymentRequestRequest, actorUserID string) (*domain.PaymentRequest, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.validatePayload(ctx, req.ExpenseTypeID, req.ExpenseCategoryID, req.Amount, req.Commission); err != nil {
		return nil, err
	}

	ready, paid := domain.NormalizeStatus(req.ReadyForPayment, req.Paid)
	// Base users cannot preset workflow flags; their requests start as drafts.
	if actor.Role == domain.RoleUser {
		ready, paid = false, false
	}

	commission := req.Commission
	if !actor.Role.CanSetCommission() {
		commission = nil
	}

	now := s.clock.Now()
	pr := domain.PaymentRequest{
		PaymentRequestID:  uuid.NewString(),
		UserID:            actor.UserID,
		ExpenseTypeID:     req.ExpenseTypeID,
		ExpenseCategoryID: req.ExpenseCategoryID,
		Requisites:        req.Requisites,
		Amount:            req.Amount,
		Commission:        commission,
		PurchaseReference: req.PurchaseReference,
		ReadyForPayment:   ready,
		Paid:              paid,
		PaidAccountID:     req.PaidAccountID,
		ReceiptURL:        req.ReceiptURL,
		Participants:      []string{actor.UserID},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if req.RequisitesFile != nil {
		url, err := s.storeUpload(req.RequisitesFile, "requisites")
		if err != nil {
			return nil, err
		}
		pr.RequisitesFileURL = &url
		uploadedAt := now
		pr.RequisitesFileUploadedAt = &uploadedAt
	}
	if req.ReceiptFile != nil {
		url, err := s.storeUpload(req.ReceiptFile, "receipts")
		if err != nil {
			return nil, err
		}
		pr.ReceiptURL = &url
	}

	if err := s.requestRepo.SaveRequest(ctx, pr); err != nil {
		s.LogError(ctx, err, "Failed to save payment request", slog.String("payment_request_id", pr.PaymentRequestID))
		return nil, err
	}

	record := domain.AuditRecord{
		AuditRecordID:    uuid.NewString(),
		PaymentRequestID: pr.PaymentRequestID,
		UserID:           actor.UserID,
		Action:           domain.AuditCreated,
		ChangedFields:    createdChangedFields(&pr),
		CreatedAt:        now,
	}
	if err := s.auditRepo.SaveAuditRecord(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to write created audit record", slog.String("payment_request_id", pr.PaymentRequestID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment request created",
		slog.String("payment_request_id", pr.PaymentRequestID),
		slog.String("actor_user_id", actor.UserID))
	return &pr, nil
}

func (s *paymentRequestServiceImpl) UpdateRequest(ctx context.Context, paymentRequestID string, req dto.UpdatePaymentRequestRequest, actorUserID string) (*domain.PaymentRequest, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}

	current, err := s.requestRepo.FindRequestByID(ctx, paymentRequestID)
	if err != nil {
		return nil, err
	}
	isParticipant := current.HasParticipant(actor.UserID)

	if !actor.Role.CanEditRequest(current, isParticipant) {
		s.LogWarn(ctx, "Edit rejected by role policy",
			slog.String("payment_request_id", paymentRequestID),
			slog.String("role", string(actor.Role)))
		return nil, apperrors.ErrForbidden
	}

	// Normalize the incoming flags against the current state before the
	// status gate so the gate sees the transition that would actually apply.
	ready := current.ReadyForPayment
	if req.ReadyForPayment != nil {
		ready = *req.ReadyForPayment
	}
	paid := current.Paid
	if req.Paid != nil {
		paid = *req.Paid
	}
	ready, paid = domain.NormalizeStatus(ready, paid)

	statusWillChange := ready != current.ReadyForPayment || paid != current.Paid
	if statusWillChange && !actor.Role.CanChangeStatus(current, isParticipant) {
		s.LogWarn(ctx, "Status change rejected by role policy",
			slog.String("payment_request_id", paymentRequestID),
			slog.String("role", string(actor.Role)))
		return nil, apperrors.ErrForbidden
	}

	if err := s.validatePayload(ctx, req.ExpenseTypeID, req.ExpenseCategoryID, req.Amount, req.Commission); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	old := *current
	upd := *current
	upd.ExpenseTypeID = req.ExpenseTypeID
	upd.ExpenseCategoryID = req.ExpenseCategoryID
	upd.Amount = req.Amount
	upd.ReadyForPayment = ready
	upd.Paid = paid
	if req.Requisites != nil {
		upd.Requisites = *req.Requisites
	}
	if req.PurchaseReference != nil {
		upd.PurchaseReference = *req.PurchaseReference
	}
	if req.PaidAccountID != nil {
		if *req.PaidAccountID == "" {
			upd.PaidAccountID = nil
		} else {
			upd.PaidAccountID = req.PaidAccountID
		}
	}
	if req.ReceiptURL != nil && *req.ReceiptURL != "" {
		upd.ReceiptURL = req.ReceiptURL
	}
	if actor.Role.CanSetCommission() {
		upd.Commission = req.Commission
	}

	var oldRequisitesURL *string
	if req.RequisitesFile != nil {
		url, err := s.storeUpload(req.RequisitesFile, "requisites")
		if err != nil {
			return nil, err
		}
		oldRequisitesURL = current.RequisitesFileURL
		upd.RequisitesFileURL = &url
		uploadedAt := now
		upd.RequisitesFileUploadedAt = &uploadedAt
	}
	if req.ReceiptFile != nil {
		url, err := s.storeUpload(req.ReceiptFile, "receipts")
		if err != nil {
			return nil, err
		}
		upd.ReceiptURL = &url
	}

	changes := buildChangeSet(&old, &upd)
	if len(changes) == 0 {
		s.LogDebug(ctx, "No fields changed, nothing to persist",
			slog.String("payment_request_id", paymentRequestID))
		return current, nil
	}

	upd.LastUpdatedAt = now
	upd.LastUpdatedBy = actor.UserID

	if err := s.requestRepo.UpdateRequest(ctx, upd); err != nil {
		s.LogError(ctx, err, "Failed to update payment request", slog.String("payment_request_id", paymentRequestID))
		return nil, err
	}

	if err := s.requestRepo.AddParticipant(ctx, upd.PaymentRequestID, actor.UserID); err != nil {
		s.LogError(ctx, err, "Failed to add participant", slog.String("payment_request_id", paymentRequestID))
		return nil, err
	}
	if !isParticipant {
		upd.Participants = append(upd.Participants, actor.UserID)
	}

	action := domain.AuditUpdated
	if _, ok := changes["ready_for_payment"]; ok {
		action = domain.AuditStatusChanged
	} else if _, ok := changes["paid"]; ok {
		action = domain.AuditStatusChanged
	}
	record := domain.AuditRecord{
		AuditRecordID:    uuid.NewString(),
		PaymentRequestID: upd.PaymentRequestID,
		UserID:           actor.UserID,
		Action:           action,
		ChangedFields:    changes,
		CreatedAt:        now,
	}
	if err := s.auditRepo.SaveAuditRecord(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to write audit record", slog.String("payment_request_id", paymentRequestID))
		return nil, err
	}

	// The old requisites file is orphaned only after the new reference is
	// durably associated with the request.
	if oldRequisitesURL != nil {
		if p, ok := s.files.PathFromURL(*oldRequisitesURL); ok {
			if err := s.files.Delete(p); err != nil {
				s.LogWarn(ctx, "Failed to delete replaced requisites file",
					slog.String("path", p), slog.String("error", err.Error()))
			}
		}
	}

	s.LogInfo(ctx, "Payment request updated",
		slog.String("payment_request_id", upd.PaymentRequestID),
		slog.String("action", string(action)),
		slog.Int("changed_fields", len(changes)))
	return &upd, nil
}

func (s *paymentRequestServiceImpl) GetRequestByID(ctx context.Context, paymentRequestID string, actorUserID string) (*domain.PaymentRequest, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	pr, err := s.requestRepo.FindRequestByID(ctx, paymentRequestID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanViewRequest(pr.HasParticipant(actor.UserID)) {
		return nil, apperrors.ErrForbidden
	}
	return pr, nil
}

func (s *paymentRequestServiceImpl) ListRequests(ctx context.Context, params dto.ListPaymentRequestsParams, actorUserID string) ([]domain.PaymentRequest, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	params.NormalizePerPage()
	filter := listFilterFromParams(params, actor)
	requests, err := s.requestRepo.ListRequests(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payment requests")
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}
	if requests == nil {
		requests = []domain.PaymentRequest{}
	}
	return requests, nil
}

func (s *paymentRequestServiceImpl) SumRequests(ctx context.Context, params dto.ListPaymentRequestsParams, actorUserID string) (portsrepo.RequestTotals, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return portsrepo.RequestTotals{}, err
	}
	filter := listFilterFromParams(params, actor)
	return s.requestRepo.SumRequests(ctx, filter)
}

func (s *paymentRequestServiceImpl) GetHistory(ctx context.Context, paymentRequestID string, actorUserID string) ([]domain.AuditRecord, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	pr, err := s.requestRepo.FindRequestByID(ctx, paymentRequestID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanViewRequest(pr.HasParticipant(actor.UserID)) {
		return nil, apperrors.ErrForbidden
	}
	return s.auditRepo.ListAuditsByRequestID(ctx, paymentRequestID)
}

// resolveActor loads the acting user and rejects blocked accounts.
func (s *paymentRequestServiceImpl) resolveActor(ctx context.Context, actorUserID string) (*domain.User, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor.IsBlocked() {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

// validatePayload checks the referential and numeric constraints shared by
// create and update. Runs before any mutation.
func (s *paymentRequestServiceImpl) validatePayload(ctx context.Context, expenseTypeID, expenseCategoryID string, amount decimal.Decimal, commission *decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}
	if commission != nil && commission.IsNegative() {
		return fmt.Errorf("commission must not be negative: %w", apperrors.ErrValidation)
	}
	category, err := s.categoryRepo.FindExpenseCategoryByID(ctx, expenseCategoryID)
	if err != nil {
		return fmt.Errorf("invalid expense category: %w", err)
	}
	if category.ExpenseTypeID != expenseTypeID {
		return fmt.Errorf("expense category does not belong to the expense type: %w", apperrors.ErrValidation)
	}
	return nil
}

// storeUpload writes the upload under the given prefix with a fresh
// uuid-based name, keeping only the original extension.
func (s *paymentRequestServiceImpl) storeUpload(f *dto.FileUpload, prefix string) (string, error) {
	dst := path.Join(prefix, storedFilename(f.Filename))
	if err := s.files.Save(f.Content, dst); err != nil {
		return "", fmt.Errorf("failed to store uploaded file: %w", err)
	}
	return s.files.URL(dst), nil
}

// storedFilename generates a unique stored name keeping the source extension.
func storedFilename(original string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(original)), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s.%s", uuid.NewString(), ext)
}

func listFilterFromParams(params dto.ListPaymentRequestsParams, actor *domain.User) portsrepo.ListRequestsFilter {
	filter := portsrepo.ListRequestsFilter{
		AuthorID:          params.AuthorID,
		ParticipantID:     params.ParticipantID,
		ExpenseTypeID:     params.ExpenseTypeID,
		ExpenseCategoryID: params.ExpenseCategoryID,
		PaidAccountID:     params.PaidAccountID,
		PurchaseReference: params.PurchaseReference,
		ReadyForPayment:   params.ReadyForPayment,
		Paid:              params.Paid,
		CreatedFrom:       params.CreatedFrom,
		CreatedTo:         params.CreatedTo,
		Limit:             params.PerPage,
		Offset:            (params.Page - 1) * params.PerPage,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	// Base users only ever see their own requests regardless of filters.
	if actor.Role == domain.RoleUser {
		authorID := actor.UserID
		filter.AuthorID = &authorID
	}
	return filter
}
