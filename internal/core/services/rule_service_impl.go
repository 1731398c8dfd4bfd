package services

import (
	"context"
	"fmt"
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

const defaultRuleLogLimit = 200

// ruleServiceImpl implements the RuleSvcFacade interface
type ruleServiceImpl struct {
	BaseService
	ruleRepo        portsrepo.RuleRepositoryFacade
	userRepo        portsrepo.UserReader
	categoryRepo    portsrepo.ExpenseCategoryRepositoryFacade
	files           platform.BlobStore
	clock           platform.Clock
	defaultTimezone string
}

// NewRuleServiceImpl creates the recurrence rule management service.
// defaultTimezone applies to rules saved without an explicit zone; empty
// falls back to the domain default.
func NewRuleServiceImpl(
	ruleRepo portsrepo.RuleRepositoryFacade,
	userRepo portsrepo.UserReader,
	categoryRepo portsrepo.ExpenseCategoryRepositoryFacade,
	files platform.BlobStore,
	clock platform.Clock,
	defaultTimezone string,
) portssvc.RuleSvcFacade {
	if defaultTimezone == "" {
		defaultTimezone = domain.DefaultTimezone
	}
	return &ruleServiceImpl{
		ruleRepo:        ruleRepo,
		userRepo:        userRepo,
		categoryRepo:    categoryRepo,
		files:           files,
		clock:           clock,
		defaultTimezone: defaultTimezone,
	}
}

var _ portssvc.RuleSvcFacade = (*ruleServiceImpl)(nil)

func (s *ruleServiceImpl) CreateRule(ctx context.Context, req dto.CreateRuleRequest, actorUserID string) (*domain.RecurrenceRule, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}

	def, err := s.buildDefinition(ctx, ruleDefinitionInput(req))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rule := domain.RecurrenceRule{
		RuleID:            uuid.NewString(),
		UserID:            actor.UserID,
		Name:              req.Name,
		ExpenseTypeID:     req.ExpenseTypeID,
		ExpenseCategoryID: req.ExpenseCategoryID,
		Requisites:        req.Requisites,
		Amount:            req.Amount,
		ReadyForPayment:   req.ReadyForPayment,
		Frequency:         def.frequency,
		IntervalDays:      def.intervalDays,
		DaysOfWeek:        def.daysOfWeek,
		DayOfMonth:        def.dayOfMonth,
		StartDate:         def.startDate,
		RunAt:             def.runAt,
		Timezone:          def.timezone,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if req.RequisitesFile != nil {
		url, err := s.storeRuleFile(req.RequisitesFile)
		if err != nil {
			return nil, err
		}
		rule.RequisitesFileURL = &url
	}

	s.reschedule(&rule, now)

	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save rule", slog.String("rule_id", rule.RuleID))
		return nil, err
	}

	s.LogInfo(ctx, "Recurrence rule created",
		slog.String("rule_id", rule.RuleID),
		slog.String("frequency", string(rule.Frequency)))
	return &rule, nil
}

func (s *ruleServiceImpl) UpdateRule(ctx context.Context, ruleID string, req dto.UpdateRuleRequest, actorUserID string) (*domain.RecurrenceRule, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if !canManageRule(actor, rule) {
		return nil, apperrors.ErrForbidden
	}

	def, err := s.buildDefinition(ctx, ruleDefinitionInput(dto.CreateRuleRequest(req)))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	upd := *rule
	upd.Name = req.Name
	upd.ExpenseTypeID = req.ExpenseTypeID
	upd.ExpenseCategoryID = req.ExpenseCategoryID
	upd.Requisites = req.Requisites
	upd.Amount = req.Amount
	upd.ReadyForPayment = req.ReadyForPayment
	upd.Frequency = def.frequency
	upd.IntervalDays = def.intervalDays
	upd.DaysOfWeek = def.daysOfWeek
	upd.DayOfMonth = def.dayOfMonth
	upd.StartDate = def.startDate
	upd.RunAt = def.runAt
	upd.Timezone = def.timezone
	if req.IsActive != nil {
		upd.IsActive = *req.IsActive
	}
	upd.LastUpdatedAt = now
	upd.LastUpdatedBy = actor.UserID

	var oldFileURL *string
	if req.RequisitesFile != nil {
		url, err := s.storeRuleFile(req.RequisitesFile)
		if err != nil {
			return nil, err
		}
		oldFileURL = rule.RequisitesFileURL
		upd.RequisitesFileURL = &url
	}

	s.reschedule(&upd, now)

	if err := s.ruleRepo.UpdateRule(ctx, upd); err != nil {
		s.LogError(ctx, err, "Failed to update rule", slog.String("rule_id", ruleID))
		return nil, err
	}

	if oldFileURL != nil {
		s.deleteFileByURL(ctx, *oldFileURL)
	}

	s.LogInfo(ctx, "Recurrence rule updated", slog.String("rule_id", ruleID))
	return &upd, nil
}

func (s *ruleServiceImpl) DeleteRule(ctx context.Context, ruleID string, actorUserID string) error {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return err
	}
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return err
	}
	if !canManageRule(actor, rule) {
		return apperrors.ErrForbidden
	}
	if err := s.ruleRepo.DeleteRule(ctx, ruleID); err != nil {
		s.LogError(ctx, err, "Failed to delete rule", slog.String("rule_id", ruleID))
		return err
	}
	if rule.RequisitesFileURL != nil {
		s.deleteFileByURL(ctx, *rule.RequisitesFileURL)
	}
	s.LogInfo(ctx, "Recurrence rule deleted", slog.String("rule_id", ruleID))
	return nil
}

func (s *ruleServiceImpl) GetRuleByID(ctx context.Context, ruleID string, actorUserID string) (*domain.RecurrenceRule, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if !canManageRule(actor, rule) {
		return nil, apperrors.ErrForbidden
	}
	return rule, nil
}

func (s *ruleServiceImpl) ListRules(ctx context.Context, actorUserID string) ([]domain.RecurrenceRule, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	rules, err := s.ruleRepo.ListRules(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list rules")
		return nil, err
	}
	if actor.Role == domain.RoleAdmin {
		return rules, nil
	}
	own := make([]domain.RecurrenceRule, 0, len(rules))
	for _, r := range rules {
		if r.UserID == actor.UserID {
			own = append(own, r)
		}
	}
	return own, nil
}

func (s *ruleServiceImpl) ListRuleLogs(ctx context.Context, limit int, actorUserID string) ([]domain.RuleLogEntry, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleUser {
		return nil, apperrors.ErrForbidden
	}
	if limit <= 0 || limit > defaultRuleLogLimit {
		limit = defaultRuleLogLimit
	}
	return s.ruleRepo.ListRuleLogs(ctx, limit)
}

// canManageRule gates rule reads and mutations to the owner or an admin.
func canManageRule(actor *domain.User, rule *domain.RecurrenceRule) bool {
	return actor.Role == domain.RoleAdmin || rule.UserID == actor.UserID
}

func (s *ruleServiceImpl) resolveActor(ctx context.Context, actorUserID string) (*domain.User, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor.IsBlocked() {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

// ruleDefinition is the validated scheduling half of a rule.
type ruleDefinition struct {
	frequency    domain.Frequency
	intervalDays int
	daysOfWeek   []int
	dayOfMonth   int
	startDate    time.Time
	runAt        string
	timezone     string
}

// ruleDefinitionInput narrows the create/update DTOs to the fields the
// definition builder needs.
type ruleDefinitionInput dto.CreateRuleRequest

// buildDefinition validates the frequency-specific fields and resolves the
// defaults for timezone and run-at.
func (s *ruleServiceImpl) buildDefinition(ctx context.Context, in ruleDefinitionInput) (ruleDefinition, error) {
	var def ruleDefinition

	if !in.Frequency.Valid() {
		return def, fmt.Errorf("unknown frequency %q: %w", in.Frequency, apperrors.ErrValidation)
	}
	if !in.Amount.IsPositive() {
		return def, fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}

	category, err := s.categoryRepo.FindExpenseCategoryByID(ctx, in.ExpenseCategoryID)
	if err != nil {
		return def, fmt.Errorf("invalid expense category: %w", err)
	}
	if category.ExpenseTypeID != in.ExpenseTypeID {
		return def, fmt.Errorf("expense category does not belong to the expense type: %w", apperrors.ErrValidation)
	}

	startDate, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return def, fmt.Errorf("invalid start date %q: %w", in.StartDate, apperrors.ErrValidation)
	}

	timezone := in.Timezone
	if timezone == "" {
		timezone = s.defaultTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return def, fmt.Errorf("unknown timezone %q: %w", timezone, apperrors.ErrValidation)
	}

	runAt := in.RunAt
	if runAt == "" {
		runAt = domain.DefaultRunAt
	}
	if _, err := time.Parse("15:04", runAt); err != nil {
		if _, err := time.Parse("15:04:05", runAt); err != nil {
			return def, fmt.Errorf("invalid run-at time %q: %w", in.RunAt, apperrors.ErrValidation)
		}
	}

	switch in.Frequency {
	case domain.FrequencyEveryNDay:
		if in.IntervalDays == nil || *in.IntervalDays < 1 {
			return def, fmt.Errorf("every_n_days requires a positive interval: %w", apperrors.ErrValidation)
		}
		def.intervalDays = *in.IntervalDays
	case domain.FrequencyWeekly:
		if len(in.DaysOfWeek) == 0 {
			return def, fmt.Errorf("weekly requires at least one weekday: %w", apperrors.ErrValidation)
		}
		for _, d := range in.DaysOfWeek {
			if d < 1 || d > 7 {
				return def, fmt.Errorf("weekday %d out of range: %w", d, apperrors.ErrValidation)
			}
		}
		def.daysOfWeek = in.DaysOfWeek
	case domain.FrequencyMonthly:
		if in.DayOfMonth == nil || *in.DayOfMonth < 1 || *in.DayOfMonth > 31 {
			return def, fmt.Errorf("monthly requires a day of month between 1 and 31: %w", apperrors.ErrValidation)
		}
		def.dayOfMonth = *in.DayOfMonth
	}

	def.frequency = in.Frequency
	def.startDate = startDate
	def.runAt = runAt
	def.timezone = timezone
	return def, nil
}

// reschedule recomputes the rule's next occurrence as of now. A rule with no
// further occurrences is deactivated so the due query never picks it up.
func (s *ruleServiceImpl) reschedule(rule *domain.RecurrenceRule, now time.Time) {
	rule.NextRunAt = rule.ComputeNextRunAt(now)
	if rule.NextRunAt == nil {
		rule.IsActive = false
	}
}

func (s *ruleServiceImpl) storeRuleFile(f *dto.FileUpload) (string, error) {
	dst := fmt.Sprintf("rule-requisites/%s", storedFilename(f.Filename))
	if err := s.files.Save(f.Content, dst); err != nil {
		return "", fmt.Errorf("failed to store rule requisites file: %w", err)
	}
	return s.files.URL(dst), nil
}

func (s *ruleServiceImpl) deleteFileByURL(ctx context.Context, url string) {
	if p, ok := s.files.PathFromURL(url); ok {
		if err := s.files.Delete(p); err != nil {
			s.LogWarn(ctx, "Failed to delete rule requisites file",
				slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}
