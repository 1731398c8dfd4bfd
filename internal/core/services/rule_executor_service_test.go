package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RuleExecutorServiceTestSuite struct {
	suite.Suite
	mockRuleRepo *MockRuleRepository
	files        *fakeBlobStore
	now          time.Time
}

func (s *RuleExecutorServiceTestSuite) SetupTest() {
	s.mockRuleRepo = new(MockRuleRepository)
	s.files = newFakeBlobStore()
	s.now = time.Date(2026, time.February, 10, 7, 10, 0, 0, time.UTC)
}

func (s *RuleExecutorServiceTestSuite) dueRule(id string) domain.RecurrenceRule {
	next := time.Date(2026, time.February, 10, 7, 0, 0, 0, time.UTC)
	return domain.RecurrenceRule{
		RuleID:            id,
		UserID:            "owner-1",
		Name:              "office rent",
		ExpenseTypeID:     "et-1",
		ExpenseCategoryID: "ec-1",
		Requisites:        "IBAN UA00 0000",
		Amount:            decimal.NewFromInt(1500),
		ReadyForPayment:   true,
		Frequency:         domain.FrequencyDaily,
		StartDate:         time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		RunAt:             "09:00",
		Timezone:          "Europe/Kyiv",
		NextRunAt:         &next,
		IsActive:          true,
	}
}

func (s *RuleExecutorServiceTestSuite) TestRunDueRules_CreatesRequestAndAdvancesSchedule() {
	ctx := context.Background()
	rule := s.dueRule("rule-1")

	s.mockRuleRepo.FindDueRulesFn = func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
		s.True(now.Equal(s.now))
		return []domain.RecurrenceRule{rule}, nil
	}

	var gotRule domain.RecurrenceRule
	var gotReq domain.PaymentRequest
	var gotAudit domain.AuditRecord
	s.mockRuleRepo.ExecuteDueRuleFn = func(ctx context.Context, now time.Time, r domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
		gotRule, gotReq, gotAudit = r, req, audit
		return true, nil
	}
	var logs []domain.RuleLogEntry
	s.mockRuleRepo.SaveRuleLogFn = func(ctx context.Context, entry domain.RuleLogEntry) error {
		logs = append(logs, entry)
		return nil
	}

	svc := services.NewRuleExecutorServiceImpl(s.mockRuleRepo, s.files)
	report, err := svc.RunDueRules(ctx, s.now)

	s.Require().NoError(err)
	s.Equal(1, report.Due)
	s.Equal(1, report.Created)
	s.Equal(0, report.Skipped)
	s.Equal(0, report.Failed)

	// Spawned request carries the rule's payload and the owner as author
	// and sole participant.
	s.NotEmpty(gotReq.PaymentRequestID)
	s.Equal("owner-1", gotReq.UserID)
	s.Equal([]string{"owner-1"}, gotReq.Participants)
	s.True(gotReq.Amount.Equal(rule.Amount))
	s.True(gotReq.ReadyForPayment)
	s.False(gotReq.Paid)

	// Schedule advanced to the next daily occurrence, last run stamped.
	s.Require().NotNil(gotRule.NextRunAt)
	s.True(gotRule.NextRunAt.After(s.now))
	s.Require().NotNil(gotRule.LastRunAt)
	s.True(gotRule.LastRunAt.Equal(s.now))
	s.True(gotRule.IsActive)

	s.Equal(domain.AuditCreated, gotAudit.Action)
	s.Equal(gotReq.PaymentRequestID, gotAudit.PaymentRequestID)

	s.Require().Len(logs, 1)
	s.Equal(domain.RuleLogInfo, logs[0].Level)
	s.Equal(gotReq.PaymentRequestID, logs[0].Context["payment_request_id"])
}

func (s *RuleExecutorServiceTestSuite) TestRunDueRules_CopiesRequisitesFile() {
	ctx := context.Background()
	rule := s.dueRule("rule-1")
	fileURL := "/files/rule-requisites/abc.pdf"
	rule.RequisitesFileURL = &fileURL
	s.Require().NoError(s.files.Save(strings.NewReader("pdf-bytes"), "rule-requisites/abc.pdf"))

	s.mockRuleRepo.FindDueRulesFn = func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
		return []domain.RecurrenceRule{rule}, nil
	}
	var gotReq domain.PaymentRequest
	s.mockRuleRepo.ExecuteDueRuleFn = func(ctx context.Context, now time.Time, r domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
		gotReq = req
		return true, nil
	}
	s.mockRuleRepo.SaveRuleLogFn = func(ctx context.Context, entry domain.RuleLogEntry) error { return nil }

	svc := services.NewRuleExecutorServiceImpl(s.mockRuleRepo, s.files)
	report, err := svc.RunDueRules(ctx, s.now)

	s.Require().NoError(err)
	s.Equal(1, report.Created)

	// The request points at its own copy, not the rule's file.
	s.Require().NotNil(gotReq.RequisitesFileURL)
	s.NotEqual(fileURL, *gotReq.RequisitesFileURL)
	p, ok := s.files.PathFromURL(*gotReq.RequisitesFileURL)
	s.Require().True(ok)
	s.True(s.files.Exists(p))
	s.True(strings.HasSuffix(p, ".pdf"))
	s.Require().NotNil(gotReq.RequisitesFileUploadedAt)
	s.True(gotReq.RequisitesFileUploadedAt.Equal(s.now))
}

func (s *RuleExecutorServiceTestSuite) TestRunDueRules_SkipDeletesOrphanedCopy() {
	ctx := context.Background()
	rule := s.dueRule("rule-1")
	fileURL := "/files/rule-requisites/abc.pdf"
	rule.RequisitesFileURL = &fileURL
	s.Require().NoError(s.files.Save(strings.NewReader("pdf-bytes"), "rule-requisites/abc.pdf"))

	s.mockRuleRepo.FindDueRulesFn = func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
		return []domain.RecurrenceRule{rule}, nil
	}
	// A concurrent pass already advanced the rule.
	s.mockRuleRepo.ExecuteDueRuleFn = func(ctx context.Context, now time.Time, r domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
		return false, nil
	}

	svc := services.NewRuleExecutorServiceImpl(s.mockRuleRepo, s.files)
	report, err := svc.RunDueRules(ctx, s.now)

	s.Require().NoError(err)
	s.Equal(1, report.Skipped)
	s.Equal(0, report.Created)

	// Only the rule's own file remains; the pre-made copy was removed.
	s.True(s.files.Exists("rule-requisites/abc.pdf"))
	s.Len(s.files.blobs, 1)
}

func (s *RuleExecutorServiceTestSuite) TestRunDueRules_FailureIsolation() {
	ctx := context.Background()
	bad := s.dueRule("rule-bad")
	good := s.dueRule("rule-good")

	s.mockRuleRepo.FindDueRulesFn = func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
		return []domain.RecurrenceRule{bad, good}, nil
	}
	s.mockRuleRepo.ExecuteDueRuleFn = func(ctx context.Context, now time.Time, r domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
		if r.RuleID == "rule-bad" {
			return false, errors.New("insert failed")
		}
		return true, nil
	}
	var logs []domain.RuleLogEntry
	s.mockRuleRepo.SaveRuleLogFn = func(ctx context.Context, entry domain.RuleLogEntry) error {
		logs = append(logs, entry)
		return nil
	}

	svc := services.NewRuleExecutorServiceImpl(s.mockRuleRepo, s.files)
	report, err := svc.RunDueRules(ctx, s.now)

	s.Require().NoError(err)
	s.Equal(2, report.Due)
	s.Equal(1, report.Failed)
	s.Equal(1, report.Created)

	s.Require().Len(logs, 2)
	s.Equal(domain.RuleLogError, logs[0].Level)
	s.Equal("rule-bad", logs[0].RuleID)
	s.Equal("insert failed", logs[0].Context["error"])
	s.Equal(domain.RuleLogInfo, logs[1].Level)
	s.Equal("rule-good", logs[1].RuleID)
}

func (s *RuleExecutorServiceTestSuite) TestRunDueRules_OnceRuleDeactivates() {
	ctx := context.Background()
	rule := s.dueRule("rule-once")
	rule.Frequency = domain.FrequencyOnce
	rule.StartDate = time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

	s.mockRuleRepo.FindDueRulesFn = func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
		return []domain.RecurrenceRule{rule}, nil
	}
	var gotRule domain.RecurrenceRule
	s.mockRuleRepo.ExecuteDueRuleFn = func(ctx context.Context, now time.Time, r domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
		gotRule = r
		return true, nil
	}
	var logs []domain.RuleLogEntry
	s.mockRuleRepo.SaveRuleLogFn = func(ctx context.Context, entry domain.RuleLogEntry) error {
		logs = append(logs, entry)
		return nil
	}

	svc := services.NewRuleExecutorServiceImpl(s.mockRuleRepo, s.files)
	report, err := svc.RunDueRules(ctx, s.now)

	s.Require().NoError(err)
	s.Equal(1, report.Created)
	s.Nil(gotRule.NextRunAt)
	s.False(gotRule.IsActive)

	s.Require().Len(logs, 1)
	s.Equal(true, logs[0].Context["deactivated"])
}

func (s *RuleExecutorServiceTestSuite) TestRunDueRules_MissingFileStillCreatesRequest() {
	ctx := context.Background()
	rule := s.dueRule("rule-1")
	fileURL := "/files/rule-requisites/gone.pdf"
	rule.RequisitesFileURL = &fileURL
	// No blob saved at that path, so the copy fails.

	s.mockRuleRepo.FindDueRulesFn = func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
		return []domain.RecurrenceRule{rule}, nil
	}
	var gotReq domain.PaymentRequest
	s.mockRuleRepo.ExecuteDueRuleFn = func(ctx context.Context, now time.Time, r domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
		gotReq = req
		return true, nil
	}
	var logs []domain.RuleLogEntry
	s.mockRuleRepo.SaveRuleLogFn = func(ctx context.Context, entry domain.RuleLogEntry) error {
		logs = append(logs, entry)
		return nil
	}

	svc := services.NewRuleExecutorServiceImpl(s.mockRuleRepo, s.files)
	report, err := svc.RunDueRules(ctx, s.now)

	s.Require().NoError(err)
	s.Equal(1, report.Created)
	s.Equal(0, report.Failed)
	s.Nil(gotReq.RequisitesFileURL)
	s.Nil(gotReq.RequisitesFileUploadedAt)

	// An error log for the broken attachment, then the creation info log.
	s.Require().Len(logs, 2)
	s.Equal(domain.RuleLogError, logs[0].Level)
	s.Equal(domain.RuleLogInfo, logs[1].Level)
}

func (s *RuleExecutorServiceTestSuite) TestRunDueRules_NothingDue() {
	s.mockRuleRepo.FindDueRulesFn = func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
		return nil, nil
	}

	svc := services.NewRuleExecutorServiceImpl(s.mockRuleRepo, s.files)
	report, err := svc.RunDueRules(context.Background(), s.now)

	s.Require().NoError(err)
	s.Equal(0, report.Due)
	s.Equal(0, report.Created)
}

func TestRuleExecutorServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RuleExecutorServiceTestSuite))
}
