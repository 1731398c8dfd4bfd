package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/core/ports/platform"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
)

// dueRuleBatchLimit caps how many rules one pass picks up. Leftover rules are
// still due and get picked up by the next tick.
const dueRuleBatchLimit = 500

// ruleExecutorServiceImpl implements the RuleExecutorSvcFacade interface
type ruleExecutorServiceImpl struct {
	BaseService
	ruleRepo portsrepo.RuleRepositoryFacade
	files    platform.BlobStore
}

// NewRuleExecutorServiceImpl creates the due-rule execution service.
func NewRuleExecutorServiceImpl(ruleRepo portsrepo.RuleRepositoryFacade, files platform.BlobStore) portssvc.RuleExecutorSvcFacade {
	return &ruleExecutorServiceImpl{ruleRepo: ruleRepo, files: files}
}

var _ portssvc.RuleExecutorSvcFacade = (*ruleExecutorServiceImpl)(nil)

func (s *ruleExecutorServiceImpl) RunDueRules(ctx context.Context, now time.Time) (portssvc.RunReport, error) {
	var report portssvc.RunReport

	rules, err := s.ruleRepo.FindDueRules(ctx, now, dueRuleBatchLimit)
	if err != nil {
		s.LogError(ctx, err, "Failed to query due rules")
		return report, fmt.Errorf("failed to query due rules: %w", err)
	}
	report.Due = len(rules)
	if len(rules) == 0 {
		return report, nil
	}

	for _, rule := range rules {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		executed, err := s.executeRule(ctx, now, rule)
		switch {
		case err != nil:
			report.Failed++
			s.LogError(ctx, err, "Rule execution failed", slog.String("rule_id", rule.RuleID))
			s.writeRuleLog(ctx, rule.RuleID, domain.RuleLogError, "rule execution failed", map[string]any{
				"error": err.Error(),
			})
		case !executed:
			// A concurrent pass already advanced this rule.
			report.Skipped++
		default:
			report.Created++
		}
	}

	s.LogInfo(ctx, "Due-rule pass finished",
		slog.Int("due", report.Due),
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed))
	return report, nil
}

// executeRule spawns one payment request from a due rule and advances the
// rule's schedule in a single repository transaction. A failure here leaves
// the rule's next_run_at untouched so the rule stays due for a retry.
func (s *ruleExecutorServiceImpl) executeRule(ctx context.Context, now time.Time, rule domain.RecurrenceRule) (bool, error) {
	requestID := uuid.NewString()

	// A broken or missing attachment degrades the spawned request to one
	// without a file; it never blocks the occurrence itself.
	var fileURL *string
	var filePath string
	if rule.RequisitesFileURL != nil {
		src, ok := s.files.PathFromURL(*rule.RequisitesFileURL)
		if !ok {
			s.writeRuleLog(ctx, rule.RuleID, domain.RuleLogError, "requisites file URL is not resolvable", map[string]any{
				"url": *rule.RequisitesFileURL,
			})
		} else {
			filePath = path.Join("requisites", fmt.Sprintf("%s%s", requestID, path.Ext(src)))
			if err := s.files.Copy(src, filePath); err != nil {
				s.writeRuleLog(ctx, rule.RuleID, domain.RuleLogError, "failed to copy requisites file", map[string]any{
					"error": err.Error(),
				})
				filePath = ""
			} else {
				url := s.files.URL(filePath)
				fileURL = &url
			}
		}
	}

	ready, paid := domain.NormalizeStatus(rule.ReadyForPayment, false)
	pr := domain.PaymentRequest{
		PaymentRequestID:  requestID,
		UserID:            rule.UserID,
		ExpenseTypeID:     rule.ExpenseTypeID,
		ExpenseCategoryID: rule.ExpenseCategoryID,
		Requisites:        rule.Requisites,
		Amount:            rule.Amount,
		ReadyForPayment:   ready,
		Paid:              paid,
		RequisitesFileURL: fileURL,
		Participants:      []string{rule.UserID},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     rule.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: rule.UserID,
		},
	}
	if fileURL != nil {
		uploadedAt := now
		pr.RequisitesFileUploadedAt = &uploadedAt
	}

	audit := domain.AuditRecord{
		AuditRecordID:    uuid.NewString(),
		PaymentRequestID: requestID,
		UserID:           rule.UserID,
		Action:           domain.AuditCreated,
		ChangedFields:    createdChangedFields(&pr),
		CreatedAt:        now,
	}

	advanced := rule
	advanced.NextRunAt = rule.ComputeNextRunAt(now)
	lastRun := now
	advanced.LastRunAt = &lastRun
	if advanced.NextRunAt == nil {
		advanced.IsActive = false
	}
	advanced.LastUpdatedAt = now

	executed, err := s.ruleRepo.ExecuteDueRule(ctx, now, advanced, pr, audit)
	if err != nil || !executed {
		// The spawned request never landed, so its file copy is an orphan.
		if filePath != "" {
			if delErr := s.files.Delete(filePath); delErr != nil {
				s.LogWarn(ctx, "Failed to delete orphaned requisites copy",
					slog.String("path", filePath), slog.String("error", delErr.Error()))
			}
		}
		return executed, err
	}

	logCtx := map[string]any{
		"payment_request_id": requestID,
	}
	if advanced.NextRunAt != nil {
		logCtx["next_run_at"] = advanced.NextRunAt.UTC().Format(time.RFC3339)
	} else {
		logCtx["deactivated"] = true
	}
	s.writeRuleLog(ctx, rule.RuleID, domain.RuleLogInfo, "payment request created", logCtx)
	return true, nil
}

// writeRuleLog appends a rule log entry; log persistence never fails the pass.
func (s *ruleExecutorServiceImpl) writeRuleLog(ctx context.Context, ruleID string, level domain.RuleLogLevel, message string, logCtx map[string]any) {
	entry := domain.RuleLogEntry{
		RuleLogEntryID: uuid.NewString(),
		RuleID:         ruleID,
		Level:          level,
		Message:        message,
		Context:        logCtx,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.ruleRepo.SaveRuleLog(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to persist rule log entry", slog.String("rule_id", ruleID))
	}
}
