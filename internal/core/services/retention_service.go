package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/core/ports/platform"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
)

// retentionServiceImpl implements the RetentionSvcFacade interface
type retentionServiceImpl struct {
	BaseService
	requestRepo   portsrepo.PaymentRequestRepositoryFacade
	auditRepo     portsrepo.AuditRepositoryFacade
	userRepo      portsrepo.UserReader
	files         platform.BlobStore
	retentionDays int
}

// NewRetentionServiceImpl creates the requisites file retention service.
// retentionDays of zero or less disables pruning entirely.
func NewRetentionServiceImpl(
	requestRepo portsrepo.PaymentRequestRepositoryFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	userRepo portsrepo.UserReader,
	files platform.BlobStore,
	retentionDays int,
) portssvc.RetentionSvcFacade {
	return &retentionServiceImpl{
		requestRepo:   requestRepo,
		auditRepo:     auditRepo,
		userRepo:      userRepo,
		files:         files,
		retentionDays: retentionDays,
	}
}

var _ portssvc.RetentionSvcFacade = (*retentionServiceImpl)(nil)

func (s *retentionServiceImpl) PruneRequisitesFiles(ctx context.Context, now time.Time) (portssvc.PruneReport, error) {
	var report portssvc.PruneReport
	if s.retentionDays <= 0 {
		return report, nil
	}

	cutoff := now.AddDate(0, 0, -s.retentionDays)
	expired, err := s.requestRepo.ListExpiredRequisitesFiles(ctx, cutoff)
	if err != nil {
		s.LogError(ctx, err, "Failed to query expired requisites files")
		return report, fmt.Errorf("failed to query expired requisites files: %w", err)
	}
	if len(expired) == 0 {
		return report, nil
	}

	// Pruning is a system action; it is attributed to an active admin when
	// one exists, otherwise to the request author.
	systemActorID := ""
	if admin, err := s.userRepo.FindFirstActiveAdmin(ctx); err == nil {
		systemActorID = admin.UserID
	}

	for _, pr := range expired {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if pr.RequisitesFileURL == nil {
			continue
		}

		p, ok := s.files.PathFromURL(*pr.RequisitesFileURL)
		if !ok {
			// The URL points somewhere we do not manage, so the reference
			// stays put and the pass moves on.
			s.LogWarn(ctx, "Requisites file URL is not resolvable, skipping",
				slog.String("payment_request_id", pr.PaymentRequestID),
				slog.String("url", *pr.RequisitesFileURL))
			report.Skipped++
			continue
		}
		if err := s.removeBlob(ctx, p); err != nil {
			// The file is still on disk and the reference still points at
			// it, so the next pass retries this request.
			report.Skipped++
			continue
		}

		if err := s.requestRepo.ClearRequisitesFile(ctx, pr.PaymentRequestID); err != nil {
			s.LogError(ctx, err, "Failed to clear requisites file reference",
				slog.String("payment_request_id", pr.PaymentRequestID))
			report.Skipped++
			continue
		}

		actorID := systemActorID
		if actorID == "" {
			actorID = pr.UserID
		}
		if err := s.requestRepo.AddParticipant(ctx, pr.PaymentRequestID, actorID); err != nil {
			s.LogError(ctx, err, "Failed to add participant",
				slog.String("payment_request_id", pr.PaymentRequestID))
		}
		record := domain.AuditRecord{
			AuditRecordID:    uuid.NewString(),
			PaymentRequestID: pr.PaymentRequestID,
			UserID:           actorID,
			Action:           domain.AuditRequisitesFilePruned,
			ChangedFields: map[string]domain.FieldChange{
				"requisites_file_url":         {Old: *pr.RequisitesFileURL, New: nil},
				"requisites_file_uploaded_at": {Old: timeValue(pr.RequisitesFileUploadedAt), New: nil},
			},
			CreatedAt: now,
		}
		if err := s.auditRepo.SaveAuditRecord(ctx, record); err != nil {
			s.LogError(ctx, err, "Failed to write prune audit record",
				slog.String("payment_request_id", pr.PaymentRequestID))
		}

		report.Pruned++
	}

	s.LogInfo(ctx, "Requisites retention pass finished",
		slog.Int("pruned", report.Pruned),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

// removeBlob deletes the file at the resolved path. A file that is already
// gone is not an error; the stale reference still gets cleared.
func (s *retentionServiceImpl) removeBlob(ctx context.Context, p string) error {
	if !s.files.Exists(p) {
		return nil
	}
	if err := s.files.Delete(p); err != nil {
		s.LogError(ctx, err, "Failed to delete requisites file", slog.String("path", p))
		return err
	}
	return nil
}
