package service

import (
	"context"
	"time"

	"academy/internal/notifier"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
)

// RejectRequest rejects one pending application.
type RejectRequest struct {
	ApplicationID id.StudentID
	Reason        string
}

// RejectResult reports the best-effort notification outcome of a rejection.
type RejectResult struct {
	EmailSent  bool
	EmailError string
}

// Reject transitions a pending application to rejected. Rejection is a pure
// application-state transition: profile, student, enrollment and chapter rows
// are never touched.
func (s *Service) Reject(ctx context.Context, req RejectRequest) (RejectResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "enrollment.Reject")
	defer span.End()

	app, err := s.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return RejectResult{}, err
	}
	if err := app.CanFinalize(); err != nil {
		return RejectResult{}, err
	}

	app.ApplyRejection(req.Reason, time.Now().UTC())
	if err := s.stores.Applications.Update(ctx, app); err != nil {
		return RejectResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark application rejected")
	}

	var result RejectResult
	sendResult := s.sender.Send(ctx, notifier.Message{
		Kind:        notifier.KindApplicationRejected,
		Recipient:   app.Email,
		StudentName: app.FullName,
		Reason:      req.Reason,
	})
	if !sendResult.Sent {
		if s.metrics != nil {
			s.metrics.NotificationFailures.Inc()
		}
		s.logger.WarnContext(ctx, "rejection notification failed",
			"application_id", app.ID.String(), "error", sendResult.Error)
	}
	result.EmailSent, result.EmailError = sendResult.Sent, sendResult.Error

	if s.metrics != nil {
		s.metrics.ApplicationsRejected.Inc()
		s.metrics.ObserveRejection(start)
	}
	s.logAudit(ctx, audit.EventApplicationRejected, app.ID,
		"subject", app.ID.String(),
		"email", app.Email,
		"reason", req.Reason,
	)
	return result, nil
}
