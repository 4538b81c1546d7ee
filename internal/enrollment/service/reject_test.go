package service

import (
	"context"

	"github.com/google/uuid"

	"academy/internal/enrollment/models"
	"academy/internal/notifier"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
)

func (s *EnrollmentSuite) TestRejectApplication() {
	ctx := context.Background()
	app := s.newApplication("declined@example.com")

	result, err := s.svc.Reject(ctx, RejectRequest{ApplicationID: app.ID, Reason: "incomplete portfolio"})
	s.Require().NoError(err)
	s.True(result.EmailSent)

	stored, err := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusRejected, stored.Status)
	s.Equal("incomplete portfolio", stored.RejectedReason)
	s.NotNil(stored.RejectedAt)

	messages := s.sender.Messages()
	s.Require().Len(messages, 1)
	s.Equal(notifier.KindApplicationRejected, messages[0].Kind)
	s.Equal("declined@example.com", messages[0].Recipient)
	s.Equal("incomplete portfolio", messages[0].Reason)
}

func (s *EnrollmentSuite) TestRejectIsPureApplicationTransition() {
	ctx := context.Background()
	app := s.newApplication("untouched@example.com")

	_, err := s.svc.Reject(ctx, RejectRequest{ApplicationID: app.ID})
	s.Require().NoError(err)

	_, perr := s.db.Profiles().FindByID(ctx, app.ID)
	s.Error(perr, "rejection must not create a profile")
	_, serr := s.db.Students().FindByID(ctx, app.ID)
	s.Error(serr, "rejection must not create a student")
}

func (s *EnrollmentSuite) TestRejectTerminalStates() {
	ctx := context.Background()

	approved := s.newApplication("approved.then.rejected@example.com")
	_, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: approved.ID})
	s.Require().NoError(err)

	_, err = s.svc.Reject(ctx, RejectRequest{ApplicationID: approved.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyApproved))

	rejected := s.newApplication("rejected.twice@example.com")
	_, err = s.svc.Reject(ctx, RejectRequest{ApplicationID: rejected.ID})
	s.Require().NoError(err)

	_, err = s.svc.Reject(ctx, RejectRequest{ApplicationID: rejected.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRejected))
}

func (s *EnrollmentSuite) TestRejectUnknownApplication() {
	_, err := s.svc.Reject(context.Background(), RejectRequest{ApplicationID: id.StudentID(uuid.New())})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EnrollmentSuite) TestRejectNotificationFailureIsData() {
	ctx := context.Background()
	s.sender.FailWith("mailbox full")

	app := s.newApplication("nomail.reject@example.com")
	result, err := s.svc.Reject(ctx, RejectRequest{ApplicationID: app.ID})
	s.Require().NoError(err)
	s.False(result.EmailSent)
	s.Equal("mailbox full", result.EmailError)

	stored, ferr := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(ferr)
	s.Equal(models.ApplicationStatusRejected, stored.Status)
}
