package service

import (
	"context"

	"github.com/google/uuid"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/secrets"
)

func (s *EnrollmentSuite) TestPasswordSetupActivatesProfile() {
	ctx := context.Background()
	app := s.newApplication("setup@example.com")
	result, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err)
	s.True(result.NeedsPasswordSetup)

	s.Require().NoError(s.svc.CompletePasswordSetup(ctx, result.ProfileID, "correct horse battery"))

	profile, err := s.db.Profiles().FindByID(ctx, result.ProfileID)
	s.Require().NoError(err)
	s.Equal(models.ProfileStatusActive, profile.Status)
	s.True(profile.HasPassword())
	s.True(secrets.Compare(profile.PasswordHash, "correct horse battery"))
}

func (s *EnrollmentSuite) TestPasswordSetupRejectsShortPassword() {
	err := s.svc.CompletePasswordSetup(context.Background(), id.StudentID(uuid.New()), "short")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *EnrollmentSuite) TestPasswordSetupUnknownProfile() {
	err := s.svc.CompletePasswordSetup(context.Background(), id.StudentID(uuid.New()), "long enough pass")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EnrollmentSuite) TestPasswordSetupOnlyOnce() {
	ctx := context.Background()
	app := s.newApplication("once@example.com")
	result, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.CompletePasswordSetup(ctx, result.ProfileID, "first password!"))
	err = s.svc.CompletePasswordSetup(ctx, result.ProfileID, "second password!")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
