package handler

import (
	"time"

	"academy/internal/enrollment/models"
	"academy/internal/enrollment/service"
)

// approveResponse is the success envelope of the approve endpoint. EmailSent
// and EmailError report the best-effort notification separately from the
// approval outcome so clients can distinguish "approved, mail failed" from
// "not approved".
type approveResponse struct {
	Success            bool   `json:"success"`
	ProfileID          string `json:"profileId"`
	IsExistingProfile  bool   `json:"isExistingProfile"`
	NeedsPasswordSetup bool   `json:"needsPasswordSetup"`
	EmailSent          bool   `json:"emailSent"`
	EmailError         string `json:"emailError,omitempty"`
}

func newApproveResponse(result service.ApproveResult) approveResponse {
	return approveResponse{
		Success:            true,
		ProfileID:          result.ProfileID.String(),
		IsExistingProfile:  result.IsExistingProfile,
		NeedsPasswordSetup: result.NeedsPasswordSetup,
		EmailSent:          result.EmailSent,
		EmailError:         result.EmailError,
	}
}

type rejectResponse struct {
	Success    bool   `json:"success"`
	EmailSent  bool   `json:"emailSent"`
	EmailError string `json:"emailError,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// applicationResponse is the admin review view of an application.
type applicationResponse struct {
	ID                string     `json:"id"`
	FullName          string     `json:"fullName"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone,omitempty"`
	Country           string     `json:"country,omitempty"`
	City              string     `json:"city,omitempty"`
	PreferredCohortID string     `json:"preferredCohortId,omitempty"`
	Status            string     `json:"status"`
	ProfileID         string     `json:"profileId,omitempty"`
	ApprovedBy        string     `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	RejectedReason    string     `json:"rejectedReason,omitempty"`
	RejectedAt        *time.Time `json:"rejectedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func newApplicationResponse(app *models.Application) applicationResponse {
	resp := applicationResponse{
		ID:             app.ID.String(),
		FullName:       app.FullName,
		Email:          app.Email,
		Phone:          app.Phone,
		Country:        app.Country,
		City:           app.City,
		Status:         string(app.Status),
		ApprovedBy:     app.ApprovedBy,
		ApprovedAt:     app.ApprovedAt,
		RejectedReason: app.RejectedReason,
		RejectedAt:     app.RejectedAt,
		CreatedAt:      app.CreatedAt,
	}
	if app.PreferredCohortID != nil {
		resp.PreferredCohortID = app.PreferredCohortID.String()
	}
	if app.ProfileID != nil {
		resp.ProfileID = app.ProfileID.String()
	}
	return resp
}
