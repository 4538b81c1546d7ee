// Package handler exposes the enrollment workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"academy/internal/enrollment/models"
	"academy/internal/enrollment/service"
	id "academy/pkg/domain"
	"academy/pkg/platform/httputil"
	"academy/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service.go -package=mocks

// Service is the workflow surface the handler depends on.
type Service interface {
	Approve(ctx context.Context, req service.ApproveRequest) (service.ApproveResult, error)
	Reject(ctx context.Context, req service.RejectRequest) (service.RejectResult, error)
	GetApplication(ctx context.Context, applicationID id.StudentID) (*models.Application, error)
	CompletePasswordSetup(ctx context.Context, profileID id.StudentID, password string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

type Option func(h *Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

func New(svc Service, opts ...Option) *Handler {
	h := &Handler{service: svc, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the enrollment routes. requireAdmin guards the admin
// surface; password setup is reached by the applicant before they can
// authenticate, so it stays outside the guard.
func (h *Handler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/admin/applications", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/{id}", h.getApplication)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
	})
	r.Post("/auth/password-setup", h.passwordSetup)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseStudentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body approveRequest
	if err := decodeOptional(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	approvedBy := body.ApprovedBy
	if approvedBy == "" {
		approvedBy = requestcontext.ActorID(r.Context())
	}

	result, err := h.service.Approve(r.Context(), service.ApproveRequest{
		ApplicationID: applicationID,
		ApprovedBy:    approvedBy,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "approval failed",
			"application_id", applicationID.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newApproveResponse(result))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseStudentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body rejectRequest
	if err := decodeOptional(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Reject(r.Context(), service.RejectRequest{
		ApplicationID: applicationID,
		Reason:        body.RejectedReason,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "rejection failed",
			"application_id", applicationID.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rejectResponse{
		Success:    true,
		EmailSent:  result.EmailSent,
		EmailError: result.EmailError,
	})
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseStudentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.GetApplication(r.Context(), applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newApplicationResponse(app))
}

func (h *Handler) passwordSetup(w http.ResponseWriter, r *http.Request) {
	var body passwordSetupRequest
	if err := decode(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	profileID, err := id.ParseStudentID(body.ProfileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CompletePasswordSetup(r.Context(), profileID, body.Password); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
