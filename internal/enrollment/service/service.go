// Package service implements the enrollment workflow: approving and rejecting
// applications, and the forward-only saga that fans an approval out across the
// five independently stored records (application, profile, student, cohort
// membership, chapter access).
//
// Every write touches exactly one record. There are no multi-record
// transactions and no rollbacks; each step is idempotent on lookup, so a
// failed approval is retried from the start and completed steps are detected
// and skipped.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"academy/internal/enrollment/metrics"
	"academy/internal/enrollment/models"
	"academy/internal/notifier"
	"academy/pkg/attrs"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
	"academy/pkg/requestcontext"
)

// ApplicationStore is the persistence needed for application records.
type ApplicationStore interface {
	FindByID(ctx context.Context, applicationID id.StudentID) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
}

// ProfileStore is the persistence needed for profile records.
type ProfileStore interface {
	FindByID(ctx context.Context, profileID id.StudentID) (*models.Profile, error)
	FindByEmail(ctx context.Context, address string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

// StudentStore is the persistence needed for student records.
type StudentStore interface {
	FindByID(ctx context.Context, studentID id.StudentID) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

// CohortStore is the read access needed for cohort records.
type CohortStore interface {
	FindByID(ctx context.Context, cohortID id.CohortID) (*models.Cohort, error)
}

// EnrollmentStore is the persistence needed for cohort membership rows.
type EnrollmentStore interface {
	Find(ctx context.Context, cohortID id.CohortID, studentID id.StudentID) (*models.CohortEnrollment, error)
	Create(ctx context.Context, enrollment *models.CohortEnrollment) error
	CountByCohort(ctx context.Context, cohortID id.CohortID) (int, error)
}

// ChapterProgressStore is the persistence needed for chapter unlock rows.
type ChapterProgressStore interface {
	Find(ctx context.Context, studentID id.StudentID, chapter int) (*models.ChapterProgress, error)
	Create(ctx context.Context, progress *models.ChapterProgress) error
}

// Stores bundles the per-record stores the service operates on.
type Stores struct {
	Applications ApplicationStore
	Profiles     ProfileStore
	Students     StudentStore
	Cohorts      CohortStore
	Enrollments  EnrollmentStore
	Chapters     ChapterProgressStore
}

// AuditPublisher records audit events emitted by the workflow.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CohortNameCache is a best-effort cache for cohort display names used in
// notifications. Misses and errors both surface as a miss.
type CohortNameCache interface {
	Get(ctx context.Context, cohortID id.CohortID) (string, bool)
	Set(ctx context.Context, cohortID id.CohortID, name string)
}

// Config carries the policy knobs of the workflow.
type Config struct {
	// VerificationCutoff grandfathers profiles created before it: they pass
	// the email-verification gate without a verified address.
	VerificationCutoff time.Time
	// EnforceCohortCapacity rejects approvals into full cohorts. Off by
	// default: capacity is computed and logged either way.
	EnforceCohortCapacity bool
}

// Service orchestrates the enrollment workflow.
type Service struct {
	cfg     Config
	stores  Stores
	sender  notifier.Notifier
	logger  *slog.Logger
	audit   AuditPublisher
	metrics *metrics.Metrics
	cache   CohortNameCache
	tracer  trace.Tracer
}

// Option configures optional Service dependencies.
type Option func(s *Service)

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAuditPublisher enables audit event emission.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithMetrics enables metrics collection.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCohortNameCache enables the cohort display-name cache.
func WithCohortNameCache(cache CohortNameCache) Option {
	return func(s *Service) { s.cache = cache }
}

// New creates the enrollment service. The notifier is required because
// notification outcomes are part of every decision's result.
func New(cfg Config, stores Stores, sender notifier.Notifier, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg,
		stores: stores,
		sender: sender,
		logger: slog.Default(),
		tracer: otel.Tracer("academy/enrollment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetApplication returns one application for admin review.
func (s *Service) GetApplication(ctx context.Context, applicationID id.StudentID) (*models.Application, error) {
	app, err := s.stores.Applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

// step runs one saga step inside its own span so partial failures are visible
// per step in traces.
func (s *Service) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	return nil
}

// logAudit writes a structured audit log line and, when a publisher is
// configured, emits the corresponding audit event.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, studentID id.StudentID, attributes ...any) {
	args := append(attributes, "event", string(event), "log_type", "audit")
	if !studentID.IsNil() {
		args = append(args, "student_id", studentID.String())
	}
	s.logger.InfoContext(ctx, string(event), args...)

	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		StudentID: studentID,
		Subject:   attrs.ExtractString(attributes, "subject"),
		Action:    string(event),
		Reason:    attrs.ExtractString(attributes, "reason"),
		Email:     attrs.ExtractString(attributes, "email"),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   requestcontext.ActorID(ctx),
		Device:    requestcontext.Device(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", string(event), "error", err)
	}
}
