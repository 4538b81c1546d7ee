// Package audit records the administrative actions of the enrollment
// workflow. Events are emitted from domain logic, kept transport-agnostic,
// and fanned out by stores and sinks.
package audit

import (
	"context"
	"time"

	id "academy/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// enrollment decisions about a person. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	StudentID id.StudentID
	Subject   string
	Action    string
	Reason    string
	Email     string
	// RequestID is the correlation id from the HTTP request context.
	RequestID string
	// ActorID is the admin performing the action, distinct from the student
	// the action is about.
	ActorID string
	// Device is a human-readable description of the actor's client.
	Device string
}

type AuditEvent string

const (
	EventApplicationApproved   AuditEvent = "application_approved"
	EventApplicationRejected   AuditEvent = "application_rejected"
	EventProfileCreated        AuditEvent = "profile_created"
	EventStudentEnrolled       AuditEvent = "student_enrolled"
	EventChapterUnlocked       AuditEvent = "chapter_unlocked"
	EventPasswordSetupComplete AuditEvent = "password_setup_completed"
)

var eventCategories = map[AuditEvent]EventCategory{
	// Decisions about a person are compliance-grade.
	EventApplicationApproved: CategoryCompliance,
	EventApplicationRejected: CategoryCompliance,
	EventProfileCreated:      CategoryCompliance,

	// Routine side effects of a decision.
	EventStudentEnrolled:       CategoryOperations,
	EventChapterUnlocked:       CategoryOperations,
	EventPasswordSetupComplete: CategoryOperations,
}

// Category returns the category for the event, defaulting to operations for
// unknown actions.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// Store is any sink that can persist audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByStudent(ctx context.Context, studentID id.StudentID) ([]Event, error)
}
