// Package notifier is the best-effort notification boundary. Send returns a
// Result value and never an error: delivery failures are data, so the
// enrollment saga can treat them as non-fatal by construction.
package notifier

import (
	"context"
	"log/slog"
)

// Kind selects the message template on the consuming side.
type Kind string

const (
	KindApplicationApproved Kind = "application_approved"
	KindApplicationRejected Kind = "application_rejected"
)

// Message is the notification request handed to the sender.
type Message struct {
	Kind               Kind
	Recipient          string
	StudentName        string
	CohortName         string
	NeedsPasswordSetup bool
	Reason             string
}

// Result reports the outcome of a send attempt. Error is a plain string so
// the result can travel through API responses unchanged.
type Result struct {
	Sent  bool
	Error string
}

// Failure builds a failed Result from an error.
func Failure(err error) Result {
	return Result{Sent: false, Error: err.Error()}
}

// Notifier is any service that can attempt a notification delivery.
type Notifier interface {
	Send(ctx context.Context, msg Message) Result
}

// LogNotifier writes notifications to the process log. Used in development
// when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) Result {
	n.logger.InfoContext(ctx, "notification (log sink)",
		"kind", string(msg.Kind),
		"recipient", msg.Recipient,
		"student_name", msg.StudentName,
		"cohort_name", msg.CohortName,
		"needs_password_setup", msg.NeedsPasswordSetup,
	)
	return Result{Sent: true}
}
