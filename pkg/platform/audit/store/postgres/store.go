// Package postgres implements audit.Store using a transactional outbox.
// Events are written to the outbox table and published to Kafka by the relay
// worker; Kafka is the source of truth for audit events.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "academy/pkg/domain"
	"academy/pkg/platform/audit"
)

type Store struct {
	db *sql.DB
}

var _ audit.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for deserialization by the consumer.
type outboxPayload struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Timestamp string `json:"Timestamp"`
	StudentID string `json:"StudentID,omitempty"`
	Subject   string `json:"Subject"`
	Action    string `json:"Action"`
	Reason    string `json:"Reason,omitempty"`
	Email     string `json:"Email,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ActorID   string `json:"ActorID,omitempty"`
	Device    string `json:"Device,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	payload := outboxPayload{
		ID:        eventID.String(),
		Category:  string(audit.AuditEvent(event.Action).Category()),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Reason:    event.Reason,
		Email:     event.Email,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
		Device:    event.Device,
	}
	if !event.StudentID.IsNil() {
		payload.StudentID = event.StudentID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.StudentID.IsNil() {
		aggregateType = "student"
		aggregateID = event.StudentID.String()
	}

	query := `
		INSERT INTO audit_outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(ctx, query,
		eventID, aggregateType, aggregateID, event.Action, payloadBytes, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}

// ListByStudent reads back outbox rows for one student. Mostly useful for
// operator tooling; the canonical event log lives in Kafka.
func (s *Store) ListByStudent(ctx context.Context, studentID id.StudentID) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM audit_outbox
		WHERE aggregate_type = 'student' AND aggregate_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, studentID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit outbox: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit outbox: %w", err)
		}
		var p outboxPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode audit outbox: %w", err)
		}
		event := audit.Event{
			Category:  audit.EventCategory(p.Category),
			Subject:   p.Subject,
			Action:    p.Action,
			Reason:    p.Reason,
			Email:     p.Email,
			RequestID: p.RequestID,
			ActorID:   p.ActorID,
			Device:    p.Device,
		}
		if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
			event.Timestamp = ts
		}
		if p.StudentID != "" {
			if sid, err := id.ParseStudentID(p.StudentID); err == nil {
				event.StudentID = sid
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
