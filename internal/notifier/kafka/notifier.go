// Package kafka publishes notification requests to a topic consumed by the
// mailer service. Delivery to the broker is synchronous so the caller learns
// immediately whether the request was accepted; delivery to the inbox is the
// mailer's problem.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"academy/internal/notifier"
	"academy/pkg/email"
)

// Notifier produces notification messages with franz-go.
type Notifier struct {
	client *kgo.Client
	topic  string
}

var _ notifier.Notifier = (*Notifier)(nil)

// payload is the wire format consumed by the mailer.
type payload struct {
	Kind               string    `json:"kind"`
	Recipient          string    `json:"recipient"`
	StudentName        string    `json:"student_name"`
	CohortName         string    `json:"cohort_name,omitempty"`
	NeedsPasswordSetup bool      `json:"needs_password_setup"`
	Reason             string    `json:"reason,omitempty"`
	RequestedAt        time.Time `json:"requested_at"`
}

// New connects to the brokers and ensures the topic exists. Topic creation is
// idempotent; an already-exists response is not an error.
func New(brokers []string, topic string) (*Notifier, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka notifier: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, -1, nil, topic); err != nil {
		// Topic may already exist; only a dead broker set is fatal here.
		if pingErr := client.Ping(ctx); pingErr != nil {
			client.Close()
			return nil, fmt.Errorf("kafka notifier: %w", pingErr)
		}
	}

	return &Notifier{client: client, topic: topic}, nil
}

func (n *Notifier) Send(ctx context.Context, msg notifier.Message) notifier.Result {
	if !email.Valid(msg.Recipient) {
		return notifier.Result{Sent: false, Error: fmt.Sprintf("invalid recipient address %q", msg.Recipient)}
	}

	value, err := json.Marshal(payload{
		Kind:               string(msg.Kind),
		Recipient:          msg.Recipient,
		StudentName:        msg.StudentName,
		CohortName:         msg.CohortName,
		NeedsPasswordSetup: msg.NeedsPasswordSetup,
		Reason:             msg.Reason,
		RequestedAt:        time.Now().UTC(),
	})
	if err != nil {
		return notifier.Failure(err)
	}

	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(msg.Recipient),
		Value: value,
	}
	if err := n.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return notifier.Failure(err)
	}
	return notifier.Result{Sent: true}
}

func (n *Notifier) Close() {
	n.client.Close()
}
