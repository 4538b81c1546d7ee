// Package publisher decouples audit emission from persistence. In sync mode
// Emit writes through to the store; with an async buffer events are handed to
// a background goroutine and dropped (with a count available to metrics) when
// the buffer is full — audit must never block the approval path.
package publisher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	id "academy/pkg/domain"
	"academy/pkg/platform/audit"
)

type Publisher struct {
	store audit.Store

	inbox   chan audit.Event
	done    chan struct{}
	closer  sync.Once
	dropped atomic.Int64
}

type Option func(p *Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an event. Missing timestamps and categories are filled in
// here so call sites stay terse.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
	default:
		p.dropped.Add(1)
	}
	return nil
}

// List exposes the underlying store's per-student view.
func (p *Publisher) List(ctx context.Context, studentID id.StudentID) ([]audit.Event, error) {
	return p.store.ListByStudent(ctx, studentID)
}

// Dropped reports how many events were discarded due to a full buffer.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close drains any buffered events and stops the background goroutine.
func (p *Publisher) Close() {
	p.closer.Do(func() {
		if p.inbox == nil {
			close(p.done)
			return
		}
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		// Persistence failures here are unrecoverable by the caller; the
		// store is responsible for its own logging.
		_ = p.store.Append(context.Background(), event)
	}
}
