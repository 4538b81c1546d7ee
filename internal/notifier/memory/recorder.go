// Package memory provides a recording notifier for tests.
package memory

import (
	"context"
	"sync"

	"academy/internal/notifier"
)

// Recorder captures every message it is asked to send. A configurable
// failure lets tests exercise the saga's notification isolation.
type Recorder struct {
	mu       sync.Mutex
	messages []notifier.Message
	failWith string
}

var _ notifier.Notifier = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes every subsequent Send report the given error string.
func (r *Recorder) FailWith(errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = errMsg
}

func (r *Recorder) Send(_ context.Context, msg notifier.Message) notifier.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	if r.failWith != "" {
		return notifier.Result{Sent: false, Error: r.failWith}
	}
	return notifier.Result{Sent: true}
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []notifier.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifier.Message{}, r.messages...)
}
