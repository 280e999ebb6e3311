package mailer

import (
	"context"
	"sync"
)

// Recorder is an in-memory Mailer that keeps every message it is asked to send.
// Setting Err makes every Send fail with it.
type Recorder struct {
	mu       sync.Mutex
	messages []*Message
	Err      error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(_ context.Context, msg *Message) error {
	if r.Err != nil {
		return r.Err
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns the messages sent so far.
func (r *Recorder) Messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Message, len(r.messages))
	copy(out, r.messages)
	return out
}
