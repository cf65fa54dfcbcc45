// Package mailertest provides a recording Mailer for tests.
package mailertest

import (
	"context"
	"sync"

	"coursehub/backend/mailer"
)

type Recorder struct {
	mu   sync.Mutex
	Sent []mailer.Message
	Err  error
}

func (r *Recorder) Send(ctx context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, msg)
	return nil
}

// Last returns the most recent message, or false when nothing was sent.
func (r *Recorder) Last() (mailer.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return mailer.Message{}, false
	}
	return r.Sent[len(r.Sent)-1], true
}
