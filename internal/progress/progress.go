// Package progress tracks the single operation in flight and publishes its
// status messages. A Tracker hands out one Session at a time; the session
// carries the latest output and lives exactly as long as one operation.
package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionClosed is returned when publishing to an ended session.
var ErrSessionClosed = errors.New("progress session closed")

// Update is one published status message.
type Update struct {
	SessionID string
	Operation string
	Message   string
	Step      int
	Final     bool
}

// Sink receives session updates, e.g. to forward them to a client.
type Sink interface {
	Publish(ctx context.Context, u Update)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, u Update)

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, u Update) { f(ctx, u) }

// Tracker allows one Session at a time.
type Tracker struct {
	slot chan struct{}

	mu     sync.Mutex
	active *Session
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{slot: make(chan struct{}, 1)}
}

// Begin waits for the slot and opens a session for op. sink may be nil.
// It returns ctx.Err() if the context ends first.
func (t *Tracker) Begin(ctx context.Context, op string, sink Sink) (*Session, error) {
	select {
	case t.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s := &Session{
		ID:        uuid.NewString(),
		Operation: op,
		Started:   time.Now(),
		sink:      sink,
		tracker:   t,
	}

	t.mu.Lock()
	t.active = s
	t.mu.Unlock()

	return s, nil
}

// Busy reports whether a session is open.
func (t *Tracker) Busy() bool {
	return t.Active() != nil
}

// Active returns the open session, or nil.
func (t *Tracker) Active() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) release(s *Session) {
	t.mu.Lock()
	if t.active == s {
		t.active = nil
	}
	t.mu.Unlock()
	<-t.slot
}

// Session is one operation's progress channel.
type Session struct {
	ID        string
	Operation string
	Started   time.Time

	sink    Sink
	tracker *Tracker

	mu     sync.Mutex
	latest string
	step   int
	closed bool
}

// Publish records msg as the latest output and forwards it to the sink.
func (s *Session) Publish(ctx context.Context, msg string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.step++
	s.latest = msg
	u := s.update(msg, false)
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Publish(ctx, u)
	}
	return nil
}

// Latest returns the most recent message.
func (s *Session) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Elapsed returns the time since the session began.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.Started)
}

// End publishes final, closes the session and frees the tracker slot.
// Calling End more than once has no effect.
func (s *Session) End(ctx context.Context, final string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.step++
	s.latest = final
	u := s.update(final, true)
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Publish(ctx, u)
	}
	s.tracker.release(s)
}

func (s *Session) update(msg string, final bool) Update {
	return Update{
		SessionID: s.ID,
		Operation: s.Operation,
		Message:   msg,
		Step:      s.step,
		Final:     final,
	}
}
