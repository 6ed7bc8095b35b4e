package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recordingSink) Publish(_ context.Context, u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func TestSession_Lifecycle(t *testing.T) {
	tr := NewTracker()
	sink := &recordingSink{}
	ctx := context.Background()

	if tr.Busy() {
		t.Fatal("new tracker should be idle")
	}

	s, err := tr.Begin(ctx, "start", sink)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if s.ID == "" || s.Operation != "start" {
		t.Errorf("session = %+v", s)
	}
	if !tr.Busy() || tr.Active() != s {
		t.Error("tracker should report the open session")
	}

	if err := s.Publish(ctx, "working"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if s.Latest() != "working" {
		t.Errorf("Latest() = %q", s.Latest())
	}

	s.End(ctx, "done")
	if s.Latest() != "done" {
		t.Errorf("Latest() after End = %q", s.Latest())
	}
	if tr.Busy() {
		t.Error("tracker should be idle after End")
	}

	if err := s.Publish(ctx, "late"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Publish after End error = %v, want ErrSessionClosed", err)
	}
	s.End(ctx, "again") // no-op

	if len(sink.updates) != 2 {
		t.Fatalf("sink got %d updates, want 2", len(sink.updates))
	}
	first, last := sink.updates[0], sink.updates[1]
	if first.Message != "working" || first.Step != 1 || first.Final {
		t.Errorf("first update = %+v", first)
	}
	if last.Message != "done" || last.Step != 2 || !last.Final || last.SessionID != s.ID {
		t.Errorf("last update = %+v", last)
	}
}

func TestTracker_SingleFlight(t *testing.T) {
	tr := NewTracker()
	ctx := context.Background()

	first, err := tr.Begin(ctx, "plan", nil)
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan *Session)
	go func() {
		s, err := tr.Begin(ctx, "status", nil)
		if err != nil {
			t.Errorf("second Begin() error = %v", err)
		}
		acquired <- s
	}()

	select {
	case <-acquired:
		t.Fatal("second session opened while the first is active")
	case <-time.After(20 * time.Millisecond):
	}

	first.End(ctx, "ok")

	select {
	case s := <-acquired:
		if s.Operation != "status" || tr.Active() != s {
			t.Errorf("second session = %+v", s)
		}
		s.End(ctx, "ok")
	case <-time.After(time.Second):
		t.Fatal("second session never opened")
	}
}

func TestTracker_BeginCancelled(t *testing.T) {
	tr := NewTracker()
	held, err := tr.Begin(context.Background(), "start", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer held.End(context.Background(), "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := tr.Begin(ctx, "plan", nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Begin() error = %v, want DeadlineExceeded", err)
	}
	if tr.Active() != held {
		t.Error("failed Begin must not replace the active session")
	}
}

func TestSinkFunc(t *testing.T) {
	var got Update
	f := SinkFunc(func(_ context.Context, u Update) { got = u })
	f.Publish(context.Background(), Update{Message: "hi"})
	if got.Message != "hi" {
		t.Errorf("SinkFunc did not forward update: %+v", got)
	}
}

func TestSession_UniqueIDs(t *testing.T) {
	tr := NewTracker()
	ctx := context.Background()
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		s, err := tr.Begin(ctx, "status", nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate session ID %s", s.ID)
		}
		seen[s.ID] = true
		if s.Elapsed() < 0 {
			t.Error("Elapsed() negative")
		}
		s.End(ctx, "")
	}
}
