package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOperation(t *testing.T) {
	m := New()

	m.RecordOperation("start", ResultOK, 5*time.Millisecond)
	m.RecordOperation("start", ResultOK, 3*time.Millisecond)
	m.RecordOperation("plan", ResultFailed, time.Millisecond)
	m.RecordOperation("bogus", ResultUnknown, 0)

	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("start", ResultOK)); got != 2 {
		t.Errorf("start/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("plan", ResultFailed)); got != 1 {
		t.Errorf("plan/failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("bogus", ResultUnknown)); got != 1 {
		t.Errorf("bogus/unknown = %v, want 1", got)
	}

	// Unknown operations are counted but not timed.
	if n := testutil.CollectAndCount(m.operationDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestRecordWizardFinished(t *testing.T) {
	m := New()
	m.RecordWizardFinished()
	if got := testutil.ToFloat64(m.wizardFinished); got != 1 {
		t.Errorf("documents_generated_total = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordOperation("status", ResultOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `taskmcp_dispatcher_operations_total{operation="status",result="ok"} 1`) {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}

func TestServe(t *testing.T) {
	m := New()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected Go runtime metrics")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
