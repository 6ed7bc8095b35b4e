// Package metrics records Prometheus metrics for dispatched operations and
// optionally serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Operation outcomes used as the "result" label.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultUnknown = "unknown"
)

// Metrics holds the task manager collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	wizardFinished    prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskmcp",
				Subsystem: "dispatcher",
				Name:      "operations_total",
				Help:      "Total number of dispatched operations by name and result",
			},
			[]string{"operation", "result"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "taskmcp",
				Subsystem: "dispatcher",
				Name:      "operation_duration_seconds",
				Help:      "Duration of dispatched operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
			[]string{"operation"},
		),
		wizardFinished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "taskmcp",
				Subsystem: "wizard",
				Name:      "documents_generated_total",
				Help:      "Number of completed wizard sessions that rendered documents",
			},
		),
	}

	m.registry.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.wizardFinished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordOperation counts one dispatch and observes its duration.
func (m *Metrics) RecordOperation(operation, result string, duration time.Duration) {
	m.operationsTotal.WithLabelValues(operation, result).Inc()
	if result != ResultUnknown {
		m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordWizardFinished counts a wizard session that produced documents.
func (m *Metrics) RecordWizardFinished() {
	m.wizardFinished.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.serve(ctx, ln)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx) //nolint:errcheck // best effort on exit
	}()

	zerolog.Ctx(ctx).Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
