// Package metrics exposes Prometheus metrics for quiz generation and
// backend calls.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eslquiz/quizgen/internal/llm"
	"github.com/eslquiz/quizgen/internal/quizgen"
)

const namespace = "quizgen"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	generations    *prometheus.CounterVec
	repairAttempts *prometheus.HistogramVec
	duration       *prometheus.HistogramVec
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Quiz generations by modality, status and fault kind.",
		}, []string{"modality", "status", "fault"}),
		repairAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repair_attempts",
			Help:      "Repair attempts made per generation.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8},
		}, []string{"modality"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "End-to-end generation latency.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160, 320, 600},
		}, []string{"modality", "status"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Backend calls by provider, purpose and result.",
		}, []string{"provider", "purpose", "result"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Latency of single backend calls.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"provider", "purpose"}),
	}

	m.registry.MustRegister(
		m.generations,
		m.repairAttempts,
		m.duration,
		m.backendCalls,
		m.backendLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveGeneration implements quizgen.Observer.
func (m *Metrics) ObserveGeneration(_ context.Context, r quizgen.Report) {
	modality := string(r.Modality)
	fault := string(r.Fault)
	if fault == "" {
		fault = "none"
	}
	m.generations.WithLabelValues(modality, string(r.Status), fault).Inc()
	m.repairAttempts.WithLabelValues(modality).Observe(float64(r.RepairAttempts))
	m.duration.WithLabelValues(modality, string(r.Status)).Observe(r.Duration.Seconds())
}

// InstrumentProvider wraps p so every backend call is counted and timed.
func (m *Metrics) InstrumentProvider(p llm.Provider, provider string) llm.Provider {
	return &instrumentedProvider{inner: p, provider: provider, m: m}
}

type instrumentedProvider struct {
	inner    llm.Provider
	provider string
	m        *Metrics
}

func (ip *instrumentedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	purpose := llm.PurposeFrom(ctx)
	start := time.Now()
	resp, err := ip.inner.Generate(ctx, req)
	ip.m.backendLatency.WithLabelValues(ip.provider, purpose).Observe(time.Since(start).Seconds())
	ip.m.backendCalls.WithLabelValues(ip.provider, purpose, callResult(err)).Inc()
	return resp, err
}

func (ip *instrumentedProvider) ModelID() string {
	return ip.inner.ModelID()
}

// callResult buckets a backend error into a low-cardinality label.
func callResult(err error) string {
	var (
		rateLimit *llm.ErrRateLimit
		empty     *llm.ErrEmptyResponse
		rejected  *llm.ErrRequestRejected
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rateLimit):
		return "rate_limited"
	case errors.As(err, &empty):
		return "empty"
	case errors.As(err, &rejected):
		return "rejected"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "error"
}
