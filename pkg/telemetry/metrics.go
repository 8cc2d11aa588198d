package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Wait outcome labels recorded by RecordWaitCompleted.
const (
	WaitOutcomeSuccess       = "success"
	WaitOutcomeTerminalState = "terminal_state"
	WaitOutcomeTimeout       = "timeout"
	WaitOutcomeRefreshError  = "refresh_error"
)

// Metrics provides Prometheus metrics for Skybridge. The zero value is a
// no-op collector.
type Metrics struct {
	config MetricsConfig

	// Wait metrics
	waitsStarted   *prometheus.CounterVec
	waitsCompleted *prometheus.CounterVec
	waitDuration   *prometheus.HistogramVec
	waitPolls      *prometheus.CounterVec

	// Pagination metrics
	pagesFetched *prometheus.CounterVec
	itemsYielded *prometheus.CounterVec

	// Provider metrics
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	providerErrors   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		waitsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "waits_started_total",
				Help:      "Total number of resource state waits started",
			},
			[]string{"resource_type"},
		),
		waitsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "waits_completed_total",
				Help:      "Total number of resource state waits completed",
			},
			[]string{"resource_type", "outcome"},
		),
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wait_duration_seconds",
				Help:      "Duration of resource state waits in seconds",
				Buckets:   buckets,
			},
			[]string{"resource_type", "outcome"},
		),
		waitPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wait_polls_total",
				Help:      "Total number of refresh polls performed by waits",
			},
			[]string{"resource_type"},
		),

		pagesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_fetched_total",
				Help:      "Total number of list pages fetched",
			},
			[]string{"provider", "service"},
		),
		itemsYielded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_yielded_total",
				Help:      "Total number of list items returned",
			},
			[]string{"provider", "service"},
		),

		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of provider calls",
			},
			[]string{"provider", "operation"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Duration of provider calls in seconds",
				Buckets:   buckets,
			},
			[]string{"provider", "operation"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of provider errors",
			},
			[]string{"provider", "operation"},
		),
	}

	registry.MustRegister(
		m.waitsStarted,
		m.waitsCompleted,
		m.waitDuration,
		m.waitPolls,
		m.pagesFetched,
		m.itemsYielded,
		m.providerCalls,
		m.providerDuration,
		m.providerErrors,
	)

	return m, nil
}

// RecordWaitStarted increments the counter for started waits.
func (m *Metrics) RecordWaitStarted(resourceType string) {
	if m.waitsStarted == nil {
		return
	}
	m.waitsStarted.WithLabelValues(resourceType).Inc()
}

// RecordWaitCompleted records a completed wait with its outcome and duration.
func (m *Metrics) RecordWaitCompleted(resourceType, outcome string, duration time.Duration) {
	if m.waitsCompleted == nil {
		return
	}
	m.waitsCompleted.WithLabelValues(resourceType, outcome).Inc()
	m.waitDuration.WithLabelValues(resourceType, outcome).Observe(duration.Seconds())
}

// RecordWaitPolls adds to the refresh poll counter for a wait.
func (m *Metrics) RecordWaitPolls(resourceType string, polls int) {
	if m.waitPolls == nil {
		return
	}
	m.waitPolls.WithLabelValues(resourceType).Add(float64(polls))
}

// RecordPageFetched records one fetched list page and its item count.
func (m *Metrics) RecordPageFetched(provider, service string, items int) {
	if m.pagesFetched == nil {
		return
	}
	m.pagesFetched.WithLabelValues(provider, service).Inc()
	m.itemsYielded.WithLabelValues(provider, service).Add(float64(items))
}

// RecordProviderCall records a provider call with its duration.
func (m *Metrics) RecordProviderCall(provider, operation string, duration time.Duration) {
	if m.providerCalls == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, operation).Inc()
	m.providerDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordProviderError records a provider error.
func (m *Metrics) RecordProviderError(provider, operation string) {
	if m.providerErrors == nil {
		return
	}
	m.providerErrors.WithLabelValues(provider, operation).Inc()
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	return nil
}
