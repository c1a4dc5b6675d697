package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/krbank/backoffice/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	DomainEvents    *prometheus.CounterVec
	GuardRejections *prometheus.CounterVec
	AccountsOpened  *prometheus.CounterVec
	LoginFailures   prometheus.Counter
}

// New creates and registers all metrics on a fresh registry. Each instance
// owns its registry so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DomainEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_domain_events_total",
			Help: "Domain events consumed from the event streams, by type",
		}, []string{"type"}),
		GuardRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_referential_guard_rejections_total",
			Help: "Deletions refused because dependents still exist, by entity",
		}, []string{"entity"}),
		AccountsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_accounts_opened_total",
			Help: "Accounts opened, by account type",
		}, []string{"account_type"}),
		LoginFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_login_failures_total",
			Help: "Rejected login attempts",
		}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementGuardRejection(entity string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(entity).Inc()
}

func (m *Metrics) IncrementLoginFailures() {
	if m == nil {
		return
	}
	m.LoginFailures.Inc()
}

// HandleEvent is an events.Handler that counts consumed domain events.
func (m *Metrics) HandleEvent(_ context.Context, event events.Event) error {
	if m == nil {
		return nil
	}
	m.DomainEvents.WithLabelValues(event.Type).Inc()
	if event.Type == events.AccountCreated {
		if data, ok := event.Data.(map[string]any); ok {
			if accountType, ok := data["accountType"].(string); ok {
				m.AccountsOpened.WithLabelValues(accountType).Inc()
			}
		}
	}
	return nil
}
