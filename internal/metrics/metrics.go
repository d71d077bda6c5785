// Package metrics описывает метрики Prometheus сервиса пользователей.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "user_service"

// Результаты попытки входа.
const (
	LoginSuccess     = "success"
	LoginInvalid     = "invalid_credentials"
	LoginInactive    = "inactive"
	LoginRateLimited = "rate_limited"
	LoginError       = "error"
)

// Metrics набор метрик одного экземпляра сервиса со своим реестром.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	LoginAttempts   *prometheus.CounterVec
	Registrations   prometheus.Counter
	CacheLookups    *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

// New создаёт реестр с метриками процесса и Go runtime и регистрирует метрики сервиса.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Successfully registered accounts.",
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_cache_lookups_total",
			Help:      "User cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Account events handed to the broker by type and outcome.",
		}, []string{"type", "outcome"}),
	}
}

// Handler отдаёт метрики реестра в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLogin учитывает попытку входа. Безопасен для nil.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// ObserveRegistration учитывает успешную регистрацию. Безопасен для nil.
func (m *Metrics) ObserveRegistration() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
}

// ObserveCache учитывает попадание или промах кэша. Безопасен для nil.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveEvent учитывает публикацию события. Безопасен для nil.
func (m *Metrics) ObserveEvent(eventType string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}
