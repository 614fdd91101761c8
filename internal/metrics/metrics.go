// Package metrics exposes Prometheus instrumentation for outbound service
// calls and inbound storefront requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Metrics holds all Prometheus metrics of the gateway
type Metrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	subscriptionsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics instance backed by its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_service_calls_total",
				Help: "Total number of remote service calls by service, mode and outcome",
			},
			[]string{"service", "mode", "outcome"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_service_call_duration_seconds",
				Help:    "Remote service call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "mode"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_http_requests_total",
				Help: "Total number of storefront HTTP requests",
			},
			[]string{"route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_http_request_duration_seconds",
				Help:    "Storefront HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		subscriptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_newsletter_subscriptions_total",
				Help: "Total number of newsletter upserts by result",
			},
			[]string{"result"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.callsTotal,
		m.callDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.subscriptionsTotal,
	)

	return m
}

// ObserveCall records one finished remote call
func (m *Metrics) ObserveCall(service string, mode config.Mode, outcome string, elapsed time.Duration) {
	m.callsTotal.WithLabelValues(service, string(mode), outcome).Inc()
	m.callDuration.WithLabelValues(service, string(mode)).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served storefront request
func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveSubscription records a newsletter upsert result ("created", "updated", "error")
func (m *Metrics) ObserveSubscription(result string) {
	m.subscriptionsTotal.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Module provides the metrics dependencies
var Module = fx.Module("metrics",
	fx.Provide(NewMetrics),
)
