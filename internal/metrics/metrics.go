// Package metrics holds the Prometheus instruments of the server. They are
// registered with the default registry and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

	ShipmentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shipments_created_total",
			Help: "Shipments recorded through the API.",
		})

	HandlersDispatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "handlers_dispatched_total",
			Help: "Handlers dispatched across all recorded shipments.",
		})

	LoginFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Rejected login attempts.",
		})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ShipmentsCreatedTotal,
		HandlersDispatchedTotal,
		LoginFailuresTotal,
	)
}
