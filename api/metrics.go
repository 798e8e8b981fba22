package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the HTTP surface and the SLA sweep. Registered
// on the default registry and served by promhttp on /metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crimereport_http_requests_total",
		Help: "Count of HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crimereport_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SLASweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crimereport_sla_sweeps_total",
		Help: "Number of completed SLA compliance sweeps.",
	})

	SLACasesChecked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crimereport_sla_cases_checked",
		Help: "Cases examined by the most recent SLA sweep.",
	})

	SLACasesOverdue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crimereport_sla_cases_overdue",
		Help: "Cases flagged overdue by the most recent SLA sweep.",
	})

	SLAFlagsCleared = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crimereport_sla_flags_cleared",
		Help: "Overdue flags cleared by the most recent SLA sweep.",
	})
)
