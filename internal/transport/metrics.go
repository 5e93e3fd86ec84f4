package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts dispatched operations by outcome.
	// Labels: operation, result (success, <error kind>)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aetherfy",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of dispatched operations by result",
		},
		[]string{"operation", "result"},
	)

	// RequestDuration tracks end-to-end dispatch latency including retries.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aetherfy",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "End-to-end operation latency in seconds, retries included",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RetriesTotal counts retry attempts by trigger.
	// Labels: reason (service_unavailable, timeout, rate_limit_exceeded)
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aetherfy",
			Subsystem: "client",
			Name:      "retries_total",
			Help:      "Total number of retry attempts by reason",
		},
		[]string{"reason"},
	)

	// FailoversTotal counts endpoint rotations after transient failures.
	FailoversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aetherfy",
			Subsystem: "client",
			Name:      "failovers_total",
			Help:      "Total number of failovers to an alternate endpoint",
		},
	)
)
