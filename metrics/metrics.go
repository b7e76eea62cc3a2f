// Package metrics exposes Prometheus metrics for the ctiscope service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctiscope_lookups_total",
			Help: "Total number of IOC lookups by indicator type and outcome",
		},
		[]string{"type", "outcome"},
	)

	FeedItemsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctiscope_feed_items_fetched_total",
			Help: "Total number of feed items fetched per source",
		},
		[]string{"source"},
	)

	FeedSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctiscope_feed_source_failures_total",
			Help: "Total number of feed source fetch failures",
		},
		[]string{"source"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ctiscope_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	AuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ctiscope_auth_failures_total",
			Help: "Total number of failed login attempts",
		},
	)
)
