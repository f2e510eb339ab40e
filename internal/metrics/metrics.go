// Package metrics exposes Prometheus instrumentation for provider calls and
// polling activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCalls counts completed provider operations by outcome.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adclip",
		Name:      "provider_calls_total",
		Help:      "Provider operations by provider, operation and outcome.",
	}, []string{"provider", "operation", "outcome"})

	// PollDuration observes how long a task spent in the polling loop before
	// reaching a terminal state or timing out.
	PollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "adclip",
		Name:      "poll_duration_seconds",
		Help:      "Wall-clock time spent polling a task until it resolved.",
		Buckets:   prometheus.ExponentialBuckets(5, 2, 9),
	}, []string{"operation", "outcome"})
)
