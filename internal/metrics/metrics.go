// Package metrics exposes Prometheus counters for crawl activity. Metrics
// are an ambient observability concern, not a scoped crawl feature, so they
// carry no dependency on the crawl engine's own types.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts fetch attempts by domain and outcome.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemapgen_fetches_total",
			Help: "Total number of page fetch attempts performed by the crawler",
		},
		[]string{"domain", "outcome"},
	)

	// FetchDuration observes how long each fetch (including redirects) took.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitemapgen_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	// FetchBytesTotal counts bytes downloaded across all fetches.
	FetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemapgen_fetch_bytes_total",
			Help: "Total bytes downloaded across all fetches",
		},
		[]string{"domain"},
	)
)

// RecordFetch updates the fetch counters for a single completed fetch.
// outcome is a short label such as "ok", "error", or "stopped".
func RecordFetch(domain, outcome string, duration time.Duration, bodyBytes int) {
	FetchesTotal.WithLabelValues(domain, outcome).Inc()
	FetchDuration.WithLabelValues(domain).Observe(duration.Seconds())
	FetchBytesTotal.WithLabelValues(domain).Add(float64(bodyBytes))
}
