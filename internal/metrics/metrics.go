package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grislo",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grislo",
			Name:      "reservations_total",
			Help:      "Reservation lifecycle transitions.",
		},
		[]string{"action"},
	)

	tierFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grislo",
			Name:      "storage_tier_fallbacks_total",
			Help:      "Reads served by a lower storage tier after the one above failed or was empty.",
		},
		[]string{"kind", "tier"},
	)

	remoteWriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grislo",
			Name:      "remote_write_failures_total",
			Help:      "Writes that reached the cache but not the remote store.",
		},
		[]string{"kind"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservations, tierFallbacks, remoteWriteFailures)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservation records a lifecycle action ("created", "cancelled").
func IncReservation(action string) {
	reservations.WithLabelValues(action).Inc()
}

// IncTierFallback records a read served below the preferred tier.
func IncTierFallback(kind, tier string) {
	tierFallbacks.WithLabelValues(kind, tier).Inc()
}

// IncRemoteWriteFailure records a save that diverged between tiers.
func IncRemoteWriteFailure(kind string) {
	remoteWriteFailures.WithLabelValues(kind).Inc()
}

// RemoteWriteFailures exposes the divergence counter for one kind so callers
// can assert on it.
func RemoteWriteFailures(kind string) prometheus.Counter {
	return remoteWriteFailures.WithLabelValues(kind)
}
